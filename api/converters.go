package api

import "time"

// TransformCreateCharacter builds a new Character record from a create
// request. The identifier is assigned by the store at write time.
func TransformCreateCharacter(ownerID string, req CreateCharacterRequest) Character {
	level := req.Level
	if level == 0 {
		level = 1
	}
	return Character{
		Name:       req.Name,
		Level:      level,
		Race:       req.Race,
		Class:      req.Class,
		Background: req.Background,
		ImageURL:   req.ImageURL,
		Attributes: req.Attributes,
		Skills:     []string{},
		Spells:     []string{},
		OwnerID:    ownerID,
		CreatedAt:  time.Now(),
	}
}

// ApplyCharacterUpdate copies the non-nil fields of a partial update onto
// the character.
func ApplyCharacterUpdate(c *Character, req UpdateCharacterRequest) {
	if c == nil {
		return
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Level != nil {
		c.Level = *req.Level
	}
	if req.Race != nil {
		c.Race = *req.Race
	}
	if req.Class != nil {
		c.Class = *req.Class
	}
	if req.Background != nil {
		c.Background = *req.Background
	}
	if req.ImageURL != nil {
		c.ImageURL = *req.ImageURL
	}
	if req.Attributes != nil {
		c.Attributes = *req.Attributes
	}
}
