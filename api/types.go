package api

import "time"

// Campaign is the root record for one table's ongoing game. The characterIds,
// sessionIds and mapIds arrays are denormalized caches of the records that
// reference this campaign; the membership and map services own keeping them
// in agreement with those records.
type Campaign struct {
	ID           string    `firestore:"id" json:"id"`
	Name         string    `firestore:"name" json:"name"`
	Description  string    `firestore:"description" json:"description"`
	OwnerID      string    `firestore:"ownerId" json:"ownerId"`
	CharacterIDs []string  `firestore:"characterIds" json:"characterIds"`
	SessionIDs   []string  `firestore:"sessionIds" json:"sessionIds"`
	MapIDs       []string  `firestore:"mapIds" json:"mapIds"`
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
}

// Attributes are the six ability scores.
type Attributes struct {
	Strength     int `firestore:"strength" json:"strength" structs:"strength"`
	Dexterity    int `firestore:"dexterity" json:"dexterity" structs:"dexterity"`
	Constitution int `firestore:"constitution" json:"constitution" structs:"constitution"`
	Intelligence int `firestore:"intelligence" json:"intelligence" structs:"intelligence"`
	Wisdom       int `firestore:"wisdom" json:"wisdom" structs:"wisdom"`
	Charisma     int `firestore:"charisma" json:"charisma" structs:"charisma"`
}

// Character has an independent lifecycle: it can exist unattached to any
// campaign and survives the campaigns it was a member of.
type Character struct {
	ID         string     `firestore:"id" json:"id" structs:"id"`
	Name       string     `firestore:"name" json:"name" structs:"name"`
	Level      int        `firestore:"level" json:"level" structs:"level"`
	Race       string     `firestore:"race" json:"race" structs:"race"`
	Class      string     `firestore:"class" json:"class" structs:"class"`
	Background string     `firestore:"background" json:"background" structs:"background"`
	ImageURL   string     `firestore:"imageUrl" json:"imageUrl" structs:"imageUrl"`
	Attributes Attributes `firestore:"attributes" json:"attributes" structs:"attributes"`
	Skills     []string   `firestore:"skills" json:"skills" structs:"skills"`
	Spells     []string   `firestore:"spells" json:"spells" structs:"spells"`
	OwnerID    string     `firestore:"ownerId" json:"ownerId" structs:"ownerId"`
	CreatedAt  time.Time  `firestore:"createdAt" json:"createdAt" structs:"createdAt,omitnested"`
}

// CampaignCharacter is the authoritative edge of the campaign/character
// many-to-many relationship. One exists per membership; the campaign's
// characterIds array caches the same edges.
type CampaignCharacter struct {
	ID          string    `firestore:"id" json:"id"`
	CampaignID  string    `firestore:"campaignId" json:"campaignId"`
	CharacterID string    `firestore:"characterId" json:"characterId"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
}

// Session is a dated log entry. Its lifetime is strictly nested inside its
// campaign's lifetime.
type Session struct {
	ID         string    `firestore:"id" json:"id"`
	CampaignID string    `firestore:"campaignId" json:"campaignId"`
	Date       time.Time `firestore:"date" json:"date"`
	Log        string    `firestore:"log" json:"log"`
	CreatedAt  time.Time `firestore:"createdAt" json:"createdAt"`
}

// Pin is a positioned marker on a map. Within one map's pin list at most one
// pin references a given character.
type Pin struct {
	X           float64 `firestore:"x" json:"x"`
	Y           float64 `firestore:"y" json:"y"`
	CharacterID *string `firestore:"characterId,omitempty" json:"characterId,omitempty"`
}

// GameMap is a battle or world map image with its pins embedded. Pins are
// always rewritten as a whole list, never patched in place.
type GameMap struct {
	ID         string    `firestore:"id" json:"id"`
	CampaignID string    `firestore:"campaignId" json:"campaignId"`
	SessionID  *string   `firestore:"sessionId,omitempty" json:"sessionId,omitempty"`
	ImageURL   string    `firestore:"imageUrl" json:"imageUrl"`
	Pins       []Pin     `firestore:"pins" json:"pins"`
	CreatedAt  time.Time `firestore:"createdAt" json:"createdAt"`
}

// CampaignDetail is the read-side view of a campaign with its references
// resolved. References that no longer resolve are omitted rather than
// failing the read.
type CampaignDetail struct {
	Campaign   Campaign    `json:"campaign"`
	Characters []Character `json:"characters"`
	Sessions   []Session   `json:"sessions"`
	Maps       []GameMap   `json:"maps"`
}

// CreateCampaignRequest is the body for POST /campaigns.
type CreateCampaignRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateCharacterRequest is the body for POST /characters.
type CreateCharacterRequest struct {
	Name       string     `json:"name" binding:"required"`
	Level      int        `json:"level"`
	Race       string     `json:"race"`
	Class      string     `json:"class"`
	Background string     `json:"background"`
	ImageURL   string     `json:"imageUrl"`
	Attributes Attributes `json:"attributes"`
}

// UpdateCharacterRequest carries a partial character update. Nil fields are
// left untouched.
type UpdateCharacterRequest struct {
	Name       *string     `json:"name,omitempty"`
	Level      *int        `json:"level,omitempty"`
	Race       *string     `json:"race,omitempty"`
	Class      *string     `json:"class,omitempty"`
	Background *string     `json:"background,omitempty"`
	ImageURL   *string     `json:"imageUrl,omitempty"`
	Attributes *Attributes `json:"attributes,omitempty"`
}

// AddMemberRequest is the body for POST /campaigns/:campaignId/members.
type AddMemberRequest struct {
	CharacterID string `json:"characterId" binding:"required"`
}

// SwapMemberRequest is the body for PUT /campaigns/:campaignId/members.
type SwapMemberRequest struct {
	OldCharacterID string `json:"oldCharacterId" binding:"required"`
	NewCharacterID string `json:"newCharacterId" binding:"required"`
}

// PlacePinRequest is the body for POST /maps/:mapId/pins. Coordinates are
// pointers so a missing field can be told apart from zero.
type PlacePinRequest struct {
	X           *float64 `json:"x"`
	Y           *float64 `json:"y"`
	CharacterID string   `json:"characterId" binding:"required"`
}

// CreateSessionRequest is the body for POST /campaigns/:campaignId/sessions.
type CreateSessionRequest struct {
	Date time.Time `json:"date" binding:"required"`
	Log  string    `json:"log"`
}

// AttachmentRequest names a skill or spell to attach to a character.
type AttachmentRequest struct {
	Name string `json:"name" binding:"required"`
}
