package catalog

// Skill is a reference-data skill definition.
type Skill struct {
	Index string   `json:"index"`
	Name  string   `json:"name"`
	Desc  []string `json:"desc"`
}

// Spell is a reference-data spell definition.
type Spell struct {
	Index  string `json:"index"`
	Name   string `json:"name"`
	Level  int    `json:"level"`
	School struct {
		Name string `json:"name"`
	} `json:"school"`
}
