package models

import "encoding/json"

// Top-level keys of a save document, plus the key reserved inside every
// object snapshot for its identifier.
const (
	ActiveSceneKey = "activeScene"
	ScenesKey      = "scenes"
	ObjectsKey     = "objects"
	SaveIDKey      = "$saveID"
)

// SaveDocument is the root structure written to the save file.
type SaveDocument struct {
	ActiveScene string            `json:"activeScene"`
	Scenes      []string          `json:"scenes"`
	Objects     []json.RawMessage `json:"objects"`
}

// Encode serializes the document, indented when pretty is set.
func (d *SaveDocument) Encode(pretty bool) ([]byte, error) {
	doc := *d
	if doc.Scenes == nil {
		doc.Scenes = []string{}
	}
	if doc.Objects == nil {
		doc.Objects = []json.RawMessage{}
	}
	if pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// Summary is a display-oriented view of a save document
type Summary struct {
	Path        string          `json:"path"`
	ActiveScene string          `json:"active_scene"`
	Scenes      []string        `json:"scenes"`
	Objects     []ObjectSummary `json:"objects"`
}

// ObjectSummary lists one recorded object and the fields it carries
type ObjectSummary struct {
	SaveID string   `json:"save_id"`
	Fields []string `json:"fields"`
}
