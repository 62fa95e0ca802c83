// Package saveable defines the capability a persistable object implements,
// and ships the transform saveable.
package saveable

import "encoding/json"

// Saveable is implemented by every object whose state is written to a save
// file. Snapshot must return a JSON object; anything else is skipped when
// saving. Restore receives the object exactly as it was recorded, including
// the reserved identifier key.
type Saveable interface {
	SaveID() string
	Snapshot() json.RawMessage
	Restore(data json.RawMessage) error
}
