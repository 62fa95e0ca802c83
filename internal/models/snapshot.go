package models

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrNotObject is returned when a snapshot is not a JSON object.
var ErrNotObject = errors.New("models: snapshot is not an object")

// SaveIDPath is SaveIDKey escaped for use as a gjson/sjson path.
var SaveIDPath = gjson.Escape(SaveIDKey)

// IsObject reports whether raw is a JSON object node
func IsObject(raw json.RawMessage) bool {
	if !gjson.ValidBytes(raw) {
		return false
	}
	return gjson.ParseBytes(raw).IsObject()
}

// TagSnapshot returns a copy of the object snapshot raw with id stored under
// SaveIDKey. raw must be an object node.
func TagSnapshot(raw json.RawMessage, id string) (json.RawMessage, error) {
	if !IsObject(raw) {
		return nil, ErrNotObject
	}
	tagged, err := sjson.SetBytes(append([]byte(nil), raw...), SaveIDPath, id)
	if err != nil {
		return nil, errors.Wrap(err, "tagging snapshot")
	}
	return tagged, nil
}

// SnapshotID returns the identifier recorded in an object snapshot.
func SnapshotID(obj gjson.Result) (string, bool) {
	id := obj.Get(SaveIDPath)
	if !id.Exists() || id.Type != gjson.String {
		return "", false
	}
	return id.String(), true
}

// SnapshotFields lists the keys of an object snapshot other than SaveIDKey,
// in document order.
func SnapshotFields(obj gjson.Result) []string {
	var fields []string
	obj.ForEach(func(key, _ gjson.Result) bool {
		if key.String() != SaveIDKey {
			fields = append(fields, key.String())
		}
		return true
	})
	return fields
}
