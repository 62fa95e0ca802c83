// Package identity assigns the stable save identifiers that persisted objects
// are matched by across a save/load cycle.
package identity

import (
	"sync"

	"github.com/google/uuid"
)

// Identifiable is anything that can carry a save identifier.
type Identifiable interface {
	SaveID() string
	SetSaveID(id string)
}

type ensurer interface {
	ensureID() string
}

// New returns a fresh identifier: a random 128-bit UUID in its text form.
func New() string {
	return uuid.NewString()
}

// Ensure returns obj's identifier, generating and attaching one first if obj
// has none. Calling it again returns the same value.
func Ensure(obj Identifiable) string {
	if e, ok := obj.(ensurer); ok {
		return e.ensureID()
	}
	if id := obj.SaveID(); id != "" {
		return id
	}
	id := New()
	obj.SetSaveID(id)
	return id
}

// Valid reports whether id parses as an identifier produced by New.
// Identifiers written by hand into scene files are accepted as-is and
// need not be valid in this sense.
func Valid(id string) bool {
	return uuid.Validate(id) == nil
}

// Tag is an embeddable Identifiable. The first identifier it receives is
// permanent; later SetSaveID calls with a different value are ignored.
type Tag struct {
	mu sync.Mutex
	id string
}

// SaveID returns the identifier, or "" if none has been assigned yet.
func (t *Tag) SaveID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

// SetSaveID attaches id if the tag has none yet.
func (t *Tag) SetSaveID(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.id == "" {
		t.id = id
	}
}

func (t *Tag) ensureID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.id == "" {
		t.id = New()
	}
	return t.id
}
