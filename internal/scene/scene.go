// Package scene models named scenes, loads them asynchronously from a
// catalog, and tracks which are loaded and which one is active.
package scene

import "github.com/pkg/errors"

// Mode says how a requested scene joins the loaded set.
type Mode int

const (
	// Single unloads every loaded scene before activating the new one.
	Single Mode = iota
	// Additive loads the scene alongside the ones already loaded.
	Additive
)

func (m Mode) String() string {
	switch m {
	case Single:
		return "single"
	case Additive:
		return "additive"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownScene   = errors.New("scene: unknown scene")
	ErrSceneNotLoaded = errors.New("scene: scene not loaded")
	ErrClosed         = errors.New("scene: host closed")
)

// Event is published each time a scene finishes loading. Op is the request
// that produced it, so a subscriber can tell its own loads from others of
// the same scene.
type Event struct {
	Scene string
	Mode  Mode
	Op    *Operation
}

// Directory is the view of the scene host the persistence engine needs.
type Directory interface {
	// LoadScene requests an asynchronous load and returns immediately.
	LoadScene(name string, mode Mode) *Operation
	// Subscribe returns a channel of load events and a function that
	// unsubscribes and closes it. Events are dropped for a subscriber whose
	// buffer is full, so completion of a specific load is only guaranteed
	// to be observable through its Operation.
	Subscribe() (<-chan Event, func())
	// LoadedScenes returns the loaded scene names in load order.
	LoadedScenes() []string
	ActiveScene() string
	SetActiveScene(name string) error
	IsLoaded(name string) bool
}
