// Package persist saves the state of the live scene graph to a file and
// restores it: which scenes were loaded, which was active, and the state of
// every saveable object, matched by identifier.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/pders01/scene-state/internal/diag"
	"github.com/pders01/scene-state/internal/models"
	"github.com/pders01/scene-state/internal/registry"
	"github.com/pders01/scene-state/internal/saveable"
	"github.com/pders01/scene-state/internal/scene"
	"github.com/pders01/scene-state/internal/storage"
	"github.com/pkg/errors"
)

// Engine saves and loads the scene graph. It holds no objects itself; it
// discovers them through the object lister on every call.
//
// At most one load is pending per engine. Starting another load before the
// first has resolved supersedes the first.
type Engine struct {
	scenes  scene.Directory
	objects registry.Lister
	store   *storage.Gateway
	logger  *slog.Logger
	pretty  bool

	mu      sync.Mutex
	pending *Pending
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger warnings are reported on.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithPretty selects indented output.
func WithPretty(pretty bool) Option {
	return func(e *Engine) { e.pretty = pretty }
}

// NewEngine wires an engine to its scene directory, object source and storage.
func NewEngine(scenes scene.Directory, objects registry.Lister, store *storage.Gateway, opts ...Option) *Engine {
	e := &Engine{
		scenes:  scenes,
		objects: objects,
		store:   store,
		logger:  diag.Discard(),
		pretty:  true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetPretty switches between indented and compact output for later saves.
func (e *Engine) SetPretty(pretty bool) {
	e.mu.Lock()
	e.pretty = pretty
	e.mu.Unlock()
}

// Save writes the scene directory and a snapshot of every live saveable to
// path. Objects whose snapshot is not a JSON object are skipped with a
// warning. Write failures are returned and not retried.
func (e *Engine) Save(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := e.collect()
	if err != nil {
		return err
	}

	e.mu.Lock()
	pretty := e.pretty
	e.mu.Unlock()

	data, err := doc.Encode(pretty)
	if err != nil {
		return errors.Wrap(err, "encoding save document")
	}
	if err := e.store.WriteAll(path, data); err != nil {
		return err
	}

	e.logger.Info("saved game", "path", path, "scenes", len(doc.Scenes), "objects", len(doc.Objects))
	return nil
}

func (e *Engine) collect() (*models.SaveDocument, error) {
	doc := &models.SaveDocument{
		Scenes:      e.scenes.LoadedScenes(),
		ActiveScene: e.scenes.ActiveScene(),
		Objects:     []json.RawMessage{},
	}
	if len(doc.Scenes) == 0 {
		return nil, errors.Wrap(ErrNoScenes, "no scene is loaded")
	}
	if !slices.Contains(doc.Scenes, doc.ActiveScene) {
		return nil, errors.Wrapf(ErrActiveSceneNotLoaded, "%q is not among %v", doc.ActiveScene, doc.Scenes)
	}

	live := registry.FindAll[saveable.Saveable](e.objects)
	if len(live) == 0 {
		e.logger.Warn("no saveable objects")
	}
	for _, obj := range live {
		snapshot := obj.Snapshot()
		if !models.IsObject(snapshot) {
			e.logger.Warn("snapshot is not an object, skipping",
				"saveID", obj.SaveID(), "type", fmt.Sprintf("%T", obj))
			continue
		}
		tagged, err := models.TagSnapshot(snapshot, obj.SaveID())
		if err != nil {
			return nil, errors.Wrapf(err, "tagging snapshot of %s", obj.SaveID())
		}
		doc.Objects = append(doc.Objects, tagged)
	}
	return doc, nil
}
