package testutil

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pders01/scene-state/internal/diag"
	"github.com/pders01/scene-state/internal/registry"
	"github.com/pders01/scene-state/internal/saveable"
	"github.com/pders01/scene-state/internal/scene"
	"github.com/pders01/scene-state/internal/storage"
)

// DataDir is where World keeps its save files
const DataDir = "/data"

// WaitTimeout bounds every wait in tests
const WaitTimeout = 5 * time.Second

// LogBuffer is a goroutine-safe buffer for capturing log output
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything logged so far
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Contains checks if the log contains s
func (b *LogBuffer) Contains(s string) bool {
	return strings.Contains(b.String(), s)
}

// World is an in-memory scene host, object registry and save storage
type World struct {
	T        *testing.T
	FS       billy.Filesystem
	Registry *registry.Registry
	Host     *scene.Host
	Store    *storage.Gateway
	Logs     *LogBuffer
	Logger   *slog.Logger
}

// NewWorld creates a world whose catalog holds defs
func NewWorld(t *testing.T, defs ...*scene.Definition) *World {
	t.Helper()
	return NewWorldWithDelay(t, 0, defs...)
}

// NewWorldWithDelay is NewWorld with every scene load step slowed by delay
func NewWorldWithDelay(t *testing.T, delay time.Duration, defs ...*scene.Definition) *World {
	t.Helper()

	logs := &LogBuffer{}
	logger := diag.New(logs, "debug")
	fs := memfs.New()
	reg := registry.New()
	host := scene.NewHost(scene.NewCatalog(defs...), reg,
		scene.WithLogger(logger),
		scene.WithLoadDelay(delay),
	)
	t.Cleanup(host.Close)

	return &World{
		T:        t,
		FS:       fs,
		Registry: reg,
		Host:     host,
		Store:    storage.New(fs, DataDir),
		Logs:     logs,
		Logger:   logger,
	}
}

// Scene builds a scene definition holding objects with the given identifiers
func Scene(name string, ids ...string) *scene.Definition {
	d := &scene.Definition{Name: name}
	for _, id := range ids {
		d.Objects = append(d.Objects, scene.ObjectDef{
			ID:        id,
			Name:      name + "-" + id,
			Transform: saveable.DefaultTransform(),
		})
	}
	return d
}

// LoadScenes loads names, the first in single mode, and waits for them
func (w *World) LoadScenes(names ...string) {
	w.T.Helper()
	for i, name := range names {
		mode := scene.Additive
		if i == 0 {
			mode = scene.Single
		}
		op := w.Host.LoadScene(name, mode)
		WaitOp(w.T, op)
		if op.Err() != nil {
			w.T.Fatalf("failed to load scene %s: %v", name, op.Err())
		}
	}
}

// Transform returns the live transform with the given identifier
func (w *World) Transform(id string) *saveable.Transform {
	w.T.Helper()
	for _, obj := range registry.FindAll[*saveable.Transform](w.Registry) {
		if obj.SaveID() == id {
			return obj
		}
	}
	w.T.Fatalf("no live transform with identifier %s", id)
	return nil
}

// WriteFile writes content to name inside the data directory and returns its path
func (w *World) WriteFile(name, content string) string {
	w.T.Helper()
	path := w.Store.ResolvePath(name)
	if err := util.WriteFile(w.FS, path, []byte(content), 0644); err != nil {
		w.T.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// ReadFile reads name from the data directory
func (w *World) ReadFile(name string) string {
	w.T.Helper()
	data, err := util.ReadFile(w.FS, w.Store.ResolvePath(name))
	if err != nil {
		w.T.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

// WaitOp waits for a scene load to finish
func WaitOp(t *testing.T, op *scene.Operation) {
	t.Helper()
	select {
	case <-op.Done():
	case <-time.After(WaitTimeout):
		t.Fatalf("timed out waiting for scene %s", op.Name())
	}
}
