package persist

import (
	"context"
	"log/slog"
	"time"

	"github.com/pders01/scene-state/internal/diag"
	"github.com/pders01/scene-state/internal/storage"
)

// DefaultSaveFile is the save file name used when none is configured.
const DefaultSaveFile = "save.json"

// Manager exposes the two user-facing operations, Save and Load, against a
// fixed file in the storage gateway's data directory.
type Manager struct {
	Engine   *Engine
	Store    *storage.Gateway
	FileName string
	// Timeout bounds how long a load waits for its scenes. Zero means no bound.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Path returns the save file location.
func (m *Manager) Path() string {
	name := m.FileName
	if name == "" {
		name = DefaultSaveFile
	}
	return m.Store.ResolvePath(name)
}

func (m *Manager) logger() *slog.Logger {
	if m.Logger == nil {
		return diag.Discard()
	}
	return m.Logger
}

// Save writes the current state to the save file.
func (m *Manager) Save(ctx context.Context) error {
	path := m.Path()
	if err := m.Engine.Save(ctx, path); err != nil {
		m.logger().Warn("save failed", "path", path, "err", err)
		return err
	}
	return nil
}

// Load starts restoring the save file. It reports false, after logging why,
// when the file is missing or invalid; otherwise restoration continues in
// the background and the returned Pending resolves when it is done.
func (m *Manager) Load(ctx context.Context) (*Pending, bool) {
	path := m.Path()

	cancel := context.CancelFunc(func() {})
	if m.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
	}

	p, err := m.Engine.Load(ctx, path)
	if err != nil {
		cancel()
		m.logger().Warn("load failed", "path", path, "err", err)
		return nil, false
	}
	go func() {
		<-p.Done()
		cancel()
	}()
	return p, true
}
