// Package storage reads and writes save files under the platform's
// persistent data directory.
package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a save file does not exist.
	ErrNotFound = errors.New("storage: file not found")
	// ErrIO is returned for any other read or write failure.
	ErrIO = errors.New("storage: i/o failure")
)

const appDirName = "scenestate"

// Gateway performs whole-file reads and writes against a filesystem rooted
// at a data directory.
type Gateway struct {
	fs  billy.Filesystem
	dir string
}

// New creates a gateway over fs that resolves names under dir.
func New(fs billy.Filesystem, dir string) *Gateway {
	return &Gateway{fs: fs, dir: dir}
}

// NewOS creates a gateway over the host filesystem. An empty dir means
// DefaultDataDir.
func NewOS(dir string) (*Gateway, error) {
	if dir == "" {
		d, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving data directory %s", dir)
	}
	return New(osfs.New("/"), abs), nil
}

// DefaultDataDir returns the per-user persistent data directory.
func DefaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "locating user config directory")
	}
	return filepath.Join(base, appDirName), nil
}

// Dir returns the data directory.
func (g *Gateway) Dir() string {
	return g.dir
}

// Filesystem returns the underlying filesystem.
func (g *Gateway) Filesystem() billy.Filesystem {
	return g.fs
}

// ResolvePath joins name onto the data directory.
func (g *Gateway) ResolvePath(name string) string {
	return filepath.Join(g.dir, name)
}

// Exists reports whether path exists.
func (g *Gateway) Exists(path string) bool {
	_, err := g.fs.Stat(path)
	return err == nil
}

// ReadAll returns the contents of path.
func (g *Gateway) ReadAll(path string) ([]byte, error) {
	f, err := g.fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "%s", path)
		}
		return nil, errors.Wrapf(ErrIO, "opening %s: %v", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "reading %s: %v", path, err)
	}
	return data, nil
}

// WriteAll replaces path with data. The bytes go to a temporary file in the
// same directory which is then renamed over path, so readers see either the
// old contents or the new, never a partial file.
func (g *Gateway) WriteAll(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := g.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(ErrIO, "creating directory %s: %v", dir, err)
	}

	tmp, err := g.fs.TempFile(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return errors.Wrapf(ErrIO, "creating temporary file in %s: %v", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		g.fs.Remove(tmpName)
		return errors.Wrapf(ErrIO, "writing %s: %v", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		g.fs.Remove(tmpName)
		return errors.Wrapf(ErrIO, "closing %s: %v", tmpName, err)
	}
	if err := g.fs.Rename(tmpName, path); err != nil {
		g.fs.Remove(tmpName)
		return errors.Wrapf(ErrIO, "renaming %s to %s: %v", tmpName, path, err)
	}
	return nil
}
