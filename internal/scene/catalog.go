package scene

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pders01/scene-state/internal/identity"
	"github.com/pders01/scene-state/internal/saveable"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ObjectDef is one object placed in a scene file.
type ObjectDef struct {
	ID        string                  `yaml:"id,omitempty" toml:"id,omitempty"`
	Name      string                  `yaml:"name" toml:"name"`
	Transform saveable.TransformState `yaml:"transform" toml:"transform"`
}

// SaveID implements identity.Identifiable.
func (o *ObjectDef) SaveID() string { return o.ID }

// SetSaveID implements identity.Identifiable.
func (o *ObjectDef) SetSaveID(id string) { o.ID = id }

// Definition is a scene as described by its file.
type Definition struct {
	Name    string      `yaml:"name" toml:"name"`
	Objects []ObjectDef `yaml:"objects" toml:"objects"`

	path    string
	stamped bool
}

// Path returns the file the definition was read from.
func (d *Definition) Path() string { return d.path }

// Instantiate creates the live saveables of the scene.
func (d *Definition) Instantiate() []*saveable.Transform {
	out := make([]*saveable.Transform, 0, len(d.Objects))
	for _, o := range d.Objects {
		out = append(out, saveable.NewTransformWithID(o.ID, o.Name, o.Transform.Normalized()))
	}
	return out
}

// Catalog holds the scene definitions available to a host.
type Catalog struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewCatalog builds a catalog from in-memory definitions. Objects without an
// identifier get one.
func NewCatalog(defs ...*Definition) *Catalog {
	c := &Catalog{defs: make(map[string]*Definition)}
	for _, d := range defs {
		c.add(d)
	}
	return c
}

func (c *Catalog) add(d *Definition) {
	for i := range d.Objects {
		if d.Objects[i].ID == "" {
			identity.Ensure(&d.Objects[i])
			d.stamped = true
		}
	}
	c.defs[d.Name] = d
}

// LoadCatalog reads every .yaml, .yml and .toml scene file in dir.
func LoadCatalog(fs billy.Filesystem, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading scene catalog %s", dir)
	}

	c := &Catalog{defs: make(map[string]*Definition)}
	for _, e := range entries {
		if e.IsDir() || !isSceneFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		d, err := readDefinition(fs, path)
		if err != nil {
			return nil, err
		}
		if prev, ok := c.defs[d.Name]; ok {
			return nil, errors.Errorf("scene %q defined twice: %s and %s", d.Name, prev.path, path)
		}
		c.add(d)
	}
	return c, nil
}

func isSceneFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".toml":
		return true
	default:
		return false
	}
}

func readDefinition(fs billy.Filesystem, path string) (*Definition, error) {
	data, err := util.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading scene file %s", path)
	}

	d := &Definition{path: path}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, d)
	} else {
		err = yaml.Unmarshal(data, d)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decoding scene file %s", path)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// Scene returns the definition named name.
func (c *Catalog) Scene(name string) (*Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.defs[name]
	return d, ok
}

// Names returns the scene names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.defs)
}

// Unstamped returns the scenes whose files lack identifiers that were
// generated while loading them.
func (c *Catalog) Unstamped() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var names []string
	for name, d := range c.defs {
		if d.stamped && d.path != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Stamp writes generated identifiers back into the scene files that were
// missing them, so the identifiers stay the same on the next run. It returns
// the paths it rewrote.
func (c *Catalog) Stamp(fs billy.Filesystem) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var written []string
	for _, name := range sortedKeys(c.defs) {
		d := c.defs[name]
		if !d.stamped || d.path == "" {
			continue
		}
		var (
			data []byte
			err  error
		)
		if strings.EqualFold(filepath.Ext(d.path), ".toml") {
			data, err = toml.Marshal(d)
		} else {
			data, err = yaml.Marshal(d)
		}
		if err != nil {
			return written, errors.Wrapf(err, "encoding scene %s", name)
		}
		if err := writeFile(fs, d.path, data); err != nil {
			return written, err
		}
		d.stamped = false
		written = append(written, d.path)
	}
	return written, nil
}

func writeFile(fs billy.Filesystem, path string, data []byte) error {
	perm := os.FileMode(0644)
	if fi, err := fs.Stat(path); err == nil {
		perm = fi.Mode().Perm()
	}
	if err := util.WriteFile(fs, path, data, perm); err != nil {
		return errors.Wrapf(err, "writing scene file %s", path)
	}
	return nil
}

func sortedKeys(m map[string]*Definition) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
