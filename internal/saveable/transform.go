package saveable

import (
	"encoding/json"
	"math"
	"sync"

	"github.com/pders01/scene-state/internal/identity"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Snapshot keys written by Transform.
const (
	LocalPositionKey = "localPosition"
	LocalRotationKey = "localRotation"
	LocalScaleKey    = "localScale"
)

// ErrInvalidSnapshot is returned by Restore for data it cannot apply.
var ErrInvalidSnapshot = errors.New("saveable: invalid snapshot")

// Vec3 is a position or scale.
type Vec3 struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
	Z float64 `json:"z" yaml:"z" toml:"z"`
}

// Quaternion is a rotation.
type Quaternion struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
	Z float64 `json:"z" yaml:"z" toml:"z"`
	W float64 `json:"w" yaml:"w" toml:"w"`
}

var (
	// One is the unit scale.
	One = Vec3{X: 1, Y: 1, Z: 1}
	// IdentityRotation is the rotation that leaves an object unrotated.
	IdentityRotation = Quaternion{W: 1}
)

// ApproxEqual reports whether v and o differ by at most eps per component.
func (v Vec3) ApproxEqual(o Vec3, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps && math.Abs(v.Z-o.Z) <= eps
}

// ApproxEqual reports whether q and o differ by at most eps per component.
func (q Quaternion) ApproxEqual(o Quaternion, eps float64) bool {
	return math.Abs(q.X-o.X) <= eps && math.Abs(q.Y-o.Y) <= eps &&
		math.Abs(q.Z-o.Z) <= eps && math.Abs(q.W-o.W) <= eps
}

// TransformState is the local position, rotation and scale of an object.
type TransformState struct {
	LocalPosition Vec3       `json:"localPosition" yaml:"position" toml:"position"`
	LocalRotation Quaternion `json:"localRotation" yaml:"rotation" toml:"rotation"`
	LocalScale    Vec3       `json:"localScale" yaml:"scale" toml:"scale"`
}

// DefaultTransform is an object at the origin, unrotated, at unit scale.
func DefaultTransform() TransformState {
	return TransformState{LocalRotation: IdentityRotation, LocalScale: One}
}

// Normalized fills in a zero rotation or zero scale with the identity values,
// as left behind by scene files that omit them.
func (s TransformState) Normalized() TransformState {
	if s.LocalRotation == (Quaternion{}) {
		s.LocalRotation = IdentityRotation
	}
	if s.LocalScale == (Vec3{}) {
		s.LocalScale = One
	}
	return s
}

// Transform is a saveable object with a transform.
type Transform struct {
	identity.Tag

	name  string
	mu    sync.RWMutex
	state TransformState
}

var _ Saveable = (*Transform)(nil)

// NewTransform creates a transform with a freshly assigned identifier.
func NewTransform(name string, state TransformState) *Transform {
	return NewTransformWithID("", name, state)
}

// NewTransformWithID creates a transform carrying a persisted identifier.
// An empty id gets a fresh one.
func NewTransformWithID(id, name string, state TransformState) *Transform {
	t := &Transform{name: name, state: state}
	if id != "" {
		t.SetSaveID(id)
	}
	identity.Ensure(t)
	return t
}

// Name returns the display name
func (t *Transform) Name() string {
	return t.name
}

// State returns the current transform.
func (t *Transform) State() TransformState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// SetPosition sets the local position.
func (t *Transform) SetPosition(v Vec3) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.LocalPosition = v
}

// SetRotation sets the local rotation.
func (t *Transform) SetRotation(q Quaternion) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.LocalRotation = q
}

// SetScale sets the local scale.
func (t *Transform) SetScale(v Vec3) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.LocalScale = v
}

// Translate moves the object by d.
func (t *Transform) Translate(d Vec3) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := &t.state.LocalPosition
	p.X, p.Y, p.Z = p.X+d.X, p.Y+d.Y, p.Z+d.Z
}

// Snapshot encodes the transform. A transform holding NaN or infinite values
// cannot be encoded and snapshots as null.
func (t *Transform) Snapshot() json.RawMessage {
	data, err := json.Marshal(t.State())
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}

// Restore applies whichever of the three transform fields data carries;
// absent fields keep their current value.
func (t *Transform) Restore(data json.RawMessage) error {
	if !gjson.ValidBytes(data) {
		return errors.Wrapf(ErrInvalidSnapshot, "transform %s: malformed JSON", t.SaveID())
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return errors.Wrapf(ErrInvalidSnapshot, "transform %s: not an object", t.SaveID())
	}

	next := t.State()
	if v := root.Get(LocalPositionKey); v.Exists() {
		if err := decodeField(v, &next.LocalPosition); err != nil {
			return errors.Wrapf(ErrInvalidSnapshot, "transform %s: %s: %v", t.SaveID(), LocalPositionKey, err)
		}
	}
	if v := root.Get(LocalRotationKey); v.Exists() {
		if err := decodeField(v, &next.LocalRotation); err != nil {
			return errors.Wrapf(ErrInvalidSnapshot, "transform %s: %s: %v", t.SaveID(), LocalRotationKey, err)
		}
	}
	if v := root.Get(LocalScaleKey); v.Exists() {
		if err := decodeField(v, &next.LocalScale); err != nil {
			return errors.Wrapf(ErrInvalidSnapshot, "transform %s: %s: %v", t.SaveID(), LocalScaleKey, err)
		}
	}

	t.mu.Lock()
	t.state = next
	t.mu.Unlock()
	return nil
}

// decodeField decodes a vector or quaternion field. Components missing from
// the recorded value are zero.
func decodeField[T any](v gjson.Result, dst *T) error {
	var val T
	if err := json.Unmarshal([]byte(v.Raw), &val); err != nil {
		return err
	}
	*dst = val
	return nil
}
