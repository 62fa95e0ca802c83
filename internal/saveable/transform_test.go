package saveable

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const tolerance = 1e-9

func TestTransformRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		state TransformState
	}{
		{
			name:  "default",
			state: DefaultTransform(),
		},
		{
			name: "moved rotated scaled",
			state: TransformState{
				LocalPosition: Vec3{X: 1.5, Y: -2, Z: 3.25},
				LocalRotation: Quaternion{X: 0, Y: 0.7071067811865476, Z: 0, W: 0.7071067811865476},
				LocalScale:    Vec3{X: 2, Y: 2, Z: 0.5},
			},
		},
		{
			name: "tiny values",
			state: TransformState{
				LocalPosition: Vec3{X: 1e-12, Y: 3e-7, Z: -4e-9},
				LocalRotation: IdentityRotation,
				LocalScale:    One,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := NewTransform("cube", tt.state)
			snapshot := original.Snapshot()

			if !gjson.ParseBytes(snapshot).IsObject() {
				t.Fatalf("expected object snapshot, got %s", snapshot)
			}

			restored := NewTransform("cube", DefaultTransform())
			if err := restored.Restore(snapshot); err != nil {
				t.Fatalf("Restore failed: %v", err)
			}

			if diff := cmp.Diff(tt.state, restored.State(), cmpopts.EquateApprox(0, tolerance)); diff != "" {
				t.Errorf("state mismatch after round trip (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTransformRestorePartial(t *testing.T) {
	tr := NewTransform("cube", TransformState{
		LocalPosition: Vec3{X: 9, Y: 9, Z: 9},
		LocalRotation: IdentityRotation,
		LocalScale:    Vec3{X: 4, Y: 4, Z: 4},
	})

	data := json.RawMessage(`{"$saveID":"abc","localPosition":{"x":1,"y":2,"z":3}}`)
	if err := tr.Restore(data); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	got := tr.State()
	if !got.LocalPosition.ApproxEqual(Vec3{X: 1, Y: 2, Z: 3}, tolerance) {
		t.Errorf("expected position (1,2,3), got %+v", got.LocalPosition)
	}
	if !got.LocalScale.ApproxEqual(Vec3{X: 4, Y: 4, Z: 4}, tolerance) {
		t.Errorf("expected scale to be untouched, got %+v", got.LocalScale)
	}
	if !got.LocalRotation.ApproxEqual(IdentityRotation, tolerance) {
		t.Errorf("expected rotation to be untouched, got %+v", got.LocalRotation)
	}
}

func TestTransformRestoreErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "malformed", data: `{"localPosition":`},
		{name: "array", data: `[1,2,3]`},
		{name: "position is a string", data: `{"localPosition":"up"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTransform("cube", DefaultTransform())
			before := tr.State()
			if err := tr.Restore(json.RawMessage(tt.data)); !errors.Is(err, ErrInvalidSnapshot) {
				t.Errorf("expected ErrInvalidSnapshot, got %v", err)
			}
			if diff := cmp.Diff(before, tr.State()); diff != "" {
				t.Errorf("failed restore changed state (-before +after):\n%s", diff)
			}
		})
	}
}

func TestTransformSnapshotNaN(t *testing.T) {
	tr := NewTransform("broken", DefaultTransform())
	tr.SetPosition(Vec3{X: math.NaN()})

	if gjson.ParseBytes(tr.Snapshot()).IsObject() {
		t.Error("expected a non-object snapshot for a NaN position")
	}
}

func TestTransformIdentifier(t *testing.T) {
	fresh := NewTransform("a", DefaultTransform())
	if fresh.SaveID() == "" {
		t.Error("expected a generated identifier")
	}

	persisted := NewTransformWithID("abc", "b", DefaultTransform())
	if persisted.SaveID() != "abc" {
		t.Errorf("expected identifier 'abc', got %q", persisted.SaveID())
	}
}

func TestTranslate(t *testing.T) {
	tr := NewTransform("mover", DefaultTransform())
	tr.Translate(Vec3{X: 1})
	tr.Translate(Vec3{Y: 0.5, Z: -1})

	want := Vec3{X: 1, Y: 0.5, Z: -1}
	if got := tr.State().LocalPosition; !got.ApproxEqual(want, tolerance) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestNormalized(t *testing.T) {
	got := TransformState{LocalPosition: Vec3{X: 1}}.Normalized()
	want := TransformState{LocalPosition: Vec3{X: 1}, LocalRotation: IdentityRotation, LocalScale: One}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalized mismatch (-want +got):\n%s", diff)
	}
}
