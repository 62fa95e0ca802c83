package identity

import (
	"sync"
	"testing"
)

type plainObject struct {
	id string
}

func (p *plainObject) SaveID() string      { return p.id }
func (p *plainObject) SetSaveID(id string) { p.id = id }

type taggedObject struct {
	Tag
}

func TestEnsureIsIdempotent(t *testing.T) {
	tests := []struct {
		name string
		obj  Identifiable
	}{
		{name: "plain struct", obj: &plainObject{}},
		{name: "embedded tag", obj: &taggedObject{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := Ensure(tt.obj)
			if first == "" {
				t.Fatal("expected a non-empty identifier")
			}
			second := Ensure(tt.obj)
			if first != second {
				t.Errorf("expected same identifier, got %q then %q", first, second)
			}
			if tt.obj.SaveID() != first {
				t.Errorf("expected object to carry %q, got %q", first, tt.obj.SaveID())
			}
			if !Valid(first) {
				t.Errorf("expected generated identifier to be valid, got %q", first)
			}
		})
	}
}

func TestEnsureKeepsExistingIdentifier(t *testing.T) {
	obj := &plainObject{id: "abc"}
	if got := Ensure(obj); got != "abc" {
		t.Errorf("expected existing identifier 'abc', got %q", got)
	}
}

func TestEnsureDistinctObjects(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := Ensure(&taggedObject{})
		if seen[id] {
			t.Fatalf("duplicate identifier after %d objects: %s", i, id)
		}
		seen[id] = true
	}
}

func TestTagFirstValueWins(t *testing.T) {
	var tag Tag
	tag.SetSaveID("first")
	tag.SetSaveID("second")
	if tag.SaveID() != "first" {
		t.Errorf("expected 'first', got %q", tag.SaveID())
	}
	if got := Ensure(&tag); got != "first" {
		t.Errorf("expected Ensure to keep 'first', got %q", got)
	}
}

func TestEnsureConcurrent(t *testing.T) {
	obj := &taggedObject{}
	ids := make([]string, 16)

	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = Ensure(obj)
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("concurrent Ensure produced different identifiers: %v", ids)
		}
	}
}
