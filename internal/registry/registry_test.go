package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type named interface {
	Name() string
}

type thing struct{ name string }

func (t *thing) Name() string { return t.name }

type other struct{}

func names(objs []named) []string {
	var out []string
	for _, o := range objs {
		out = append(out, o.Name())
	}
	return out
}

func TestFindAllFiltersByCapability(t *testing.T) {
	r := New()
	r.Add("Main", &thing{name: "a"})
	r.Add("Main", &other{})
	r.Add("Second", &thing{name: "b"})

	got := names(FindAll[named](r))
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("FindAll mismatch (-want +got):\n%s", diff)
	}
}

func TestFindAllEmpty(t *testing.T) {
	if got := FindAll[named](New()); len(got) != 0 {
		t.Errorf("expected no objects, got %d", len(got))
	}
}

func TestRemoveScene(t *testing.T) {
	r := New()
	r.Add("Main", &thing{name: "a"})
	r.Add("Second", &thing{name: "b"})
	r.Add("Main", &thing{name: "c"})

	if removed := r.RemoveScene("Main"); removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 remaining object, got %d", r.Len())
	}
	if got := names(FindAll[named](r)); got[0] != "b" {
		t.Errorf("expected 'b' to remain, got %v", got)
	}
	if len(r.InScene("Main")) != 0 {
		t.Error("expected Main to be empty")
	}
}

func TestClear(t *testing.T) {
	r := New()
	r.Add("Main", &thing{name: "a"})
	r.Clear()
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Add(fmt.Sprintf("scene-%d", i%2), &thing{name: fmt.Sprint(i)})
		}(i)
		go func() {
			defer wg.Done()
			_ = FindAll[named](r)
		}()
	}
	wg.Wait()

	if r.Len() != 8 {
		t.Errorf("expected 8 objects, got %d", r.Len())
	}
}
