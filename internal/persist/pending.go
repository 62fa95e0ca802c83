package persist

import (
	"context"
	"slices"
	"sync"
)

// Phase is the state of a load call.
type Phase int

const (
	Idle Phase = iota
	Validating
	ScenesRequested
	WaitingForLoadSignal
	Restoring
	Done
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case ScenesRequested:
		return "scenes-requested"
	case WaitingForLoadSignal:
		return "waiting-for-load-signal"
	case Restoring:
		return "restoring"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Report describes what a completed load restored.
type Report struct {
	// Restored counts objects whose Restore succeeded.
	Restored int
	// Missing lists recorded identifiers with no live object.
	Missing []string
	// Failed lists identifiers whose Restore returned an error.
	Failed []string
	// Skipped counts recorded objects without a usable identifier.
	Skipped int
	// FailedScenes lists requested scenes that did not load.
	FailedScenes []string
	// ActiveSceneErr is set when the recorded active scene could not be
	// made active once the scenes had loaded.
	ActiveSceneErr error
}

// Pending is the one-shot continuation of a load call. It resolves exactly
// once, after every requested scene has loaded and objects were restored,
// or when the load is cancelled, superseded or times out.
type Pending struct {
	path   string
	scenes []string

	done      chan struct{}
	abort     chan error
	abortOnce sync.Once
	once      sync.Once

	mu     sync.Mutex
	phase  Phase
	report Report
	err    error
}

func newPending(p *plan) *Pending {
	return &Pending{
		path:   p.path,
		scenes: p.scenes,
		done:   make(chan struct{}),
		abort:  make(chan error, 1),
		phase:  ScenesRequested,
	}
}

// Path returns the save file being loaded.
func (p *Pending) Path() string { return p.path }

// Scenes returns the scenes requested by the load.
func (p *Pending) Scenes() []string { return slices.Clone(p.scenes) }

// Done is closed once the load resolves.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Phase returns the current phase.
func (p *Pending) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Result returns the outcome. It is only final once Done is closed.
func (p *Pending) Result() (Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.report, p.err
}

// Wait blocks until the load resolves or ctx ends.
func (p *Pending) Wait(ctx context.Context) (Report, error) {
	select {
	case <-p.done:
		return p.Result()
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
}

// Cancel abandons the load if it has not started restoring yet.
func (p *Pending) Cancel() {
	p.stop(context.Canceled)
}

func (p *Pending) stop(err error) {
	p.abortOnce.Do(func() {
		p.abort <- err
	})
}

func (p *Pending) setPhase(ph Phase) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.phase = ph
}

func (p *Pending) resolve(r Report, err error) {
	p.once.Do(func() {
		p.mu.Lock()
		p.phase = Done
		p.report = r
		p.err = err
		p.mu.Unlock()
		close(p.done)
	})
}
