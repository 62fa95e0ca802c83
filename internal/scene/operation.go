package scene

import "sync"

// activationThreshold is where progress stalls while activation is held.
const activationThreshold = 0.9

// Operation tracks one requested scene load.
type Operation struct {
	name string
	mode Mode

	mu       sync.Mutex
	progress float64
	allow    bool
	allowCh  chan struct{}
	done     chan struct{}
	err      error
}

func newOperation(name string, mode Mode, allow bool) *Operation {
	op := &Operation{
		name:    name,
		mode:    mode,
		allow:   allow,
		allowCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	if allow {
		close(op.allowCh)
	}
	return op
}

// Name returns the requested scene.
func (o *Operation) Name() string { return o.name }

// Mode returns the requested load mode.
func (o *Operation) Mode() Mode { return o.mode }

// Progress is in [0,1) while loading and 1 once finished.
func (o *Operation) Progress() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress
}

// Done is closed when the load finishes, successfully or not.
func (o *Operation) Done() <-chan struct{} { return o.done }

// Err returns the load failure, if any. Only meaningful after Done.
func (o *Operation) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// AllowActivation controls whether the loaded scene may become part of the
// loaded set. While held back, progress stops at 0.9 and the host's load
// queue waits.
func (o *Operation) AllowActivation(allow bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if allow == o.allow {
		return
	}
	o.allow = allow
	if allow {
		close(o.allowCh)
	} else {
		o.allowCh = make(chan struct{})
	}
}

func (o *Operation) activation() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.allowCh
}

func (o *Operation) setProgress(p float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if p > activationThreshold {
		p = activationThreshold
	}
	o.progress = p
}

func (o *Operation) finish(err error) {
	o.mu.Lock()
	o.err = err
	o.progress = 1
	o.mu.Unlock()
	close(o.done)
}
