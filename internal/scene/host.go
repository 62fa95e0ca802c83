package scene

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/pders01/scene-state/internal/diag"
	"github.com/pders01/scene-state/internal/registry"
	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"
)

const subscriberBuffer = 64

// Host loads scenes from a catalog into a registry. Requests are queued and
// activated strictly in request order by a single worker goroutine, so a
// Single load issued before an Additive one never wipes it out.
type Host struct {
	catalog  *Catalog
	registry *registry.Registry
	logger   *slog.Logger
	delay    time.Duration

	mu     sync.RWMutex
	loaded []string
	active string
	queue  []*Operation
	closed bool

	subMu  sync.RWMutex
	subs   map[int]chan Event
	nextID int

	wake chan struct{}
	stop chan struct{}
	wg   conc.WaitGroup
}

var _ Directory = (*Host)(nil)

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger sets the host's logger.
func WithLogger(l *slog.Logger) HostOption {
	return func(h *Host) { h.logger = l }
}

// WithLoadDelay slows each load step down by d, to make progress observable.
func WithLoadDelay(d time.Duration) HostOption {
	return func(h *Host) { h.delay = d }
}

// NewHost starts a host. Close must be called to stop its worker.
func NewHost(catalog *Catalog, reg *registry.Registry, opts ...HostOption) *Host {
	h := &Host{
		catalog:  catalog,
		registry: reg,
		logger:   diag.Discard(),
		subs:     make(map[int]chan Event),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.wg.Go(h.worker)
	return h
}

// Registry returns the registry loaded objects are placed in.
func (h *Host) Registry() *registry.Registry { return h.registry }

// Catalog returns the scene catalog.
func (h *Host) Catalog() *Catalog { return h.catalog }

// LoadScene queues a load that activates as soon as it is ready.
func (h *Host) LoadScene(name string, mode Mode) *Operation {
	return h.Request(name, mode, true)
}

// Request queues a load. With allowActivation false the load stops at 0.9
// progress until Operation.AllowActivation(true) is called.
func (h *Host) Request(name string, mode Mode, allowActivation bool) *Operation {
	op := newOperation(name, mode, allowActivation)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		op.finish(ErrClosed)
		return op
	}
	h.queue = append(h.queue, op)
	h.mu.Unlock()

	select {
	case h.wake <- struct{}{}:
	default:
	}
	return op
}

// Subscribe implements Directory. A subscriber that falls more than the
// buffer size behind loses events; the Operation returned by LoadScene
// still reports completion.
func (h *Host) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.subMu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.subMu.Unlock()

	return ch, func() {
		h.subMu.Lock()
		defer h.subMu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
}

// LoadedScenes implements Directory.
func (h *Host) LoadedScenes() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.loaded)
}

// ActiveScene implements Directory.
func (h *Host) ActiveScene() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.active
}

// SetActiveScene implements Directory.
func (h *Host) SetActiveScene(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !slices.Contains(h.loaded, name) {
		return errors.Wrapf(ErrSceneNotLoaded, "%s", name)
	}
	h.active = name
	return nil
}

// IsLoaded implements Directory.
func (h *Host) IsLoaded(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Contains(h.loaded, name)
}

// Close fails queued loads, waits for the worker, and closes every
// subscription.
func (h *Host) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	close(h.stop)
	if r := h.wg.WaitAndRecover(); r != nil {
		h.logger.Error("scene worker panicked", "panic", r.Value)
	}

	h.mu.Lock()
	pending := h.queue
	h.queue = nil
	h.mu.Unlock()
	for _, op := range pending {
		op.finish(ErrClosed)
	}

	h.subMu.Lock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
	h.subMu.Unlock()
}

func (h *Host) next() (*Operation, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) == 0 {
		return nil, false
	}
	op := h.queue[0]
	h.queue[0] = nil
	h.queue = h.queue[1:]
	return op, true
}

func (h *Host) worker() {
	for {
		select {
		case <-h.stop:
			return
		default:
		}

		op, ok := h.next()
		if !ok {
			select {
			case <-h.wake:
				continue
			case <-h.stop:
				return
			}
		}
		if !h.load(op) {
			return
		}
	}
}

// load runs one operation. It returns false if the host stopped mid-load.
func (h *Host) load(op *Operation) bool {
	def, ok := h.catalog.Scene(op.name)
	if !ok {
		h.logger.Warn("scene not in catalog", "scene", op.name)
		op.finish(errors.Wrapf(ErrUnknownScene, "%s", op.name))
		return true
	}

	steps := len(def.Objects) + 1
	for i := 0; i < steps; i++ {
		if h.delay > 0 {
			select {
			case <-time.After(h.delay):
			case <-h.stop:
				op.finish(ErrClosed)
				return false
			}
		}
		op.setProgress(activationThreshold * float64(i+1) / float64(steps))
	}
	op.setProgress(activationThreshold)

	select {
	case <-op.activation():
	case <-h.stop:
		op.finish(ErrClosed)
		return false
	}

	h.activate(def, op.mode)
	h.logger.Debug("scene loaded", "scene", def.Name, "mode", op.mode, "objects", len(def.Objects))
	h.publish(Event{Scene: def.Name, Mode: op.mode, Op: op})
	op.finish(nil)
	return true
}

func (h *Host) activate(def *Definition, mode Mode) {
	objects := def.Instantiate()

	h.mu.Lock()
	defer h.mu.Unlock()

	if mode == Single {
		h.registry.Clear()
		h.loaded = nil
		h.active = ""
	} else if slices.Contains(h.loaded, def.Name) {
		// Reloading an open scene replaces its objects and moves it last.
		h.registry.RemoveScene(def.Name)
		h.loaded = slices.DeleteFunc(h.loaded, func(s string) bool { return s == def.Name })
	}

	for _, obj := range objects {
		h.registry.Add(def.Name, obj)
	}
	h.loaded = append(h.loaded, def.Name)
	if h.active == "" {
		h.active = def.Name
	}
}

func (h *Host) publish(ev Event) {
	h.subMu.RLock()
	defer h.subMu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("dropping scene event for slow subscriber", "scene", ev.Scene)
		}
	}
}
