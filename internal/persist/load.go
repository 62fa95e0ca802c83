package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pders01/scene-state/internal/models"
	"github.com/pders01/scene-state/internal/registry"
	"github.com/pders01/scene-state/internal/saveable"
	"github.com/pders01/scene-state/internal/scene"
	"github.com/pkg/errors"
)

// Load validates the save file at path, requests its scenes (the first in
// single mode, the rest additive) and returns without waiting for them.
// Once every requested scene has loaded, the active scene is set and each
// recorded object is restored onto the live object with the same identifier.
//
// Validation errors are returned before any scene is requested. ctx bounds
// the wait for the scenes; when it ends first, the load resolves with
// ctx.Err() and nothing is restored.
func (e *Engine) Load(ctx context.Context, path string) (*Pending, error) {
	data, err := e.store.ReadAll(path)
	if err != nil {
		return nil, err
	}
	p, err := parseDocument(path, data)
	if err != nil {
		return nil, err
	}

	pending := newPending(p)

	e.mu.Lock()
	prev := e.pending
	e.pending = pending
	e.mu.Unlock()
	if prev != nil {
		e.logger.Warn("load superseded by a newer load", "path", prev.path)
		prev.stop(ErrSuperseded)
	}

	// Subscribe before requesting so no load event can be missed.
	events, unsubscribe := e.scenes.Subscribe()
	ops := make([]*scene.Operation, 0, len(p.scenes))
	for i, name := range p.scenes {
		mode := scene.Additive
		if i == 0 {
			mode = scene.Single
		}
		ops = append(ops, e.scenes.LoadScene(name, mode))
	}

	go e.await(ctx, pending, p, events, unsubscribe, ops)
	return pending, nil
}

func (e *Engine) await(ctx context.Context, pending *Pending, p *plan, events <-chan scene.Event, unsubscribe func(), ops []*scene.Operation) {
	var report Report
	finish := func(err error) {
		unsubscribe()
		e.release(pending)
		pending.resolve(report, err)
	}

	stop := make(chan struct{})
	defer close(stop)
	finished := make(chan *scene.Operation, len(ops))
	go func() {
		for _, op := range ops {
			select {
			case <-op.Done():
				finished <- op
			case <-stop:
				return
			}
		}
	}()

	// Only this load's own operations count. Events for the same scene
	// name from other requests still in the host queue are ignored.
	settled := make(map[*scene.Operation]bool, len(ops))
	for _, op := range ops {
		settled[op] = false
	}
	remaining := len(ops)
	settle := func(op *scene.Operation) bool {
		if done, ours := settled[op]; !ours || done {
			return false
		}
		settled[op] = true
		remaining--
		return true
	}

	pending.setPhase(WaitingForLoadSignal)
	for remaining > 0 {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			settle(ev.Op)
		case op := <-finished:
			if errors.Is(op.Err(), scene.ErrClosed) {
				finish(ErrHostClosed)
				return
			}
			if settle(op) && op.Err() != nil {
				e.logger.Warn("scene failed to load", "scene", op.Name(), "err", op.Err())
				report.FailedScenes = append(report.FailedScenes, op.Name())
			}
		case err := <-pending.abort:
			finish(err)
			return
		case <-ctx.Done():
			e.logger.Warn("load abandoned before scenes finished loading", "path", p.path, "err", ctx.Err())
			finish(ctx.Err())
			return
		}
	}

	pending.setPhase(Restoring)
	if err := e.scenes.SetActiveScene(p.activeScene); err != nil {
		e.logger.Warn("scene is not loaded", "scene", p.activeScene, "path", p.path)
		report.ActiveSceneErr = errors.Wrapf(ErrActiveSceneNotLoaded, "%s", p.activeScene)
	}
	e.restore(p, &report)
	finish(nil)
}

func (e *Engine) restore(p *plan, report *Report) {
	live := make(map[string]saveable.Saveable)
	for _, obj := range registry.FindAll[saveable.Saveable](e.objects) {
		id := obj.SaveID()
		if _, dup := live[id]; dup {
			e.logger.Warn("duplicate live identifier, keeping first", "saveID", id, "type", fmt.Sprintf("%T", obj))
			continue
		}
		live[id] = obj
	}

	for i, rec := range p.objects {
		id, ok := models.SnapshotID(rec)
		if !ok || !rec.IsObject() {
			e.logger.Warn("object does not contain a save ID", "index", i, "key", models.SaveIDKey, "path", p.path)
			report.Skipped++
			continue
		}
		obj, ok := live[id]
		if !ok {
			e.logger.Warn("object not present after load", "saveID", id, "path", p.path)
			report.Missing = append(report.Missing, id)
			continue
		}
		if err := obj.Restore(json.RawMessage(rec.Raw)); err != nil {
			e.logger.Warn("object failed to restore", "saveID", id, "err", err)
			report.Failed = append(report.Failed, id)
			continue
		}
		report.Restored++
	}
	e.logger.Info("loaded game", "path", p.path, "restored", report.Restored,
		"missing", len(report.Missing), "skipped", report.Skipped)
}

// release forgets pending once it has resolved, unless a newer load has
// already replaced it.
func (e *Engine) release(pending *Pending) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == pending {
		e.pending = nil
	}
}

// Pending returns the unresolved load, if any.
func (e *Engine) Pending() *Pending {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}
