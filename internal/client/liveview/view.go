// Package liveview maintains a local, renderable snapshot of the signed-in
// user's tool collection, kept consistent with the server's push stream and
// with locally initiated optimistic mutations.
//
// Consistency rules:
//   - every pushed snapshot replaces the whole local collection;
//   - an optimistic toggle is visible immediately, before the server answers;
//   - a full push always wins over any pending optimistic edit;
//   - deletes are confirmed by the user first and are never applied locally,
//     the record disappears with the next push that no longer contains it.
package liveview

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/modtoolkit/internal/client/models"
	"github.com/dmitrijs2005/modtoolkit/internal/logging"
)

// Source is the slice of the backend API the view depends on. *api.Client
// satisfies it; tests use fakes.
type Source interface {
	Watch(ctx context.Context) (<-chan []*models.Tool, error)
	SetToolEnabled(ctx context.Context, id string, enabled bool) error
	DeleteTool(ctx context.Context, id string) error
}

// Options control the stricter reconciliation behaviors that the default
// configuration leaves off.
type Options struct {
	// RollbackOnFailure reverts an optimistic toggle when the server rejects
	// it, unless a newer push has already replaced the snapshot. When false
	// a failed toggle stays applied until the next push corrects it.
	RollbackOnFailure bool
}

// View is the live collection view. All exported methods are safe for
// concurrent use.
type View struct {
	source Source
	opts   Options
	logger logging.Logger

	mu        sync.Mutex
	attached  bool
	populated bool
	pushCount int
	epoch     uint64
	ownerID   string
	order     []string
	records   map[string]*models.Tool
	// pendingToggles maps a tool id to the enabled value it had before the
	// optimistic flip, so a failed request can restore it.
	pendingToggles map[string]bool
	cancelWatch    context.CancelFunc
}

func New(source Source, opts Options, logger logging.Logger) *View {
	return &View{
		source: source,
		opts:   opts,
		logger: logger.With("component", "liveview"),
	}
}

// Attach subscribes to the push stream scoped to ownerID. The snapshot
// starts empty; the first push populates it. Attach must be paired with
// Detach; attaching an already attached view detaches the old subscription
// first.
func (v *View) Attach(ctx context.Context, ownerID string) error {
	v.Detach()

	watchCtx, cancel := context.WithCancel(ctx)
	ch, err := v.source.Watch(watchCtx)
	if err != nil {
		cancel()
		return err
	}

	v.mu.Lock()
	v.attached = true
	v.populated = false
	v.pushCount = 0
	v.epoch++
	epoch := v.epoch
	v.ownerID = ownerID
	v.order = nil
	v.records = make(map[string]*models.Tool)
	v.pendingToggles = make(map[string]bool)
	v.cancelWatch = cancel
	v.mu.Unlock()

	go v.consume(epoch, ch)

	return nil
}

// Detach releases the subscription and discards the snapshot. Pushes that
// race with the detach are dropped. Safe to call on a detached view.
func (v *View) Detach() {
	v.mu.Lock()
	cancel := v.cancelWatch
	v.attached = false
	v.populated = false
	v.pushCount = 0
	v.ownerID = ""
	v.order = nil
	v.records = nil
	v.pendingToggles = nil
	v.cancelWatch = nil
	v.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (v *View) consume(epoch uint64, ch <-chan []*models.Tool) {
	for snapshot := range ch {
		v.apply(epoch, snapshot)
	}
	// The stream ended. The view keeps its last known state: a delivery
	// problem is not an error state for readers.
	v.mu.Lock()
	stale := v.epoch != epoch
	v.mu.Unlock()
	if !stale {
		v.logger.Warn(context.Background(), "watch stream ended, keeping last snapshot")
	}
}

// apply replaces the collection with a pushed snapshot. Records whose id was
// already present are updated in place so list identity stays stable across
// pushes. All pending optimistic state is cleared: the push is server truth.
func (v *View) apply(epoch uint64, snapshot []*models.Tool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.attached || v.epoch != epoch {
		return
	}

	order := make([]string, 0, len(snapshot))
	records := make(map[string]*models.Tool, len(snapshot))
	for _, t := range snapshot {
		if t == nil || t.ID == "" {
			continue
		}
		if t.OwnerID != v.ownerID {
			continue
		}
		if _, dup := records[t.ID]; dup {
			continue
		}
		if existing, ok := v.records[t.ID]; ok {
			*existing = *t
			records[t.ID] = existing
		} else {
			c := *t
			records[t.ID] = &c
		}
		order = append(order, t.ID)
	}

	v.order = order
	v.records = records
	v.pendingToggles = make(map[string]bool)
	v.populated = true
	v.pushCount++
}

// Snapshot returns a copy of the current collection in server order. It
// never fails: a detached or not-yet-populated view yields an empty slice.
func (v *View) Snapshot() []*models.Tool {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]*models.Tool, 0, len(v.order))
	for _, id := range v.order {
		c := *v.records[id]
		out = append(out, &c)
	}
	return out
}

// Populated reports whether at least one push has been applied since the
// last Attach. An empty pushed collection still counts as populated.
func (v *View) Populated() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.populated
}

// PushCount reports how many pushes have been applied since the last
// Attach. Used by tests and for observability.
func (v *View) PushCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pushCount
}

// Get returns the view's current copy of one record.
func (v *View) Get(id string) (*models.Tool, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.records[id]
	if !ok {
		return nil, false
	}
	c := *t
	return &c, true
}

// ToggleEnabled flips the record's enabled flag locally, synchronously, then
// sends the change to the server in the background. The flipped value is
// visible to Snapshot callers before the server responds.
//
// Reports false when id is not in the current snapshot.
func (v *View) ToggleEnabled(ctx context.Context, id string) bool {
	v.mu.Lock()
	if !v.attached {
		v.mu.Unlock()
		return false
	}
	t, ok := v.records[id]
	if !ok {
		v.mu.Unlock()
		return false
	}

	before := t.Enabled
	t.Enabled = !before
	// Only the first flip records the before-value: a rapid double-toggle
	// keeps the original baseline for rollback.
	if _, pending := v.pendingToggles[id]; !pending {
		v.pendingToggles[id] = before
	}
	target := t.Enabled
	epoch := v.epoch
	v.mu.Unlock()

	go v.pushToggle(ctx, epoch, id, target)

	return true
}

func (v *View) pushToggle(ctx context.Context, epoch uint64, id string, enabled bool) {
	err := v.source.SetToolEnabled(ctx, id, enabled)

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.attached || v.epoch != epoch {
		// Response arrived after detach; the snapshot it applied to is gone.
		return
	}

	before, pending := v.pendingToggles[id]
	if !pending {
		// A push already superseded this mutation; server truth stands.
		return
	}
	delete(v.pendingToggles, id)

	if err == nil {
		return
	}

	v.logger.Warn(ctx, "toggle rejected by server", "tool_id", id, "error", err)

	if v.opts.RollbackOnFailure {
		if t, ok := v.records[id]; ok {
			t.Enabled = before
		}
	}
}

// Delete runs the two-phase delete: confirm first, then request the server
// delete. The record is never removed locally; it disappears with the next
// push that no longer contains it. A declined confirmation is a no-op.
//
// Reports whether phase 2 was started.
func (v *View) Delete(ctx context.Context, id string, confirm func() bool) bool {
	v.mu.Lock()
	if !v.attached {
		v.mu.Unlock()
		return false
	}
	_, ok := v.records[id]
	v.mu.Unlock()
	if !ok {
		return false
	}

	if !confirm() {
		return false
	}

	go func() {
		if err := v.source.DeleteTool(ctx, id); err != nil {
			v.logger.Warn(ctx, "delete rejected by server", "tool_id", id, "error", err)
		}
	}()

	return true
}
