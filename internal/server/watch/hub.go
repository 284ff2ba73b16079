// Package watch implements the live-subscription side of the tool store:
// a per-owner hub that pushes full collection snapshots to subscribers
// whenever the owner's tools change, and an optional Redis bridge that
// fans change notifications out across server instances.
package watch

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/modtoolkit/internal/logging"
	"github.com/dmitrijs2005/modtoolkit/internal/server/models"
)

// subscriberBufSize bounds how many undelivered snapshots a subscriber may
// accumulate before older ones are discarded in favor of newer server truth.
const subscriberBufSize = 16

// SnapshotLoader returns the current full collection for one owner.
type SnapshotLoader func(ctx context.Context, ownerID string) ([]*models.Tool, error)

type subscriber struct {
	ch chan []*models.Tool
}

// Hub tracks live subscribers per owner and delivers full snapshots to them
// in publish order.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[int64]*subscriber
	nextID int64
	logger logging.Logger
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[int64]*subscriber),
		logger: logger.With("component", "watch_hub"),
	}
}

// Subscribe registers a new subscriber for ownerID and returns its delivery
// channel plus a cancel function. The cancel function must be called exactly
// once; it closes the channel and removes the subscriber.
func (h *Hub) Subscribe(ownerID string) (<-chan []*models.Tool, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID

	sub := &subscriber{ch: make(chan []*models.Tool, subscriberBufSize)}

	owner, ok := h.subs[ownerID]
	if !ok {
		owner = make(map[int64]*subscriber)
		h.subs[ownerID] = owner
	}
	owner[id] = sub

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if owner, ok := h.subs[ownerID]; ok {
			if s, ok := owner[id]; ok {
				delete(owner, id)
				close(s.ch)
				if len(owner) == 0 {
					delete(h.subs, ownerID)
				}
			}
		}
	}

	return sub.ch, cancel
}

// Publish delivers snapshot to every subscriber of ownerID. A subscriber
// that is too slow to drain its buffer loses its oldest pending snapshot:
// the newest server truth always gets through.
func (h *Hub) Publish(ownerID string, snapshot []*models.Tool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs[ownerID] {
		for {
			select {
			case sub.ch <- snapshot:
			default:
				select {
				case <-sub.ch:
					h.logger.Warn(context.Background(), "slow subscriber, dropping oldest snapshot", "owner_id", ownerID)
				default:
				}
				continue
			}
			break
		}
	}
}

// SubscriberCount reports active subscribers for an owner. Used by tests and
// for observability.
func (h *Hub) SubscriberCount(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[ownerID])
}
