package watch

import (
	"context"

	"github.com/dmitrijs2005/modtoolkit/internal/logging"
	"github.com/redis/go-redis/v9"
)

// changeChannel carries owner IDs whose collections changed. Every server
// instance subscribes and re-publishes fresh snapshots to its local hub.
const changeChannel = "modtoolkit:tools:changed"

// RedisNotifier relays change notifications through Redis pub/sub so that
// watchers connected to other server instances see the change too.
type RedisNotifier struct {
	rdb    *redis.Client
	logger logging.Logger
}

func NewRedisNotifier(rdb *redis.Client, logger logging.Logger) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, logger: logger.With("component", "watch_redis")}
}

func (n *RedisNotifier) ToolsChanged(ctx context.Context, ownerID string) {
	if err := n.rdb.Publish(ctx, changeChannel, ownerID).Err(); err != nil {
		n.logger.Error(ctx, "failed to publish change notification", "owner_id", ownerID, "error", err)
	}
}

// RedisBridge consumes change notifications from Redis and republishes fresh
// snapshots into the local hub.
type RedisBridge struct {
	rdb    *redis.Client
	hub    *Hub
	loader SnapshotLoader
	logger logging.Logger
}

func NewRedisBridge(rdb *redis.Client, hub *Hub, loader SnapshotLoader, logger logging.Logger) *RedisBridge {
	return &RedisBridge{
		rdb:    rdb,
		hub:    hub,
		loader: loader,
		logger: logger.With("component", "watch_redis"),
	}
}

// Run blocks consuming the change channel until ctx is cancelled. Delivery
// errors are logged; the bridge keeps serving the last good state (fail-open
// on read).
func (b *RedisBridge) Run(ctx context.Context) {
	pubsub := b.rdb.Subscribe(ctx, changeChannel)
	defer func() { _ = pubsub.Close() }()

	b.logger.Info(ctx, "watch bridge started", "channel", changeChannel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Info(ctx, "watch bridge stopping")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			ownerID := msg.Payload
			if b.hub.SubscriberCount(ownerID) == 0 {
				continue
			}
			snapshot, err := b.loader(ctx, ownerID)
			if err != nil {
				b.logger.Error(ctx, "failed to load snapshot", "owner_id", ownerID, "error", err)
				continue
			}
			b.hub.Publish(ownerID, snapshot)
		}
	}
}
