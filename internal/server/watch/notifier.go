package watch

import "context"

// Notifier is how mutation paths announce that an owner's collection
// changed. Implementations either publish straight to the local hub or relay
// through Redis so every server instance re-publishes.
type Notifier interface {
	ToolsChanged(ctx context.Context, ownerID string)
}

// LocalNotifier reloads the owner's snapshot and publishes it to the local
// hub. Suitable for single-instance deployments.
type LocalNotifier struct {
	Hub    *Hub
	Loader SnapshotLoader
}

func (n *LocalNotifier) ToolsChanged(ctx context.Context, ownerID string) {
	snapshot, err := n.Loader(ctx, ownerID)
	if err != nil {
		n.Hub.logger.Error(ctx, "failed to load snapshot for publish", "owner_id", ownerID, "error", err)
		return
	}
	n.Hub.Publish(ownerID, snapshot)
}
