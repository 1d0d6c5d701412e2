package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/warescan/warescan/internal/scan"
	"github.com/warescan/warescan/internal/user"
)

type scanSnapshotItem struct {
	ID            string `json:"id"`
	Barcode       string `json:"barcode"`
	ScannedBy     string `json:"scannedBy"`
	ScannedByName string `json:"scannedByName"`
	ScannedAt     string `json:"scannedAt"`
}

type userSnapshotItem struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// Notifier re-queries the store after a mutation and publishes the fresh
// snapshot to the hub. Failures are logged, never propagated: a missed
// snapshot only delays subscribers until the next change.
type Notifier struct {
	hub   *Hub
	scans scan.Repository
	users user.Repository
	limit int
}

// NewNotifier creates a Notifier. limit bounds the scan snapshot size.
func NewNotifier(hub *Hub, scans scan.Repository, users user.Repository, limit int) *Notifier {
	return &Notifier{hub: hub, scans: scans, users: users, limit: limit}
}

// ScansChanged publishes a fresh scan-log snapshot, newest first.
func (n *Notifier) ScansChanged(ctx context.Context) {
	records, err := n.scans.List(ctx, n.limit)
	if err != nil {
		slog.Error("feed: failed to snapshot scans", "error", err)
		return
	}

	items := make([]scanSnapshotItem, 0, len(records))
	for i := range records {
		rec := &records[i]
		items = append(items, scanSnapshotItem{
			ID:            rec.ID.String(),
			Barcode:       rec.Barcode,
			ScannedBy:     rec.ScannedBy.String(),
			ScannedByName: rec.ScannedByName,
			ScannedAt:     rec.ScannedAt.UTC().Format(time.RFC3339),
		})
	}

	n.publish(TopicScans, items)
}

// UsersChanged publishes a fresh roster snapshot.
func (n *Notifier) UsersChanged(ctx context.Context) {
	users, err := n.users.List(ctx)
	if err != nil {
		slog.Error("feed: failed to snapshot users", "error", err)
		return
	}

	items := make([]userSnapshotItem, 0, len(users))
	for i := range users {
		u := &users[i]
		items = append(items, userSnapshotItem{
			ID:        u.ID.String(),
			Email:     u.Email,
			Name:      u.Name,
			Role:      u.Role,
			CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	n.publish(TopicUsers, items)
}

func (n *Notifier) publish(topic string, items any) {
	payload, err := json.Marshal(items)
	if err != nil {
		slog.Error("feed: failed to marshal snapshot", "topic", topic, "error", err)
		return
	}
	n.hub.Publish(topic, payload)
}
