package ports

import (
	"context"

	"github.com/aretw0/handshake/pkg/domain"
)

// Watcher emits a signal whenever the observed data may have changed.
// Signals carry no payload; consumers re-read the current view.
// The channel is closed when ctx is done.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// RecordStore is a read-only, live view over records maintained by the agent.
type RecordStore interface {
	Watcher

	// Invitation returns the out-of-band invitation record.
	// Returns domain.ErrInvitationNotFound if it is not materialized yet.
	Invitation(ctx context.Context, invitationID string) (*domain.InvitationRecord, error)

	// ConnectionByInvitation returns the connection formed from the invitation.
	// Returns domain.ErrConnectionNotFound if none exists yet.
	ConnectionByInvitation(ctx context.Context, invitationID string) (*domain.ConnectionRecord, error)
}

// NotificationFeed is a live collection of candidate notification records.
type NotificationFeed interface {
	Watcher

	// Notifications returns the current candidates in arrival order.
	Notifications(ctx context.Context, q domain.FeedQuery) ([]domain.Notification, error)
}

// RecordWriter is the agent side of a store. The resolver itself never writes.
type RecordWriter interface {
	SaveInvitation(ctx context.Context, rec domain.InvitationRecord) error
	SaveConnection(ctx context.Context, rec domain.ConnectionRecord) error
	PushNotification(ctx context.Context, n domain.Notification) error
}

// Navigator receives the destination of a resolved process.
// It is invoked at most once per process.
type Navigator interface {
	Navigate(ctx context.Context, dest domain.Destination) error
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, dest domain.Destination) error

// Navigate calls f(ctx, dest).
func (f NavigatorFunc) Navigate(ctx context.Context, dest domain.Destination) error {
	return f(ctx, dest)
}
