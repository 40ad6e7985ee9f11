package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/handshake/pkg/domain"
)

// Store is an in-memory agent backend: it implements ports.RecordStore,
// ports.NotificationFeed and ports.RecordWriter.
// Safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	invitations   map[string]domain.InvitationRecord
	connections   map[string]domain.ConnectionRecord // keyed by invitation id
	notifications []domain.Notification

	watchers map[chan struct{}]struct{}
}

// NewStore creates a new empty store.
func NewStore() *Store {
	return &Store{
		invitations: make(map[string]domain.InvitationRecord),
		connections: make(map[string]domain.ConnectionRecord),
		watchers:    make(map[chan struct{}]struct{}),
	}
}

// Invitation returns a copy of the stored invitation.
func (s *Store) Invitation(ctx context.Context, invitationID string) (*domain.InvitationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.invitations[invitationID]
	if !ok {
		return nil, domain.ErrInvitationNotFound
	}
	rec.InvitationRequestThreadIDs = slices.Clone(rec.InvitationRequestThreadIDs)
	return &rec, nil
}

// ConnectionByInvitation returns a copy of the connection formed from the invitation.
func (s *Store) ConnectionByInvitation(ctx context.Context, invitationID string) (*domain.ConnectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.connections[invitationID]
	if !ok {
		return nil, domain.ErrConnectionNotFound
	}
	return &rec, nil
}

// Notifications returns the feed in arrival order, applying the URI hint.
func (s *Store) Notifications(ctx context.Context, q domain.FeedQuery) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if q.Accept(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// SaveInvitation creates or replaces an invitation.
func (s *Store) SaveInvitation(ctx context.Context, rec domain.InvitationRecord) error {
	rec.InvitationRequestThreadIDs = slices.Clone(rec.InvitationRequestThreadIDs)

	s.mu.Lock()
	s.invitations[rec.ID] = rec
	s.mu.Unlock()

	s.broadcast()
	return nil
}

// SaveConnection creates or replaces the connection of rec.InvitationID.
func (s *Store) SaveConnection(ctx context.Context, rec domain.ConnectionRecord) error {
	s.mu.Lock()
	s.connections[rec.InvitationID] = rec
	s.mu.Unlock()

	s.broadcast()
	return nil
}

// PushNotification appends a record to the feed.
func (s *Store) PushNotification(ctx context.Context, n domain.Notification) error {
	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()

	s.broadcast()
	return nil
}

// Watch subscribes to changes. Pending signals coalesce: a slow consumer
// sees at most one queued signal and re-reads the current view.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, ch)
		close(ch)
		s.mu.Unlock()
	}()

	return ch, nil
}

func (s *Store) broadcast() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
