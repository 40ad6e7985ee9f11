package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/handshake/internal/logging"
	"github.com/aretw0/handshake/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "handshake:"

// Store implements ports.RecordStore, ports.NotificationFeed and
// ports.RecordWriter over records materialized in Redis by the agent.
//
// Layout:
//
//	<prefix>oob:<invitationID>   invitation record (JSON)
//	<prefix>conn:<invitationID>  connection record (JSON)
//	<prefix>notifications        list of tagged notification records, arrival order
//	<prefix>changes              pub/sub channel announcing writes
type Store struct {
	client *backend.Client
	prefix string
	logger *slog.Logger
}

type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithLogger configures the logger used to report skipped records.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logging.Guard(logger)
		}
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		logger: logging.NewNop(),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client returns the underlying Redis client.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Prefix returns the key prefix in use.
func (s *Store) Prefix() string {
	return s.prefix
}

func (s *Store) invitationKey(id string) string { return s.prefix + "oob:" + id }
func (s *Store) connectionKey(id string) string { return s.prefix + "conn:" + id }
func (s *Store) feedKey() string                { return s.prefix + "notifications" }
func (s *Store) changesChannel() string         { return s.prefix + "changes" }

// Invitation loads the invitation record.
func (s *Store) Invitation(ctx context.Context, invitationID string) (*domain.InvitationRecord, error) {
	var rec domain.InvitationRecord
	if err := s.get(ctx, s.invitationKey(invitationID), &rec); err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ConnectionByInvitation loads the connection formed from the invitation.
func (s *Store) ConnectionByInvitation(ctx context.Context, invitationID string) (*domain.ConnectionRecord, error) {
	var rec domain.ConnectionRecord
	if err := s.get(ctx, s.connectionKey(invitationID), &rec); err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *Store) get(ctx context.Context, key string, v any) error {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == backend.Nil {
			return err
		}
		return fmt.Errorf("failed to get from redis: %w", err)
	}
	if err := json.Unmarshal(val, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// Notifications returns the feed in arrival order, applying the URI hint.
// Records that cannot be decoded are skipped.
func (s *Store) Notifications(ctx context.Context, q domain.FeedQuery) ([]domain.Notification, error) {
	raws, err := s.client.LRange(ctx, s.feedKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}

	out := make([]domain.Notification, 0, len(raws))
	for i, raw := range raws {
		var fields map[string]any
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			s.logger.Warn("skipping malformed notification", "index", i, "err", err)
			continue
		}
		n, err := DecodeNotification(fields)
		if err != nil {
			s.logger.Warn("skipping notification", "index", i, "err", err)
			continue
		}
		if q.Accept(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// SaveInvitation writes an invitation record and announces the change.
func (s *Store) SaveInvitation(ctx context.Context, rec domain.InvitationRecord) error {
	return s.set(ctx, s.invitationKey(rec.ID), rec)
}

// SaveConnection writes the connection of rec.InvitationID and announces the change.
func (s *Store) SaveConnection(ctx context.Context, rec domain.ConnectionRecord) error {
	return s.set(ctx, s.connectionKey(rec.InvitationID), rec)
}

func (s *Store) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.Publish(ctx, s.changesChannel(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// PushNotification appends a tagged record to the feed and announces the change.
func (s *Store) PushNotification(ctx context.Context, n domain.Notification) error {
	data, err := EncodeNotification(n)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, s.feedKey(), data)
	pipe.Publish(ctx, s.changesChannel(), s.feedKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	return nil
}

// Watch subscribes to the change channel. The returned channel coalesces
// signals and is closed when ctx is done or the subscription breaks.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	sub := s.client.Subscribe(ctx, s.changesChannel())

	// Wait for the confirmation so that no write issued after Watch returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.changesChannel(), err)
	}

	out := make(chan struct{}, 1)
	msgs := sub.Channel()

	go func() {
		defer close(out)
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					s.logger.Warn("redis change subscription closed")
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
