package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/handshake/internal/logging"
	"github.com/aretw0/handshake/pkg/domain"
)

// Event is one server-sent event.
type Event struct {
	Name string
	Data string
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Event]struct{} // InvitationID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Event]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(key string) (chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 10)
	if _, ok := sm.subscribers[key]; !ok {
		sm.subscribers[key] = make(map[chan<- Event]struct{})
	}
	sm.subscribers[key][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[key]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, key)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(key string, ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[key] {
		select {
		case ch <- ev:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "invitation_id", key, "event", ev.Name)
		}
	}
}

// BroadcastJSON marshals v and broadcasts it under the given event name.
func (sm *StreamManager) BroadcastJSON(key, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", name, err)
	}
	sm.Broadcast(key, Event{Name: name, Data: string(data)})
	return nil
}

// StreamNavigator delivers the destination of a process to the SSE
// subscribers of its invitation.
type StreamNavigator struct {
	Streams      *StreamManager
	InvitationID string
}

// Navigate broadcasts dest as a "destination" event.
func (n StreamNavigator) Navigate(ctx context.Context, dest domain.Destination) error {
	return n.Streams.BroadcastJSON(n.InvitationID, EventDestination, NewDestinationView(dest))
}
