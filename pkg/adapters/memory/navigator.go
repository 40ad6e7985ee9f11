package memory

import (
	"context"
	"sync"

	"github.com/aretw0/handshake/pkg/domain"
)

// Navigator records every destination it receives.
// It is used by tests and by the CLI when no UI is attached.
type Navigator struct {
	mu    sync.Mutex
	dests []domain.Destination
	calls chan domain.Destination
}

// NewNavigator creates a recording navigator.
func NewNavigator() *Navigator {
	return &Navigator{calls: make(chan domain.Destination, 16)}
}

// Navigate records dest.
func (n *Navigator) Navigate(ctx context.Context, dest domain.Destination) error {
	n.mu.Lock()
	n.dests = append(n.dests, dest)
	n.mu.Unlock()

	select {
	case n.calls <- dest:
	default:
	}
	return nil
}

// Destinations returns every destination received so far.
func (n *Navigator) Destinations() []domain.Destination {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.Destination, len(n.dests))
	copy(out, n.dests)
	return out
}

// Calls delivers destinations as they are received.
func (n *Navigator) Calls() <-chan domain.Destination {
	return n.calls
}
