package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventMatch   EventType = "match"
	EventResolve EventType = "resolve"
	EventDelay   EventType = "delay"
	EventStall   EventType = "stall"
	EventChange  EventType = "change"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         EventType `json:"type"`
	ProcessID    string    `json:"process_id"`
	InvitationID string    `json:"invitation_id"`
}

// MatchEvent is emitted when the matcher selects a notification.
type MatchEvent struct {
	EventBase
	Notification Notification  `json:"notification"`
	Elapsed      time.Duration `json:"elapsed"`
}

// ResolveEvent is emitted once, on the terminal transition.
type ResolveEvent struct {
	EventBase
	Destination Destination   `json:"destination"`
	Cause       Cause         `json:"cause"`
	Elapsed     time.Duration `json:"elapsed"`
}

// DelayEvent is emitted once, when the watchdog fires without a match.
type DelayEvent struct {
	EventBase
	AutoRedirect bool `json:"auto_redirect"`
}

// StallEvent is emitted when a decision is blocked by a missing record.
type StallEvent struct {
	EventBase
	Err error `json:"-"`
}

// LifecycleHooks defines callbacks for process observability.
// Hooks run on the process goroutine and must not block.
type LifecycleHooks struct {
	OnMatch   func(context.Context, *MatchEvent)
	OnResolve func(context.Context, *ResolveEvent)
	OnDelay   func(context.Context, *DelayEvent)
	OnStall   func(context.Context, *StallEvent)
	OnChange  func(context.Context, *StateDiff)
}

// Merge returns hooks that call h and then other for every event.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnMatch:   chain(h.OnMatch, other.OnMatch),
		OnResolve: chain(h.OnResolve, other.OnResolve),
		OnDelay:   chain(h.OnDelay, other.OnDelay),
		OnStall:   chain(h.OnStall, other.OnStall),
		OnChange:  chain(h.OnChange, other.OnChange),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
