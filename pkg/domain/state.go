package domain

// Phase is the position of a process in the resolution state machine.
type Phase string

const (
	PhaseWaiting  Phase = "waiting_for_signal" // Not enough information to act
	PhaseDeciding Phase = "deciding"           // A match exists but a decision is blocked
	PhaseResolved Phase = "resolved"           // Terminal; no transition leaves it
)

// Cause records why a process was resolved.
type Cause string

const (
	CauseRouted    Cause = "routed"    // The router reached a decision
	CauseDismissed Cause = "dismissed" // The user aborted
	CauseTimeout   Cause = "timeout"   // The watchdog auto-redirected
)

// ProcessState is the immutable snapshot of one resolution.
// Every transition returns a new value; once InProgress is false
// all transitions return the receiver unchanged.
type ProcessState struct {
	InvitationID string `json:"invitation_id"`

	// InProgress is true until a terminal decision is issued or the user aborts.
	InProgress bool `json:"in_progress"`

	// Matched is the first notification correlated to the invitation.
	// Once set it is never replaced or cleared.
	Matched Notification `json:"matched,omitempty"`

	// DelayElapsed is set once the watchdog fires.
	DelayElapsed bool `json:"delay_elapsed"`

	Phase   Phase       `json:"phase"`
	Outcome Destination `json:"outcome,omitempty"`
	Cause   Cause       `json:"cause,omitempty"`
}

// NewProcessState creates a fresh, in-progress state for an invitation.
func NewProcessState(invitationID string) ProcessState {
	return ProcessState{
		InvitationID: invitationID,
		InProgress:   true,
		Phase:        PhaseWaiting,
	}
}

// Resolved reports whether the terminal transition already happened.
func (s ProcessState) Resolved() bool {
	return !s.InProgress
}

// WithMatch records the matched notification. It is a no-op if a match already
// exists or the process is resolved.
func (s ProcessState) WithMatch(n Notification) ProcessState {
	if !s.InProgress || s.Matched != nil || n == nil {
		return s
	}
	s.Matched = n
	return s
}

// WithDelayElapsed marks the watchdog as fired.
func (s ProcessState) WithDelayElapsed() ProcessState {
	if !s.InProgress || s.DelayElapsed {
		return s
	}
	s.DelayElapsed = true
	return s
}

// WithPhase moves a non-terminal process between the waiting and deciding phases.
func (s ProcessState) WithPhase(p Phase) ProcessState {
	if !s.InProgress || p == PhaseResolved {
		return s
	}
	s.Phase = p
	return s
}

// Resolve performs the single terminal transition.
func (s ProcessState) Resolve(dest Destination, cause Cause) ProcessState {
	if !s.InProgress || dest == nil {
		return s
	}
	s.InProgress = false
	s.Phase = PhaseResolved
	s.Outcome = dest
	s.Cause = cause
	return s
}
