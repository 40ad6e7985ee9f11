package domain

// StateDiff represents the changes between two process states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// InvitationID is always present to identify the target.
	InvitationID string `json:"invitation_id"`

	Phase        *Phase  `json:"phase,omitempty"`
	InProgress   *bool   `json:"in_progress,omitempty"`
	DelayElapsed *bool   `json:"delay_elapsed,omitempty"`
	Matched      *string `json:"matched,omitempty"` // id of the matched notification

	// Outcome is only present on the terminal transition.
	Outcome *DestinationKind `json:"outcome,omitempty"`
	Cause   *Cause           `json:"cause,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState *ProcessState, newState ProcessState) *StateDiff {
	diff := &StateDiff{InvitationID: newState.InvitationID}

	if oldState == nil || oldState.Phase != newState.Phase {
		diff.Phase = &newState.Phase
	}
	if oldState == nil || oldState.InProgress != newState.InProgress {
		diff.InProgress = &newState.InProgress
	}
	if oldState == nil || oldState.DelayElapsed != newState.DelayElapsed {
		diff.DelayElapsed = &newState.DelayElapsed
	}
	if newState.Matched != nil && (oldState == nil || oldState.Matched == nil) {
		id := newState.Matched.ID()
		diff.Matched = &id
	}
	if newState.Outcome != nil && (oldState == nil || oldState.Outcome == nil) {
		kind := newState.Outcome.Kind()
		diff.Outcome = &kind
		diff.Cause = &newState.Cause
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Phase == nil &&
		d.InProgress == nil &&
		d.DelayElapsed == nil &&
		d.Matched == nil &&
		d.Outcome == nil
}
