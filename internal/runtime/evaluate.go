package runtime

import "github.com/aretw0/handshake/pkg/domain"

// Inputs is the dependency list of an evaluation: every observed value the
// decision depends on. A change to any of them triggers a new evaluation.
type Inputs struct {
	Invitation    *domain.InvitationRecord
	Connection    *domain.ConnectionRecord
	Notifications []domain.Notification
}

// Step is the outcome of one reduction over a ProcessState.
type Step struct {
	State domain.ProcessState

	// Matched is set when this step recorded the match.
	Matched domain.Notification

	// Navigate is set when this step performed the terminal transition.
	Navigate domain.Destination

	// Stalled is set when a decision is blocked by a missing record.
	Stalled error

	// Notice is set when the user should be told the wait is taking too long.
	Notice bool
}

// Resolved reports whether the step performed the terminal transition.
func (s Step) Resolved() bool {
	return s.Navigate != nil
}

// Evaluate runs the matcher to completion and then the router.
// It is pure and re-entrant: evaluating a resolved state returns it unchanged.
func Evaluate(state domain.ProcessState, in Inputs) Step {
	step := Step{State: state}
	if !state.InProgress {
		return step
	}

	if state.Matched == nil {
		if n, ok := Match(in.Connection, in.Invitation, in.Notifications); ok {
			step.State = step.State.WithMatch(n)
			step.Matched = n
		}
	}

	d := Decide(in.Invitation, in.Connection, step.State.Matched)
	switch d.Kind {
	case DecisionResolve:
		step.State = step.State.Resolve(d.Destination, domain.CauseRouted)
		step.Navigate = d.Destination
	case DecisionStall:
		step.State = step.State.WithPhase(domain.PhaseDeciding)
		step.Stalled = d.Err
	default:
		step.State = step.State.WithPhase(domain.PhaseWaiting)
	}
	return step
}

// Expire reduces a watchdog expiry. The delay flag is set at most once;
// an existing match preempts the watchdog.
func Expire(state domain.ProcessState, cfg domain.Config) Step {
	step := Step{State: state}
	if !state.InProgress || state.DelayElapsed {
		return step
	}

	step.State = state.WithDelayElapsed()
	if state.Matched != nil {
		return step
	}

	if cfg.AutoRedirectOnDelay {
		step.State = step.State.Resolve(domain.Home{}, domain.CauseTimeout)
		step.Navigate = domain.Home{}
		return step
	}

	step.Notice = true
	return step
}

// Dismiss reduces a user abort. It is a no-op once the process is resolved.
func Dismiss(state domain.ProcessState) Step {
	step := Step{State: state}
	if !state.InProgress {
		return step
	}
	step.State = state.Resolve(domain.Home{}, domain.CauseDismissed)
	step.Navigate = domain.Home{}
	return step
}
