package runtime_test

import (
	"testing"

	"github.com/aretw0/handshake/internal/runtime"
	"github.com/aretw0/handshake/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_UnknownGoalResolvesWithoutNotifications(t *testing.T) {
	state := domain.NewProcessState("inv-1")
	step := runtime.Evaluate(state, runtime.Inputs{
		Invitation: &domain.InvitationRecord{ID: "inv-1", GoalCode: "unknown.goal"},
		Connection: &domain.ConnectionRecord{ID: "conn-1"},
	})

	require.True(t, step.Resolved())
	assert.Equal(t, domain.Chat{ConnectionID: "conn-1"}, step.Navigate)
	assert.False(t, step.State.InProgress)
	assert.Equal(t, domain.CauseRouted, step.State.Cause)
	assert.Nil(t, step.State.Matched)
}

func TestEvaluate_ExternalCredentialPreemptsConnectionlessProof(t *testing.T) {
	inv := &domain.InvitationRecord{ID: "inv-1", GoalCode: domain.GoalVerifyOnce}
	state := domain.NewProcessState("inv-1")

	// Nothing in the feed yet.
	step := runtime.Evaluate(state, runtime.Inputs{Invitation: inv})
	require.False(t, step.Resolved())
	assert.Equal(t, domain.PhaseWaiting, step.State.Phase)

	// A W3C credential appears with no correlation at all.
	cred := w3c("w3c-1")
	step = runtime.Evaluate(step.State, runtime.Inputs{Invitation: inv, Notifications: []domain.Notification{cred}})
	require.True(t, step.Resolved())
	assert.Equal(t, cred, step.Matched)
	assert.Equal(t, domain.ExternalCredentialDetail{Credential: cred}, step.Navigate)
}

func TestEvaluate_IssueGoalWithCorrelatedOffer(t *testing.T) {
	in := runtime.Inputs{
		Invitation:    &domain.InvitationRecord{ID: "inv-1", GoalCode: domain.GoalIssue},
		Connection:    &domain.ConnectionRecord{ID: "conn-1"},
		Notifications: []domain.Notification{message("msg-1", "conn-1"), offer("cred-1", "conn-1", "")},
	}

	step := runtime.Evaluate(domain.NewProcessState("inv-1"), in)
	require.True(t, step.Resolved())
	assert.Equal(t, domain.CredentialOffer{CredentialID: "cred-1"}, step.Navigate)
}

func TestEvaluate_BasicMessagesNeverMatch(t *testing.T) {
	state := domain.NewProcessState("inv-1")
	in := runtime.Inputs{
		Invitation:    &domain.InvitationRecord{ID: "inv-1", GoalCode: domain.GoalVerify},
		Connection:    &domain.ConnectionRecord{ID: "conn-1"},
		Notifications: []domain.Notification{message("msg-1", "conn-1"), message("msg-2", "conn-1")},
	}

	for i := 0; i < 5; i++ {
		step := runtime.Evaluate(state, in)
		assert.False(t, step.Resolved())
		assert.Nil(t, step.Matched)
		state = step.State
	}
	assert.Nil(t, state.Matched)
	assert.True(t, state.InProgress)
}

func TestEvaluate_ResolvesAtMostOnce(t *testing.T) {
	inv := &domain.InvitationRecord{ID: "inv-1", GoalCode: domain.GoalVerify}
	conn := &domain.ConnectionRecord{ID: "conn-1"}

	sequence := []runtime.Inputs{
		{},
		{Invitation: inv},
		{Invitation: inv, Connection: conn},
		{Invitation: inv, Connection: conn, Notifications: []domain.Notification{proof("proof-1", "conn-1", "")}},
		{Invitation: inv, Connection: conn, Notifications: []domain.Notification{proof("proof-1", "conn-1", ""), w3c("w3c-1")}},
		{Invitation: &domain.InvitationRecord{ID: "inv-1", GoalCode: "changed"}, Connection: conn},
	}

	state := domain.NewProcessState("inv-1")
	var navigations []domain.Destination
	for _, in := range sequence {
		step := runtime.Evaluate(state, in)
		if step.Resolved() {
			navigations = append(navigations, step.Navigate)
		}
		state = step.State
	}

	require.Len(t, navigations, 1)
	assert.Equal(t, domain.ProofReview{ProofID: "proof-1"}, navigations[0])
	assert.Equal(t, domain.ProofReview{ProofID: "proof-1"}, state.Outcome)
}

func TestEvaluate_MatchIsMonotonic(t *testing.T) {
	// A match without an invitation stalls, keeping the first match.
	state := domain.NewProcessState("inv-1")
	conn := &domain.ConnectionRecord{ID: "conn-1"}

	step := runtime.Evaluate(state, runtime.Inputs{
		Connection:    conn,
		Notifications: []domain.Notification{proof("proof-1", "conn-1", "")},
	})
	require.False(t, step.Resolved())
	assert.ErrorIs(t, step.Stalled, domain.ErrMissingInvitation)
	assert.Equal(t, domain.PhaseDeciding, step.State.Phase)
	first := step.State.Matched

	step = runtime.Evaluate(step.State, runtime.Inputs{
		Connection:    conn,
		Notifications: []domain.Notification{offer("cred-9", "conn-1", ""), proof("proof-1", "conn-1", "")},
	})
	assert.Nil(t, step.Matched, "matcher must not run once a match exists")
	assert.Equal(t, first, step.State.Matched)

	// Once the invitation shows up the original match is used.
	step = runtime.Evaluate(step.State, runtime.Inputs{
		Invitation: &domain.InvitationRecord{ID: "inv-1", GoalCode: domain.GoalIssue},
		Connection: conn,
	})
	require.True(t, step.Resolved())
	assert.Equal(t, domain.CredentialOffer{CredentialID: "proof-1"}, step.Navigate)
}

func TestExpire(t *testing.T) {
	t.Run("Auto redirect resolves home once", func(t *testing.T) {
		cfg := domain.Config{AutoRedirectOnDelay: true}
		step := runtime.Expire(domain.NewProcessState("inv-1"), cfg)
		require.True(t, step.Resolved())
		assert.Equal(t, domain.Home{}, step.Navigate)
		assert.Equal(t, domain.CauseTimeout, step.State.Cause)
		assert.True(t, step.State.DelayElapsed)
		assert.False(t, step.Notice)

		again := runtime.Expire(step.State, cfg)
		assert.False(t, again.Resolved())
		assert.Equal(t, step.State, again.State)
	})

	t.Run("Without auto redirect only a notice is raised, once", func(t *testing.T) {
		step := runtime.Expire(domain.NewProcessState("inv-1"), domain.Config{})
		assert.False(t, step.Resolved())
		assert.True(t, step.Notice)
		assert.True(t, step.State.InProgress)
		assert.True(t, step.State.DelayElapsed)

		again := runtime.Expire(step.State, domain.Config{})
		assert.False(t, again.Notice)
	})

	t.Run("Existing match preempts the watchdog", func(t *testing.T) {
		state := domain.NewProcessState("inv-1").WithMatch(proof("proof-1", "conn-1", ""))
		step := runtime.Expire(state, domain.Config{AutoRedirectOnDelay: true})
		assert.False(t, step.Resolved())
		assert.False(t, step.Notice)
		assert.True(t, step.State.InProgress)
	})

	t.Run("Resolved state is untouched", func(t *testing.T) {
		state := domain.NewProcessState("inv-1").Resolve(domain.Home{}, domain.CauseDismissed)
		step := runtime.Expire(state, domain.Config{AutoRedirectOnDelay: true})
		assert.Equal(t, state, step.State)
		assert.False(t, step.State.DelayElapsed)
	})

	t.Run("Matching continues after the notice", func(t *testing.T) {
		step := runtime.Expire(domain.NewProcessState("inv-1"), domain.Config{})
		step = runtime.Evaluate(step.State, runtime.Inputs{
			Invitation:    &domain.InvitationRecord{ID: "inv-1", GoalCode: domain.GoalVerify},
			Connection:    &domain.ConnectionRecord{ID: "conn-1"},
			Notifications: []domain.Notification{proof("proof-1", "conn-1", "")},
		})
		require.True(t, step.Resolved())
		assert.Equal(t, domain.ProofReview{ProofID: "proof-1"}, step.Navigate)
	})
}

func TestDismiss(t *testing.T) {
	step := runtime.Dismiss(domain.NewProcessState("inv-1"))
	require.True(t, step.Resolved())
	assert.Equal(t, domain.Home{}, step.Navigate)
	assert.Equal(t, domain.CauseDismissed, step.State.Cause)

	again := runtime.Dismiss(step.State)
	assert.False(t, again.Resolved())
	assert.Equal(t, step.State, again.State)
}
