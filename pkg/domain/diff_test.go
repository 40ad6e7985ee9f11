package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	waiting := NewProcessState("inv-1")
	matched := waiting.WithMatch(ProofExchange{Exchange{RecordID: "proof-1"}})
	resolved := matched.Resolve(ProofReview{ProofID: "proof-1"}, CauseRouted)

	t.Run("Initial load", func(t *testing.T) {
		diff := Diff(nil, waiting)
		require.NotNil(t, diff)
		assert.Equal(t, "inv-1", diff.InvitationID)
		assert.Equal(t, PhaseWaiting, *diff.Phase)
		assert.True(t, *diff.InProgress)
		assert.Nil(t, diff.Matched)
		assert.Nil(t, diff.Outcome)
	})

	t.Run("No changes", func(t *testing.T) {
		assert.Nil(t, Diff(&waiting, waiting))
	})

	t.Run("Match only", func(t *testing.T) {
		diff := Diff(&waiting, matched)
		require.NotNil(t, diff)
		assert.Equal(t, "proof-1", *diff.Matched)
		assert.Nil(t, diff.Phase)
		assert.Nil(t, diff.InProgress)
	})

	t.Run("Resolution", func(t *testing.T) {
		diff := Diff(&matched, resolved)
		require.NotNil(t, diff)
		assert.Equal(t, DestProofReview, *diff.Outcome)
		assert.Equal(t, CauseRouted, *diff.Cause)
		assert.False(t, *diff.InProgress)
		assert.Equal(t, PhaseResolved, *diff.Phase)
	})

	t.Run("Serialization omits unchanged fields", func(t *testing.T) {
		elapsed := waiting.WithDelayElapsed()
		data, err := json.Marshal(Diff(&waiting, elapsed))
		require.NoError(t, err)
		assert.JSONEq(t, `{"invitation_id":"inv-1","delay_elapsed":true}`, string(data))
	})
}
