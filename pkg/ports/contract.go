package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/handshake/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Backend is what an agent-facing adapter provides: both read views and the writer.
type Backend interface {
	RecordStore
	NotificationFeed
	RecordWriter
}

// RunBackendContract runs a suite of tests to verify that a Backend implementation
// adheres to the defined interface contract. The backend must start empty.
func RunBackendContract(t *testing.T, b Backend) {
	ctx := context.Background()
	invID := "contract-inv-" + time.Now().Format("20060102150405")

	t.Run("Invitation Not Found", func(t *testing.T) {
		_, err := b.Invitation(ctx, invID)
		assert.ErrorIs(t, err, domain.ErrInvitationNotFound)
	})

	t.Run("Connection Not Found", func(t *testing.T) {
		_, err := b.ConnectionByInvitation(ctx, invID)
		assert.ErrorIs(t, err, domain.ErrConnectionNotFound)
	})

	t.Run("Save and Load Invitation", func(t *testing.T) {
		rec := domain.InvitationRecord{
			ID:                         invID,
			GoalCode:                   domain.GoalVerifyOnce,
			InvitationRequestThreadIDs: []string{"th-1"},
		}
		require.NoError(t, b.SaveInvitation(ctx, rec))

		loaded, err := b.Invitation(ctx, invID)
		require.NoError(t, err)
		assert.Equal(t, rec, *loaded)
	})

	t.Run("Save and Load Connection", func(t *testing.T) {
		rec := domain.ConnectionRecord{ID: "conn-1", InvitationID: invID, TheirLabel: "Verifier"}
		require.NoError(t, b.SaveConnection(ctx, rec))

		loaded, err := b.ConnectionByInvitation(ctx, invID)
		require.NoError(t, err)
		assert.Equal(t, rec, *loaded)
	})

	t.Run("Notifications Keep Arrival Order", func(t *testing.T) {
		first := domain.BasicMessage{Exchange: domain.Exchange{RecordID: "msg-1", ConnID: "conn-1"}, Content: "hi"}
		second := domain.ProofExchange{Exchange: domain.Exchange{RecordID: "proof-1", ConnID: "conn-1", ThID: "th-1"}}
		third := domain.W3cCredential{Credential: domain.Credential{RecordID: "w3c-1", OfferURI: "openid-credential-offer://a"}}

		require.NoError(t, b.PushNotification(ctx, first))
		require.NoError(t, b.PushNotification(ctx, second))
		require.NoError(t, b.PushNotification(ctx, third))

		got, err := b.Notifications(ctx, domain.FeedQuery{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, first, got[0])
		assert.Equal(t, second, got[1])
		assert.Equal(t, third, got[2])
	})

	t.Run("External Credential URI Hint", func(t *testing.T) {
		got, err := b.Notifications(ctx, domain.FeedQuery{ExternalCredentialURI: "openid-credential-offer://other"})
		require.NoError(t, err)
		for _, n := range got {
			assert.False(t, domain.IsExternal(n), "external credential %s should be filtered", n.ID())
		}

		got, err = b.Notifications(ctx, domain.FeedQuery{ExternalCredentialURI: "openid-credential-offer://a"})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("Watch Signals Changes", func(t *testing.T) {
		wctx, cancel := context.WithCancel(ctx)
		defer cancel()

		changes, err := b.Watch(wctx)
		require.NoError(t, err)

		// Writes are retried until the subscription observes one; some backends
		// only deliver to subscriptions that are fully established.
		deadline := time.After(2 * time.Second)
		for {
			require.NoError(t, b.SaveConnection(ctx, domain.ConnectionRecord{ID: "conn-2", InvitationID: invID}))
			select {
			case <-changes:
				return
			case <-time.After(50 * time.Millisecond):
			case <-deadline:
				t.Fatal("no change signal received")
			}
		}
	})
}
