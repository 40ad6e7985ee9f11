package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/handshake/pkg/adapters/redis"
	"github.com/aretw0/handshake/pkg/domain"
	"github.com/aretw0/handshake/pkg/ports"
	"github.com/aretw0/handshake/pkg/process"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redis.NewFromClient(client, opts...)
}

func TestRedisStore_Contract(t *testing.T) {
	_, store := setup(t)
	ports.RunBackendContract(t, store)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, store := setup(t, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.SaveInvitation(ctx, domain.InvitationRecord{ID: "inv-1"}))
	require.NoError(t, store.SaveConnection(ctx, domain.ConnectionRecord{ID: "c", InvitationID: "inv-1"}))
	require.NoError(t, store.PushNotification(ctx, domain.ProofExchange{Exchange: domain.Exchange{RecordID: "p"}}))

	assert.True(t, mr.Exists("custom:app:oob:inv-1"))
	assert.True(t, mr.Exists("custom:app:conn:inv-1"))
	assert.True(t, mr.Exists("custom:app:notifications"))
}

func TestRedisStore_ReadsAgentWrittenRecords(t *testing.T) {
	mr, store := setup(t)
	ctx := context.Background()

	// Records written by another process, in the documented layout.
	require.NoError(t, mr.Set("handshake:oob:inv-1", `{"id":"inv-1","goal_code":"aries.vc.verify.once","invitation_request_thread_ids":["th-1"]}`))
	_, err := mr.Lpush("handshake:notifications", `{"type":"proof_exchange","id":"proof-1","thread_id":"th-1","state":"request-received"}`)
	require.NoError(t, err)
	_, err = mr.Push("handshake:notifications", `{"type":"sd_jwt_vc","id":"sd-1","uri":"openid-credential-offer://x","claims":{"age":21}}`)
	require.NoError(t, err)

	inv, err := store.Invitation(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, domain.GoalVerifyOnce, inv.GoalCode)
	assert.True(t, inv.HasThread("th-1"))

	got, err := store.Notifications(ctx, domain.FeedQuery{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.ProofExchange{Exchange: domain.Exchange{RecordID: "proof-1", ThID: "th-1", State: "request-received"}}, got[0])

	sd, ok := got[1].(domain.SdJwtVc)
	require.True(t, ok)
	assert.Equal(t, "openid-credential-offer://x", sd.URI())
	assert.Equal(t, float64(21), sd.Claims["age"])
}

func TestRedisStore_SkipsUndecodableRecords(t *testing.T) {
	mr, store := setup(t)

	_, err := mr.Push("handshake:notifications",
		`not json`,
		`{"type":"mediation_record","id":"m-1"}`,
		`{"type":"credential_exchange","id":"cred-1","connection_id":"conn-1"}`,
	)
	require.NoError(t, err)

	got, err := store.Notifications(context.Background(), domain.FeedQuery{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Notification{
		domain.CredentialExchange{Exchange: domain.Exchange{RecordID: "cred-1", ConnID: "conn-1"}},
	}, got)
}

func TestRedisStore_CorruptRecordIsAnError(t *testing.T) {
	mr, store := setup(t)
	require.NoError(t, mr.Set("handshake:oob:inv-1", "{"))

	_, err := store.Invitation(context.Background(), "inv-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvitationNotFound)
}

func TestRedisStore_DrivesAProcess(t *testing.T) {
	_, store := setup(t)
	ctx := context.Background()
	require.NoError(t, store.SaveInvitation(ctx, domain.InvitationRecord{ID: "inv-1", GoalCode: domain.GoalIssue}))

	var navigated []domain.Destination
	nav := ports.NavigatorFunc(func(_ context.Context, d domain.Destination) error {
		navigated = append(navigated, d)
		return nil
	})

	p := process.New("inv-1", store, store, nav, process.WithConfig(domain.Config{Delay: time.Minute}))
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run(ctx)
	}()

	// Keep writing until the process has subscribed and observed the records.
	require.Eventually(t, func() bool {
		_ = store.SaveConnection(ctx, domain.ConnectionRecord{ID: "conn-1", InvitationID: "inv-1"})
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)

	dest, err := p.Result()
	require.NoError(t, err)
	assert.Equal(t, domain.Chat{ConnectionID: "conn-1"}, dest)
	assert.Len(t, navigated, 1)
}
