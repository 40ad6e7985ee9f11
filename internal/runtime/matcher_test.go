package runtime_test

import (
	"testing"

	"github.com/aretw0/handshake/internal/runtime"
	"github.com/aretw0/handshake/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func proof(id, connID, threadID string) domain.ProofExchange {
	return domain.ProofExchange{Exchange: domain.Exchange{RecordID: id, ConnID: connID, ThID: threadID}}
}

func offer(id, connID, threadID string) domain.CredentialExchange {
	return domain.CredentialExchange{Exchange: domain.Exchange{RecordID: id, ConnID: connID, ThID: threadID}}
}

func message(id, connID string) domain.BasicMessage {
	return domain.BasicMessage{Exchange: domain.Exchange{RecordID: id, ConnID: connID}, Content: "hello"}
}

func w3c(id string) domain.W3cCredential {
	return domain.W3cCredential{Credential: domain.Credential{RecordID: id, OfferURI: "openid-credential-offer://" + id}}
}

func sdjwt(id string) domain.SdJwtVc {
	return domain.SdJwtVc{Credential: domain.Credential{RecordID: id}}
}

func TestMatch(t *testing.T) {
	conn := &domain.ConnectionRecord{ID: "conn-1", InvitationID: "inv-1"}
	inv := &domain.InvitationRecord{ID: "inv-1", InvitationRequestThreadIDs: []string{"th-1"}}

	tests := []struct {
		name       string
		conn       *domain.ConnectionRecord
		inv        *domain.InvitationRecord
		candidates []domain.Notification
		wantID     string // empty means no match
	}{
		{
			name:       "Empty feed",
			conn:       conn,
			inv:        inv,
			candidates: nil,
		},
		{
			name:       "Basic message on the connection never matches",
			conn:       conn,
			inv:        inv,
			candidates: []domain.Notification{message("msg-1", "conn-1")},
		},
		{
			name:       "Correlated by connection id",
			conn:       conn,
			inv:        inv,
			candidates: []domain.Notification{proof("proof-other", "conn-9", ""), offer("cred-1", "conn-1", "")},
			wantID:     "cred-1",
		},
		{
			name:       "Correlated by invitation thread id without connection",
			inv:        inv,
			candidates: []domain.Notification{proof("proof-1", "", "th-1")},
			wantID:     "proof-1",
		},
		{
			name:       "Uncorrelated protocol record is skipped",
			conn:       conn,
			inv:        inv,
			candidates: []domain.Notification{proof("proof-9", "conn-9", "th-9")},
		},
		{
			name:       "Empty connection id does not match an empty connection",
			conn:       &domain.ConnectionRecord{},
			inv:        inv,
			candidates: []domain.Notification{proof("proof-1", "", "")},
		},
		{
			name:       "External credential matches unconditionally",
			candidates: []domain.Notification{message("msg-1", "conn-1"), w3c("w3c-1")},
			wantID:     "w3c-1",
		},
		{
			name:       "SD-JWT matches unconditionally",
			conn:       conn,
			candidates: []domain.Notification{sdjwt("sd-1")},
			wantID:     "sd-1",
		},
		{
			name:       "First qualifying candidate wins",
			conn:       conn,
			inv:        inv,
			candidates: []domain.Notification{message("msg-1", "conn-1"), proof("proof-1", "", "th-1"), w3c("w3c-1")},
			wantID:     "proof-1",
		},
		{
			name:       "Nil candidate is skipped",
			conn:       conn,
			candidates: []domain.Notification{nil, offer("cred-1", "conn-1", "")},
			wantID:     "cred-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := runtime.Match(tt.conn, tt.inv, tt.candidates)
			if tt.wantID == "" {
				assert.False(t, ok)
				assert.Nil(t, got)
				return
			}
			assert.True(t, ok)
			if assert.NotNil(t, got) {
				assert.Equal(t, tt.wantID, got.ID())
			}
		})
	}
}
