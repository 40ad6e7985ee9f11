package runtime

import "github.com/aretw0/handshake/pkg/domain"

// Match selects the first candidate correlated to the connection or invitation.
// Rules, applied in order to each candidate:
//  1. Basic messages never match.
//  2. A candidate on the current connection matches.
//  3. A candidate on one of the invitation's request threads matches.
//  4. External credentials match by presence alone.
func Match(conn *domain.ConnectionRecord, inv *domain.InvitationRecord, candidates []domain.Notification) (domain.Notification, bool) {
	for _, n := range candidates {
		if matches(conn, inv, n) {
			return n, true
		}
	}
	return nil, false
}

func matches(conn *domain.ConnectionRecord, inv *domain.InvitationRecord, n domain.Notification) bool {
	switch rec := n.(type) {
	case nil:
		return false
	case domain.BasicMessage:
		return false
	case domain.Correlated:
		if conn != nil && rec.ConnectionID() != "" && rec.ConnectionID() == conn.ID {
			return true
		}
		return inv.HasThread(rec.ThreadID())
	default:
		return domain.IsExternal(n)
	}
}
