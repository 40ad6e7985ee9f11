package runtime

import "github.com/aretw0/handshake/pkg/domain"

// DecisionKind is the verdict of a single routing pass.
type DecisionKind int

const (
	// DecisionWait means there is not enough information to act yet.
	DecisionWait DecisionKind = iota
	// DecisionResolve carries the terminal destination.
	DecisionResolve
	// DecisionStall means a match exists but a record it depends on is missing.
	DecisionStall
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionWait:
		return "wait"
	case DecisionResolve:
		return "resolve"
	case DecisionStall:
		return "stall"
	default:
		return "undefined"
	}
}

// Decision is the output of Decide.
type Decision struct {
	Kind        DecisionKind
	Destination domain.Destination
	Err         error
}

func wait() Decision { return Decision{Kind: DecisionWait} }

func resolve(dest domain.Destination) Decision {
	return Decision{Kind: DecisionResolve, Destination: dest}
}

// Decide classifies the observed inputs into a routing decision.
// External credentials are routed first, regardless of invitation and
// connection; the goal-code rules follow in priority order.
func Decide(inv *domain.InvitationRecord, conn *domain.ConnectionRecord, matched domain.Notification) Decision {
	if matched != nil && domain.IsExternal(matched) {
		return resolve(domain.ExternalCredentialDetail{Credential: matched})
	}

	if inv == nil {
		if matched != nil {
			return Decision{Kind: DecisionStall, Err: domain.ErrMissingInvitation}
		}
		return wait()
	}

	// A connection without a recognized purpose defaults to plain chat.
	if conn != nil && !inv.GoalCode.Known() {
		return resolve(domain.Chat{ConnectionID: conn.ID})
	}

	if matched == nil {
		return wait()
	}

	// Connectionless exchanges are proof requests; connectionless offers do not occur.
	if conn == nil {
		return resolve(domain.ProofReview{ProofID: matched.ID()})
	}

	switch {
	case inv.GoalCode.IsVerify():
		return resolve(domain.ProofReview{ProofID: matched.ID()})
	case inv.GoalCode.IsIssue():
		return resolve(domain.CredentialOffer{CredentialID: matched.ID()})
	default:
		return resolve(domain.Chat{ConnectionID: conn.ID})
	}
}
