package http

import (
	"github.com/aretw0/handshake/pkg/domain"
	"github.com/aretw0/handshake/pkg/process"
)

// SSE event names.
const (
	EventState       = "state"
	EventNotice      = "notice"
	EventDestination = "destination"
)

// DestinationView is the wire form of a destination.
type DestinationView struct {
	Kind  domain.DestinationKind `json:"kind"`
	Value domain.Destination     `json:"value,omitempty"`
}

func NewDestinationView(d domain.Destination) *DestinationView {
	if d == nil {
		return nil
	}
	v := &DestinationView{Kind: d.Kind()}
	if _, home := d.(domain.Home); !home {
		v.Value = d
	}
	return v
}

// MatchView identifies the matched notification.
type MatchView struct {
	ID   string                  `json:"id"`
	Kind domain.NotificationKind `json:"kind"`
}

// ProcessView is the snapshot returned by the process endpoints.
type ProcessView struct {
	ProcessID    string           `json:"process_id"`
	InvitationID string           `json:"invitation_id"`
	Phase        domain.Phase     `json:"phase"`
	InProgress   bool             `json:"in_progress"`
	DelayElapsed bool             `json:"delay_elapsed"`
	Matched      *MatchView       `json:"matched,omitempty"`
	Outcome      *DestinationView `json:"outcome,omitempty"`
	Cause        domain.Cause     `json:"cause,omitempty"`
}

func newProcessView(p *process.Process) ProcessView {
	s := p.State()
	v := ProcessView{
		ProcessID:    p.ID(),
		InvitationID: p.InvitationID(),
		Phase:        s.Phase,
		InProgress:   s.InProgress,
		DelayElapsed: s.DelayElapsed,
		Outcome:      NewDestinationView(s.Outcome),
		Cause:        s.Cause,
	}
	if s.Matched != nil {
		v.Matched = &MatchView{ID: s.Matched.ID(), Kind: s.Matched.Kind()}
	}
	return v
}

// StartRequest is the optional body of POST /processes/{invitationID}.
type StartRequest struct {
	ExternalCredentialURI string `json:"external_credential_uri,omitempty"`
}
