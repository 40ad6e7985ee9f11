package domain

import "slices"

// InvitationRecord identifies an out-of-band invitation.
// It is owned by the agent; the resolver only holds a read reference.
type InvitationRecord struct {
	ID       string   `json:"id" yaml:"id" mapstructure:"id"`
	Label    string   `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	GoalCode GoalCode `json:"goal_code,omitempty" yaml:"goal_code,omitempty" mapstructure:"goal_code"`

	// InvitationRequestThreadIDs are the thread ids of the requests attached to the
	// invitation (connectionless proof requests are correlated through them).
	InvitationRequestThreadIDs []string `json:"invitation_request_thread_ids,omitempty" yaml:"invitation_request_thread_ids,omitempty" mapstructure:"invitation_request_thread_ids"`
}

// HasThread reports whether threadID belongs to one of the invitation's requests.
func (r *InvitationRecord) HasThread(threadID string) bool {
	if r == nil || threadID == "" {
		return false
	}
	return slices.Contains(r.InvitationRequestThreadIDs, threadID)
}

// ConnectionRecord identifies an established connection.
type ConnectionRecord struct {
	ID           string `json:"id" yaml:"id" mapstructure:"id"`
	InvitationID string `json:"invitation_id" yaml:"invitation_id" mapstructure:"invitation_id"`
	TheirLabel   string `json:"their_label,omitempty" yaml:"their_label,omitempty" mapstructure:"their_label"`
	State        string `json:"state,omitempty" yaml:"state,omitempty" mapstructure:"state"`
}

// FeedQuery parameterizes a notification feed read.
type FeedQuery struct {
	// ExternalCredentialURI restricts external credential records to the offer
	// identified by this URI. Empty means no restriction.
	ExternalCredentialURI string
}

// Accept reports whether n passes the query.
// Protocol records always pass; external credentials must carry the hinted URI.
func (q FeedQuery) Accept(n Notification) bool {
	if q.ExternalCredentialURI == "" {
		return true
	}
	ext, ok := n.(External)
	if !ok {
		return true
	}
	return ext.URI() == q.ExternalCredentialURI
}
