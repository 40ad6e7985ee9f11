package domain

// NotificationKind is the discriminant of a Notification.
type NotificationKind string

const (
	KindBasicMessage       NotificationKind = "basic_message"
	KindCredentialExchange NotificationKind = "credential_exchange"
	KindProofExchange      NotificationKind = "proof_exchange"
	KindW3cCredential      NotificationKind = "w3c_credential"
	KindSdJwtVc            NotificationKind = "sd_jwt_vc"
)

// Notification is a candidate record from the notification feed.
// The set of implementations is closed; switch on the concrete type.
type Notification interface {
	ID() string
	Kind() NotificationKind
	notification()
}

// Correlated is implemented by records exchanged over a connection or thread.
type Correlated interface {
	Notification
	ConnectionID() string
	ThreadID() string
}

// External is implemented by credentials offered outside a connection
// (e.g. through an OpenID offer URI). They carry no correlation fields.
type External interface {
	Notification
	URI() string
}

// Exchange holds the correlation fields shared by protocol-bearing records.
type Exchange struct {
	RecordID string `json:"id" yaml:"id" mapstructure:"id"`
	ConnID   string `json:"connection_id,omitempty" yaml:"connection_id,omitempty" mapstructure:"connection_id"`
	ThID     string `json:"thread_id,omitempty" yaml:"thread_id,omitempty" mapstructure:"thread_id"`
	State    string `json:"state,omitempty" yaml:"state,omitempty" mapstructure:"state"`
}

func (e Exchange) ID() string           { return e.RecordID }
func (e Exchange) ConnectionID() string { return e.ConnID }
func (e Exchange) ThreadID() string     { return e.ThID }

// BasicMessage is a chat message. It never qualifies as a match.
type BasicMessage struct {
	Exchange `yaml:",inline" mapstructure:",squash"`
	Content  string `json:"content,omitempty" yaml:"content,omitempty" mapstructure:"content"`
}

func (BasicMessage) Kind() NotificationKind { return KindBasicMessage }
func (BasicMessage) notification()          {}

// CredentialExchange is an issue-credential protocol record (an offer).
type CredentialExchange struct {
	Exchange `yaml:",inline" mapstructure:",squash"`
}

func (CredentialExchange) Kind() NotificationKind { return KindCredentialExchange }
func (CredentialExchange) notification()          {}

// ProofExchange is a present-proof protocol record (a request).
type ProofExchange struct {
	Exchange `yaml:",inline" mapstructure:",squash"`
}

func (ProofExchange) Kind() NotificationKind { return KindProofExchange }
func (ProofExchange) notification()          {}

// Credential holds the payload shared by externally offered credentials.
type Credential struct {
	RecordID string         `json:"id" yaml:"id" mapstructure:"id"`
	OfferURI string         `json:"uri,omitempty" yaml:"uri,omitempty" mapstructure:"uri"`
	Issuer   string         `json:"issuer,omitempty" yaml:"issuer,omitempty" mapstructure:"issuer"`
	Claims   map[string]any `json:"claims,omitempty" yaml:"claims,omitempty" mapstructure:"claims"`
}

func (c Credential) ID() string  { return c.RecordID }
func (c Credential) URI() string { return c.OfferURI }

// W3cCredential is a W3C verifiable credential received out of band.
type W3cCredential struct {
	Credential `yaml:",inline" mapstructure:",squash"`
}

func (W3cCredential) Kind() NotificationKind { return KindW3cCredential }
func (W3cCredential) notification()          {}

// SdJwtVc is an SD-JWT verifiable credential received out of band.
type SdJwtVc struct {
	Credential `yaml:",inline" mapstructure:",squash"`
	Compact    string `json:"compact,omitempty" yaml:"compact,omitempty" mapstructure:"compact"`
}

func (SdJwtVc) Kind() NotificationKind { return KindSdJwtVc }
func (SdJwtVc) notification()          {}

// IsExternal reports whether n is an externally offered credential.
func IsExternal(n Notification) bool {
	switch n.(type) {
	case W3cCredential, SdJwtVc:
		return true
	}
	return false
}

var (
	_ Correlated = BasicMessage{}
	_ Correlated = CredentialExchange{}
	_ Correlated = ProofExchange{}
	_ External   = W3cCredential{}
	_ External   = SdJwtVc{}
)
