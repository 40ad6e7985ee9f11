package domain

// DestinationKind names a navigation target.
type DestinationKind string

const (
	DestChat                     DestinationKind = "chat"
	DestProofReview              DestinationKind = "proof_review"
	DestCredentialOffer          DestinationKind = "credential_offer"
	DestExternalCredentialDetail DestinationKind = "external_credential_detail"
	DestHome                     DestinationKind = "home"
)

// Destination is the terminal outcome of a resolution.
// The set of implementations is closed.
type Destination interface {
	Kind() DestinationKind
	destination()
}

// Chat opens the conversation for a connection.
type Chat struct {
	ConnectionID string `json:"connection_id"`
}

// ProofReview opens a proof request for review.
type ProofReview struct {
	ProofID string `json:"proof_id"`
}

// CredentialOffer opens a credential offer for acceptance.
type CredentialOffer struct {
	CredentialID string `json:"credential_id"`
}

// ExternalCredentialDetail shows an externally offered credential.
type ExternalCredentialDetail struct {
	Credential Notification `json:"credential"`
}

// Home returns the user to the default screen.
type Home struct{}

func (Chat) Kind() DestinationKind                     { return DestChat }
func (ProofReview) Kind() DestinationKind              { return DestProofReview }
func (CredentialOffer) Kind() DestinationKind          { return DestCredentialOffer }
func (ExternalCredentialDetail) Kind() DestinationKind { return DestExternalCredentialDetail }
func (Home) Kind() DestinationKind                     { return DestHome }

func (Chat) destination()                     {}
func (ProofReview) destination()              {}
func (CredentialOffer) destination()          {}
func (ExternalCredentialDetail) destination() {}
func (Home) destination()                     {}
