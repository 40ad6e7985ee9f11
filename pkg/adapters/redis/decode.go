package redis

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/handshake/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// TypeField is the discriminator key of a stored notification.
const TypeField = "type"

// ErrUnknownKind is returned when a record carries an unsupported type discriminator.
var ErrUnknownKind = errors.New("unknown notification type")

// DecodeNotification turns a tagged map (as found in Redis or a seed file)
// into its concrete notification type.
func DecodeNotification(raw map[string]any) (domain.Notification, error) {
	kind, _ := raw[TypeField].(string)

	var target domain.Notification
	switch domain.NotificationKind(kind) {
	case domain.KindBasicMessage:
		target = &domain.BasicMessage{}
	case domain.KindCredentialExchange:
		target = &domain.CredentialExchange{}
	case domain.KindProofExchange:
		target = &domain.ProofExchange{}
	case domain.KindW3cCredential:
		target = &domain.W3cCredential{}
	case domain.KindSdJwtVc:
		target = &domain.SdJwtVc{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s record: %w", kind, err)
	}

	// Store values, not pointers: the domain switches on value types.
	switch n := target.(type) {
	case *domain.BasicMessage:
		return *n, nil
	case *domain.CredentialExchange:
		return *n, nil
	case *domain.ProofExchange:
		return *n, nil
	case *domain.W3cCredential:
		return *n, nil
	case *domain.SdJwtVc:
		return *n, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// EncodeNotification renders a notification as tagged JSON.
func EncodeNotification(n domain.Notification) ([]byte, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to tag notification: %w", err)
	}
	fields[TypeField] = string(n.Kind())
	return json.Marshal(fields)
}
