package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/handshake/pkg/domain"
)

var destinationLabels = map[domain.DestinationKind]string{
	domain.DestChat:                     "Chat",
	domain.DestProofReview:              "Proof review",
	domain.DestCredentialOffer:          "Credential offer",
	domain.DestExternalCredentialDetail: "External credential",
	domain.DestHome:                     "Home",
}

// Label is the human name of a destination kind.
func Label(kind domain.DestinationKind) string {
	if l, ok := destinationLabels[kind]; ok {
		return l
	}
	return string(kind)
}

// Target returns the record a destination opens, if any.
func Target(d domain.Destination) string {
	switch d := d.(type) {
	case domain.Chat:
		return Clean(d.ConnectionID)
	case domain.ProofReview:
		return Clean(d.ProofID)
	case domain.CredentialOffer:
		return Clean(d.CredentialID)
	case domain.ExternalCredentialDetail:
		if d.Credential != nil {
			return Clean(d.Credential.ID())
		}
	}
	return ""
}

// Summary renders a process state as a markdown table.
func Summary(s domain.ProcessState) string {
	var b strings.Builder

	if s.Resolved() {
		b.WriteString("## Invitation resolved\n\n")
	} else {
		b.WriteString("## Waiting for the agent\n\n")
	}

	b.WriteString("| Field | Value |\n|---|---|\n")
	row := func(k, v string) { fmt.Fprintf(&b, "| %s | %s |\n", k, v) }

	row("Invitation", "`"+Clean(s.InvitationID)+"`")
	if s.Matched != nil {
		row("Matched", fmt.Sprintf("`%s` (%s)", Clean(s.Matched.ID()), s.Matched.Kind()))
	}
	if s.Outcome != nil {
		row("Destination", Label(s.Outcome.Kind()))
		if target := Target(s.Outcome); target != "" {
			row("Target", "`"+target+"`")
		}
		row("Cause", string(s.Cause))
	} else {
		row("Phase", string(s.Phase))
	}
	row("Delay elapsed", yesNo(s.DelayElapsed))

	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
