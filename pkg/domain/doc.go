/*
Package domain contains the core domain models of the handshake resolver.

It defines the records observed from the wallet agent (invitations, connections and
notifications), the fixed set of destinations a resolution can produce, and the
immutable ProcessState that the runtime advances. This package is kept pure and free
of external dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - InvitationRecord: An out-of-band invitation carrying a goal code and request thread ids.
  - ConnectionRecord: A connection formed from an invitation (may be absent).
  - Notification: A sealed sum type over the five notification record kinds.
  - Destination: Where the user is sent once a decision is made.
  - ProcessState: The runtime snapshot of one resolution (in progress, match, delay).
*/
package domain
