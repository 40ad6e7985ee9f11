/*
Package handshake resolves a scanned out-of-band invitation into the screen the
user should land on.

After a wallet accepts an invitation, the agent materializes records
asynchronously: the invitation itself, a connection, and protocol records such
as proof requests or credential offers. Credentials may also arrive out of band
(W3C or SD-JWT offers). handshake watches those records, correlates the first
one that belongs to the invitation, and issues exactly one navigation decision:

  - a proof request opens the proof review,
  - a credential offer opens the offer,
  - an externally offered credential opens its detail view,
  - a connection without a known goal opens the chat,
  - a dismissal (or a configured timeout) returns home.

# Architecture

The decision logic is pure and lives in internal/runtime. A process
(pkg/process) owns one resolution: it subscribes to the ports.RecordStore and
ports.NotificationFeed, re-evaluates on every change, and drives a watchdog.
The session manager (pkg/session) keeps at most one live process per invitation.
Adapters provide the record store (memory, Redis), the HTTP surface and metrics.

# Usage

	store := memory.NewStore()
	engine := handshake.New(store, store,
		handshake.WithConfig(domain.Config{Delay: 10 * time.Second}),
	)
	defer engine.Close()

	dest, err := engine.Resolve(ctx, invitationID, navigator)
*/
package handshake
