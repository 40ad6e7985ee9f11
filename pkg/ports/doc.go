/*
Package ports defines the driven ports (interfaces) for the handshake resolver.

These interfaces decouple the core logic from external implementations, allowing
a process to observe records kept by any wallet agent backend and to hand its
decision to any presentation layer.

# Key Interfaces

  - RecordStore: Live view over invitation and connection records.
  - NotificationFeed: Live collection of candidate notification records.
  - Navigator: Receives the single destination of a process.
  - RecordWriter: The agent side of a store, used by adapters, seeding and tests.
  - DistributedLocker: Keeps a single live process per invitation across replicas.
*/
package ports
