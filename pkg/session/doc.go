/*
Package session keeps the registry of live resolution processes.

It guarantees a single live process per invitation, optionally across replicas
through a ports.DistributedLocker, and gives callers a handle to dismiss or tear
down a process by invitation id.
*/
package session
