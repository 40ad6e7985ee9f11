/*
Package observability turns process lifecycle events into Prometheus metrics
and structured log lines.

Both are exposed as domain.LifecycleHooks so they can be merged and registered
on an engine with handshake.WithLifecycleHooks.
*/
package observability
