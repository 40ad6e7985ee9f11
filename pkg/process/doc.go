/*
Package process runs the reactive resolution of one out-of-band invitation.

A Process observes the agent's record store and notification feed, feeds every
change through the pure matcher and router in internal/runtime, and performs
exactly one navigation when the state becomes resolved. A watchdog bounds how
long the user waits for a matching record; a dismiss request or a cancelled
context ends the wait early.
*/
package process
