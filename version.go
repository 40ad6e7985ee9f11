package handshake

// Version is the library version. It is overridden at build time through
// -ldflags "-X github.com/aretw0/handshake.Version=...".
var Version = "dev"
