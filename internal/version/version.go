// Package version holds the engine version. It is part of every cache key,
// so results computed by an older engine are never reused.
package version

// Version is overridden at build time with
// -ldflags "-X github.com/gnolang/plint/internal/version.Version=...".
var Version = "0.1.0-dev"
