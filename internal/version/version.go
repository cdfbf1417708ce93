package version

// Version is overridden at build time with -ldflags "-X github.com/diesi/ask/internal/version.Version=...".
var Version = "0.1.0-dev"

// Get returns the current version string.
func Get() string { return Version }
