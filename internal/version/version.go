// Package version exposes build metadata for the About dialog and logs.
package version

import "fmt"

// Overridden at release time via
// -ldflags "-X .../internal/version.Version=... -X .../internal/version.GitCommit=...".
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Full returns a single human-readable version line.
func Full() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, GitCommit, BuildTime)
}
