// Package version holds build metadata injected via ldflags.
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the metadata for logs and the health endpoint.
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}
