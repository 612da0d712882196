// Package version provides build-time version information.
//
// Set via ldflags:
//
//	go build -ldflags "-X github.com/rickgao/hyperscope-stream/internal/version.Version=$(git describe --tags) \
//	                   -X github.com/rickgao/hyperscope-stream/internal/version.Commit=$(git rev-parse --short HEAD)" ./cmd/...
package version

import "fmt"

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown" // UTC, RFC 3339
)

// UserAgent identifies this build on outbound connections.
func UserAgent() string {
	return "hyperscope-stream/" + Version
}

// String returns a formatted version string.
func String() string {
	return fmt.Sprintf("%s (%s) built %s", Version, Commit, BuildTime)
}
