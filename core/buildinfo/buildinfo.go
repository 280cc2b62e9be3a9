// Package buildinfo carries version stamps injected by the linker:
//
//	go build -ldflags "-X github.com/qazobot/qazobot/core/buildinfo.Version=v0.3.0 \
//	  -X github.com/qazobot/qazobot/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/qazobot/qazobot/core/buildinfo.Date=$(date -u +%FT%TZ)"
package buildinfo

var (
	// Version is the release tag; "dev" for local builds.
	Version = "dev"
	// Commit is the short VCS revision.
	Commit = "local"
	// Date is the RFC3339 build timestamp, empty when unknown.
	Date = ""
)

// String renders the stamp as "version (commit)".
func String() string {
	return Version + " (" + Commit + ")"
}
