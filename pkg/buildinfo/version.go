// Package buildinfo holds the version stamped into skyline binaries.
//
// The variables are set with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/skyline/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/skyline/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/skyline/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/skyline
package buildinfo

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information, one field per line.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\ngo: %s", Version, Commit, Date, runtime.Version())
}

// Template is the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, %s)\n", Version, Commit, Date)
}

// UserAgent identifies skyline in outgoing HTTP requests.
func UserAgent() string {
	return "skyline/" + Version
}
