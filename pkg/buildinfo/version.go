// Package buildinfo holds version information injected at link time:
//
//	go build -ldflags "-X github.com/matzehuels/propgraph/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/propgraph/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/propgraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/propgraph
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

// String returns the build information on three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s (%s)", Version, Commit, Date, runtime.Version())
}

// Template returns the cobra version template.
func Template() string {
	return "{{.Name}} " + String() + "\n"
}
