// Package version exposes build-time version information.
package version

import "fmt"

var (
	// Version is set at build time via -ldflags.
	Version = "dev"

	// GitCommit is the git commit SHA the binary was built from.
	GitCommit = "unknown"
)

// Info holds version information for display.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
}

// Get returns the current version information.
func Get() Info {
	return Info{Version: Version, GitCommit: GitCommit}
}

func (i Info) String() string {
	return fmt.Sprintf("skilldeck %s (%s)", i.Version, i.GitCommit)
}
