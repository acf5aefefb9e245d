// Package build carries version metadata injected at link time.
package build

import "fmt"

// These variables are set at build time via -ldflags.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

// Info is the build metadata reported by the API and the CLI.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
}

// Current returns the metadata of the running binary.
func Current() Info {
	return Info{Version: Version, Commit: CommitSHA, BuildDate: BuildDate}
}

// String returns a single human-readable build info string.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.Commit, i.BuildDate)
}

// String returns the human-readable form of Current.
func String() string {
	return Current().String()
}
