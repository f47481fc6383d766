// Package version carries the build metadata stamped in at link time via
// -ldflags -X. Untouched builds report the dev defaults.
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is a snapshot of the stamped build metadata.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String renders the one-line banner printed at startup and by -version.
func (i Info) String() string {
	return fmt.Sprintf("NongNai %s (commit: %s, built: %s)", i.Version, i.Commit, i.Date)
}
