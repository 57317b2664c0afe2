// Package buildinfo holds release metadata stamped in with -ldflags -X,
// e.g. -X github.com/YoshitsuguKoike/rljournal/internal/buildinfo.Version=v1.0.0
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// GetVersion returns Version, or "dev" for unstamped builds
func GetVersion() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// String renders the version with commit and date when they were stamped
func String() string {
	s := GetVersion()
	switch {
	case Commit != "" && Date != "":
		s += fmt.Sprintf(" (%s, %s)", Commit, Date)
	case Commit != "":
		s += fmt.Sprintf(" (%s)", Commit)
	}
	return s
}
