package output

import "context"

// EnvironmentSnapshot holds the host facts captured when a journal is created
type EnvironmentSnapshot struct {
	Hostname string
	Arch     string
	Release  string
	CPU      string   // e.g. "4 x Intel(R) Xeon(R) CPU"
	RAM      string   // e.g. "7821 MB"
	Disk     string   // e.g. "49.1 GB"
	Packages []string // installed name-version-release.arch strings
	Plugins  []string
	Purpose  string
}

// EnvironmentProvider collects the environment snapshot for a new journal.
// Facts that cannot be determined are reported as "unknown" rather than failing.
type EnvironmentProvider interface {
	Snapshot(ctx context.Context, pkg string) EnvironmentSnapshot
}
