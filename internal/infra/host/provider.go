// Package host collects hardware, OS and package facts of the local machine
// for a journal environment snapshot.
package host

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/rljournal/internal/application/port/output"
	"github.com/YoshitsuguKoike/rljournal/internal/domain/model/journal"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// MissingPurpose is stored when no PURPOSE file is found
const MissingPurpose = "Cannot find the PURPOSE file of this test. Could be a missing, or rlInitializeJournal wasn't called from appropriate location"

// Provider implements output.EnvironmentProvider on top of /proc, /etc,
// df and rpm.
type Provider struct {
	FS            afero.Fs
	Runner        CommandRunner
	Logger        *zap.Logger
	ExtraPackages []string // additional package names to look up
	FrameworkRoot string   // plugins are <root>/plugin/*.sh
	PurposeFile   string
	ReleaseGlob   string
	Hostname      func() (string, error)
	LookupFQDN    func(ctx context.Context, host string) string // "" when unresolvable
	Machine       func() string
}

// NewProvider creates a provider reading the real host
func NewProvider(fs afero.Fs, logger *zap.Logger) *Provider {
	return &Provider{
		FS:          fs,
		Runner:      ExecRunner{},
		Logger:      logger,
		PurposeFile: "PURPOSE",
		ReleaseGlob: "/etc/*-release",
		Hostname:    os.Hostname,
		LookupFQDN:  resolveFQDN,
		Machine:     machine,
	}
}

var _ output.EnvironmentProvider = (*Provider)(nil)

// Snapshot collects all facts. It never fails; missing facts are "unknown".
func (p *Provider) Snapshot(ctx context.Context, pkg string) output.EnvironmentSnapshot {
	return output.EnvironmentSnapshot{
		Hostname: p.hostname(ctx),
		Arch:     p.Machine(),
		Release:  p.release(),
		CPU:      p.cpu(),
		RAM:      p.ram(),
		Disk:     p.disk(ctx),
		Packages: p.packages(ctx, pkg),
		Plugins:  p.plugins(),
		Purpose:  p.purpose(),
	}
}

// hostname reports the fully qualified name, falling back to the short one
func (p *Provider) hostname(ctx context.Context) string {
	if p.Hostname == nil {
		return unknown
	}
	name, err := p.Hostname()
	if err != nil || name == "" {
		p.debug("hostname lookup failed", zap.Error(err))
		return unknown
	}
	if p.LookupFQDN != nil {
		if fqdn := p.LookupFQDN(ctx, name); fqdn != "" {
			return fqdn
		}
	}
	return name
}

const fqdnTimeout = 2 * time.Second

// resolveFQDN returns the first name containing a dot among the reverse
// lookups of host's addresses
func resolveFQDN(ctx context.Context, host string) string {
	if strings.Contains(host, ".") {
		return host
	}
	ctx, cancel := context.WithTimeout(ctx, fqdnTimeout)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		names, err := net.DefaultResolver.LookupAddr(ctx, addr)
		if err != nil {
			continue
		}
		for _, n := range names {
			if n = strings.TrimSuffix(n, "."); strings.Contains(n, ".") {
				return n
			}
		}
	}
	return ""
}

// release prefers distribution specific release files over os-release
func (p *Provider) release() string {
	matches, err := afero.Glob(p.FS, p.ReleaseGlob)
	if err != nil || len(matches) == 0 {
		return unknown
	}
	sort.Slice(matches, func(i, k int) bool {
		return releaseRank(matches[i]) < releaseRank(matches[k]) ||
			(releaseRank(matches[i]) == releaseRank(matches[k]) && matches[i] < matches[k])
	})
	for _, m := range matches {
		data, err := afero.ReadFile(p.FS, m)
		if err != nil {
			continue
		}
		if filepath.Base(m) == "os-release" {
			if name := osReleasePrettyName(string(data)); name != "" {
				return name
			}
			continue
		}
		if s := strings.TrimSpace(string(data)); s != "" {
			return journal.Sanitize(s)
		}
	}
	return unknown
}

func releaseRank(path string) int {
	switch filepath.Base(path) {
	case "redhat-release":
		return 0
	case "system-release":
		return 1
	case "os-release", "lsb-release":
		return 3
	}
	return 2
}

func osReleasePrettyName(data string) string {
	for _, line := range strings.Split(data, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "PRETTY_NAME="); ok {
			return journal.Sanitize(strings.Trim(v, `"'`))
		}
	}
	return ""
}

func (p *Provider) plugins() []string {
	if p.FrameworkRoot == "" {
		return nil
	}
	entries, err := afero.ReadDir(p.FS, filepath.Join(p.FrameworkRoot, "plugin"))
	if err != nil {
		return nil
	}
	var plugins []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sh") && len(e.Name()) > len(".sh") {
			plugins = append(plugins, e.Name())
		}
	}
	sort.Strings(plugins)
	return plugins
}

func (p *Provider) purpose() string {
	data, err := afero.ReadFile(p.FS, p.PurposeFile)
	if err != nil {
		return MissingPurpose
	}
	return journal.Sanitize(string(data))
}

func (p *Provider) debug(msg string, fields ...zap.Field) {
	if p.Logger != nil {
		p.Logger.Debug(msg, fields...)
	}
}
