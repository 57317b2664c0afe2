package host

import (
	"context"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// CommandRunner runs a local command and returns its standard output
type CommandRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Output runs name with args
func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

const rpmQueryFormat = "%{NAME}-%{VERSION}-%{RELEASE}.%{ARCH}\n"

// packages queries the rpm database for the tested package and the extra
// package names. Packages that are not installed are skipped.
func (p *Provider) packages(ctx context.Context, pkg string) []string {
	names := append([]string{pkg}, p.ExtraPackages...)

	var details []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out, err := p.Runner.Output(ctx, "rpm", "-q", "--qf", rpmQueryFormat, name)
		if err != nil {
			p.debug("package not found", zap.String("package", name), zap.Error(err))
			continue
		}
		for _, line := range strings.Split(string(out), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				details = append(details, line)
			}
		}
	}
	return details
}
