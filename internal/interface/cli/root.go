package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/YoshitsuguKoike/rljournal/internal/app/config"
	"github.com/YoshitsuguKoike/rljournal/internal/application/port/output"
	"github.com/YoshitsuguKoike/rljournal/internal/application/service"
	"github.com/YoshitsuguKoike/rljournal/internal/domain/model/journal"
	infraConfig "github.com/YoshitsuguKoike/rljournal/internal/infra/config"
	"github.com/YoshitsuguKoike/rljournal/internal/infra/host"
	journalRepo "github.com/YoshitsuguKoike/rljournal/internal/infra/repository/journal"
	"github.com/YoshitsuguKoike/rljournal/internal/interface/cli/version"
)

// Option configures the command tree. Tests use it to swap the filesystem,
// environment and clock.
type Option func(*runtime)

// WithFs sets the filesystem holding journals and settings
func WithFs(fs afero.Fs) Option {
	return func(rt *runtime) { rt.fs = fs }
}

// WithGetenv sets the environment lookup
func WithGetenv(getenv func(string) string) Option {
	return func(rt *runtime) { rt.getenv = getenv }
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(rt *runtime) { rt.now = now }
}

// WithEnvironmentProvider replaces the host snapshot provider
func WithEnvironmentProvider(p output.EnvironmentProvider) Option {
	return func(rt *runtime) { rt.provider = p }
}

// WithOutput sets the stdout and stderr writers
func WithOutput(stdout, stderr io.Writer) Option {
	return func(rt *runtime) {
		rt.stdout = stdout
		rt.stderr = stderr
	}
}

// runtime holds what every command shares. cfg, logger and svc are set by
// the root pre-run hook.
type runtime struct {
	fs         afero.Fs
	getenv     func(string) string
	now        func() time.Time
	provider   output.EnvironmentProvider
	stdout     io.Writer
	stderr     io.Writer
	severities *journal.SeverityTable

	cfg    *config.Config
	logger *zap.Logger
	svc    *service.JournalService
}

func newRuntime(opts ...Option) *runtime {
	rt := &runtime{
		fs:         afero.NewOsFs(),
		getenv:     os.Getenv,
		now:        time.Now,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		severities: journal.DefaultSeverities(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// setup resolves configuration and wires the journal service
func (rt *runtime) setup(configPath string) error {
	cfg, err := infraConfig.LoadSettings(rt.fs, configPath, rt.getenv)
	if err != nil {
		return err
	}
	rt.cfg = cfg
	rt.logger = newLogger(cfg.LogLevel, rt.stderr)

	provider := rt.provider
	if provider == nil {
		hp := host.NewProvider(rt.fs, rt.logger)
		hp.FrameworkRoot = cfg.FrameworkRoot
		hp.ExtraPackages = cfg.ExtraPackages
		hp.PurposeFile = cfg.PurposeFile
		hp.ReleaseGlob = cfg.ReleaseGlob
		provider = hp
	}

	repo := journalRepo.NewFileJournalRepository(rt.fs, cfg.JournalRoot, cfg.DirPrefix, cfg.FileName)
	rt.svc = service.NewJournalService(repo, provider, rt.logger,
		service.WithClock(rt.now),
		service.WithDefaults(cfg.DefaultTest, cfg.DefaultPackage),
	)
	rt.logger.Debug("configuration loaded",
		zap.String("source", cfg.ConfigSource),
		zap.String("root", cfg.JournalRoot),
	)
	return nil
}

// noJournalAnnotation marks commands that run without configuration
const noJournalAnnotation = "rljournal/no-journal"

func withoutJournal(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[noJournalAnnotation] = "true"
	return cmd
}

// NewRoot builds the rljournal command tree
func NewRoot(opts ...Option) *cobra.Command {
	return newRoot(newRuntime(opts...))
}

func newRoot(rt *runtime) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "rljournal",
		Short:         "Journal for shell driven test runs",
		Long:          "Records phases, assertions, messages and metrics of a test run and renders them as a report.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[noJournalAnnotation] == "true" {
				return nil
			}
			return rt.setup(configPath)
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.SetOut(rt.stdout)
	cmd.SetErr(rt.stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Msg: err.Error()}
	})
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML settings file (default $"+infraConfig.EnvConfigPath+")")

	cmd.AddCommand(newInitCmd(rt))
	cmd.AddCommand(newDumpCmd(rt))
	cmd.AddCommand(newPrintLogCmd(rt))
	cmd.AddCommand(newAddPhaseCmd(rt))
	cmd.AddCommand(newLogCmd(rt))
	cmd.AddCommand(newTestCmd(rt))
	cmd.AddCommand(newMetricCmd(rt))
	cmd.AddCommand(newFinPhaseCmd(rt))
	cmd.AddCommand(newTestStateCmd(rt))
	cmd.AddCommand(newPhaseStateCmd(rt))
	cmd.AddCommand(withoutJournal(newNewIDCmd(rt)))
	cmd.AddCommand(withoutJournal(version.NewCommand()))
	return cmd
}

// Execute runs the command line and returns the process exit status
func Execute() int {
	return Run(context.Background(), os.Args[1:])
}

// Run executes args against a fresh command tree
func Run(ctx context.Context, args []string, opts ...Option) int {
	rt := newRuntime(opts...)
	root := newRoot(rt)
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(ctx)
	_ = rt.logger.Sync()
	return exitStatus(cmd, err)
}

// exitStatus prints the diagnostic for err and maps it to an exit code
func exitStatus(cmd *cobra.Command, err error) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", exitErr.Err)
		}
		return exitErr.Code
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	}
	return 1
}
