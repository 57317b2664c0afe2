package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/YoshitsuguKoike/rljournal/internal/application/port/output"
	"github.com/YoshitsuguKoike/rljournal/internal/domain/model/journal"
	"github.com/YoshitsuguKoike/rljournal/internal/domain/repository"
	"go.uber.org/zap"
)

// MaxExitScore caps failure counts reported as process exit codes
const MaxExitScore = 255

// Dump formats
const (
	DumpRaw    = "raw"
	DumpPretty = "pretty"
)

// JournalService runs every journal command as one load -> mutate -> save cycle
type JournalService struct {
	repo           repository.JournalRepository
	env            output.EnvironmentProvider
	logger         *zap.Logger
	now            func() time.Time
	defaultTest    string
	defaultPackage string
}

// Option configures a JournalService
type Option func(*JournalService)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *JournalService) { s.now = now }
}

// WithDefaults sets the test and package names used when a missing journal
// is created implicitly
func WithDefaults(test, pkg string) Option {
	return func(s *JournalService) {
		s.defaultTest = test
		s.defaultPackage = pkg
	}
}

// NewJournalService creates a new journal service
func NewJournalService(repo repository.JournalRepository, env output.EnvironmentProvider, logger *zap.Logger, opts ...Option) *JournalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &JournalService{
		repo:           repo,
		env:            env,
		logger:         logger,
		now:            time.Now,
		defaultTest:    "some test",
		defaultPackage: "some package",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the journal for id unless a readable one already exists;
// an unreadable document is replaced. It reports whether a new document
// was written.
func (s *JournalService) Init(ctx context.Context, id, testName, pkg string) (bool, error) {
	if _, err := s.repo.Load(ctx, id); err == nil {
		s.logger.Debug("journal already initialized", zap.String("id", id))
		return false, nil
	} else if errors.Is(err, journal.ErrInvalidRunID) {
		return false, err
	}

	j := s.newJournal(ctx, id, testName, pkg)
	if err := s.repo.Save(ctx, id, j); err != nil {
		return false, err
	}
	s.logger.Debug("journal initialized", zap.String("id", id), zap.String("test", testName))
	return true, nil
}

func (s *JournalService) newJournal(ctx context.Context, id, testName, pkg string) *journal.Journal {
	j := journal.New(id, journal.Sanitize(testName), journal.Sanitize(pkg), s.now())
	snap := s.env.Snapshot(ctx, pkg)
	j.PkgDetails = snap.Packages
	j.Release = snap.Release
	j.Hostname = snap.Hostname
	j.Arch = snap.Arch
	j.HWCPU = snap.CPU
	j.HWRAM = snap.RAM
	j.HWHDD = snap.Disk
	j.Plugins = snap.Plugins
	j.Purpose = journal.Sanitize(snap.Purpose)
	return j
}

// Load returns the journal for id. A missing or corrupt journal is
// initialized with the default names and read again once.
func (s *JournalService) Load(ctx context.Context, id string) (*journal.Journal, error) {
	j, err := s.repo.Load(ctx, id)
	if err == nil {
		return j, nil
	}
	if errors.Is(err, journal.ErrInvalidRunID) {
		return nil, err
	}

	s.logger.Warn("Journal not initialised? Trying it now.", zap.String("id", id), zap.Error(err))
	if _, err := s.Init(ctx, id, s.defaultTest, s.defaultPackage); err != nil {
		return nil, err
	}

	j, err = s.repo.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", journal.ErrJournalUnreadable, err)
	}
	return j, nil
}

// mutate loads the journal, applies fn and saves the whole document.
// Nothing is saved when fn fails.
func (s *JournalService) mutate(ctx context.Context, id string, fn func(j *journal.Journal) error) error {
	j, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(j); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, id, j); err != nil {
		return err
	}
	s.logger.Debug("journal saved", zap.String("id", id))
	return nil
}

// AddPhase opens a new phase
func (s *JournalService) AddPhase(ctx context.Context, id, name, phaseType string) error {
	return s.mutate(ctx, id, func(j *journal.Journal) error {
		j.OpenPhase(name, phaseType, s.now())
		return nil
	})
}

// FinishPhase closes the current phase and returns its outcome
func (s *JournalService) FinishPhase(ctx context.Context, id string) (journal.PhaseOutcome, error) {
	var out journal.PhaseOutcome
	err := s.mutate(ctx, id, func(j *journal.Journal) error {
		var err error
		out, err = j.ClosePhase(s.now())
		return err
	})
	return out, err
}

// AddMessage appends a log message
func (s *JournalService) AddMessage(ctx context.Context, id, text string, severity journal.Severity) error {
	return s.mutate(ctx, id, func(j *journal.Journal) error {
		j.AddMessage(text, severity)
		return nil
	})
}

// AddTest appends an assertion
func (s *JournalService) AddTest(ctx context.Context, id, label, result string) error {
	return s.mutate(ctx, id, func(j *journal.Journal) error {
		j.AddTest(label, result)
		return nil
	})
}

// AddMetric appends a metric; a duplicate name leaves the stored journal untouched
func (s *JournalService) AddMetric(ctx context.Context, id, metricType, name string, value, tolerance float64) error {
	return s.mutate(ctx, id, func(j *journal.Journal) error {
		_, err := j.AddMetric(metricType, name, value, tolerance)
		return err
	})
}

// TestState returns the failed assertions of all phases, capped at MaxExitScore
func (s *JournalService) TestState(ctx context.Context, id string) (int, error) {
	j, err := s.Load(ctx, id)
	if err != nil {
		return 0, err
	}
	return CapExitCode(j.FailedTests()), nil
}

// PhaseState returns the failed assertions of the current phase, capped at MaxExitScore
func (s *JournalService) PhaseState(ctx context.Context, id string) (int, error) {
	j, err := s.Load(ctx, id)
	if err != nil {
		return 0, err
	}
	return CapExitCode(j.CurrentFailedTests()), nil
}

// Dump writes the serialized journal in raw or pretty form
func (s *JournalService) Dump(ctx context.Context, id, format string, w io.Writer) error {
	var pretty bool
	switch format {
	case DumpRaw:
	case DumpPretty:
		pretty = true
	default:
		return fmt.Errorf("%w: %q", journal.ErrUnknownDumpFormat, format)
	}

	j, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	data, err := journal.Marshal(j, pretty)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// CapExitCode saturates a failure count to a valid exit status
func CapExitCode(n int) int {
	if n > MaxExitScore {
		return MaxExitScore
	}
	return n
}
