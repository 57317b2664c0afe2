package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/YoshitsuguKoike/rljournal/internal/application/service"
	"github.com/YoshitsuguKoike/rljournal/internal/domain/model/journal"
	journalrepo "github.com/YoshitsuguKoike/rljournal/internal/infra/repository/journal"
	"github.com/YoshitsuguKoike/rljournal/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	fs    afero.Fs
	repo  *journalrepo.FileJournalRepository
	env   *testutil.Environment
	svc   *service.JournalService
	clock *testutil.Clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		fs:    afero.NewMemMapFs(),
		env:   &testutil.Environment{Purpose: "Purpose\x00 text"},
		clock: testutil.NewClock(time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)),
	}
	f.repo = journalrepo.NewFileJournalRepository(f.fs, "/tmp", "", "")
	f.svc = service.NewJournalService(f.repo, f.env, zaptest.NewLogger(t),
		service.WithClock(f.clock.Now),
		service.WithDefaults("default test", "default package"),
	)
	return f
}

func (f *fixture) raw(t *testing.T, id string) []byte {
	t.Helper()
	data, err := afero.ReadFile(f.fs, "/tmp/beakerlib-"+id+"/journal.xml")
	require.NoError(t, err)
	return data
}

func TestJournalService_InitIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Init(ctx, "42", "mytest", "bash")
	require.NoError(t, err)
	assert.True(t, created)
	first := f.raw(t, "42")

	created, err = f.svc.Init(ctx, "42", "othertest", "zsh")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, f.raw(t, "42"), "second init must not touch the document")
	assert.Equal(t, 1, f.env.Calls)

	j, err := f.svc.Load(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "mytest", j.TestName)
	assert.Equal(t, "bash", j.Package)
	assert.Equal(t, []string{"bash-1.0-1.x86_64"}, j.PkgDetails)
	assert.Equal(t, "Purpose text", j.Purpose)
	assert.Equal(t, "builder.example.com", j.Hostname)
	assert.Equal(t, j.StartTime, j.EndTime)
}

func TestJournalService_LoadAutoInitializes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.AddMessage(ctx, "7", "hello", journal.SeverityInfo))

	j, err := f.svc.Load(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "default test", j.TestName)
	assert.Equal(t, "default package", j.Package)
	require.Len(t, j.Log, 1)
	assert.Equal(t, &journal.Message{Severity: journal.SeverityInfo, Text: "hello"}, j.Log[0])
}

func TestJournalService_LoadReplacesCorruptJournal(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, afero.WriteFile(f.fs, "/tmp/beakerlib-9/journal.xml", []byte("<BEAKER_TEST><log>"), 0o644))

	j, err := f.svc.Load(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "default test", j.TestName)
}

func TestJournalService_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Init(ctx, "42", "mytest", "bash")
	require.NoError(t, err)

	require.NoError(t, f.svc.AddPhase(ctx, "42", "Setup", "FAIL"))
	require.NoError(t, f.svc.AddTest(ctx, "42", "check config", journal.ResultPass))
	out, err := f.svc.FinishPhase(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "FAIL:PASS:Setup", out.String())
	assert.Equal(t, 0, out.Score)

	require.NoError(t, f.svc.AddPhase(ctx, "42", "Run", "FAIL"))
	require.NoError(t, f.svc.AddTest(ctx, "42", "run script", journal.ResultFail))

	state, err := f.svc.PhaseState(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 1, state)

	out, err = f.svc.FinishPhase(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "FAIL:FAIL:Run", out.String())
	assert.Equal(t, 1, out.Score)

	state, err = f.svc.TestState(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 1, state)

	j, err := f.svc.Load(ctx, "42")
	require.NoError(t, err)
	phases := j.Phases()
	require.Len(t, phases, 2)
	assert.Equal(t, phases[1].EndTime(), j.EndTime, "closing a phase stamps the journal end time")
}

func TestJournalService_DuplicateMetricLeavesDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.AddPhase(ctx, "m", "Bench", "FAIL"))
	require.NoError(t, f.svc.AddMetric(ctx, "m", "low", "rate", 10, 0.5))
	before := f.raw(t, "m")

	err := f.svc.AddMetric(ctx, "m", "high", "rate", 20, 0.1)
	assert.True(t, errors.Is(err, journal.ErrDuplicateMetricName), "got %v", err)
	assert.Equal(t, before, f.raw(t, "m"))
}

func TestJournalService_TestStateSaturates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	j := journal.New("big", "t", "p", time.Now())
	j.OpenPhase("Many", "FAIL", time.Now())
	for i := 0; i < 300; i++ {
		j.AddTest("x", journal.ResultFail)
	}
	require.NoError(t, f.repo.Save(ctx, "big", j))

	state, err := f.svc.TestState(ctx, "big")
	require.NoError(t, err)
	assert.Equal(t, 255, state)

	state, err = f.svc.PhaseState(ctx, "big")
	require.NoError(t, err)
	assert.Equal(t, 255, state)

	assert.Equal(t, 0, service.CapExitCode(0))
	assert.Equal(t, 255, service.CapExitCode(256))
}

func TestJournalService_FinishWithoutPhase(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.FinishPhase(context.Background(), "1")
	assert.True(t, errors.Is(err, journal.ErrNoOpenPhase), "got %v", err)
}

func TestJournalService_Dump(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.AddPhase(ctx, "d", "Setup", "FAIL"))
	require.NoError(t, f.svc.AddTest(ctx, "d", "check", journal.ResultPass))
	require.NoError(t, f.svc.AddMetric(ctx, "d", "low", "speed", 1.25, 0.5))

	stored, err := f.svc.Load(ctx, "d")
	require.NoError(t, err)

	opts := []cmp.Option{
		cmpopts.IgnoreUnexported(journal.Journal{}),
		cmp.AllowUnexported(journal.Phase{}),
		cmpopts.IgnoreFields(journal.Journal{}, "XMLName"),
		cmpopts.EquateEmpty(),
	}
	for _, format := range []string{service.DumpRaw, service.DumpPretty} {
		var buf bytes.Buffer
		require.NoError(t, f.svc.Dump(ctx, "d", format, &buf))

		reloaded, err := journal.Unmarshal(buf.Bytes())
		require.NoError(t, err)
		if diff := cmp.Diff(stored, reloaded, opts...); diff != "" {
			t.Errorf("dump %s mismatch (-stored +reloaded):\n%s", format, diff)
		}
	}

	var buf bytes.Buffer
	err = f.svc.Dump(ctx, "d", "xml", &buf)
	assert.True(t, errors.Is(err, journal.ErrUnknownDumpFormat), "got %v", err)
	assert.Zero(t, buf.Len())
}

func TestJournalService_PersistFailure(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	repo := journalrepo.NewFileJournalRepository(fs, "/tmp", "", "")
	svc := service.NewJournalService(repo, &testutil.Environment{}, nil)

	_, err := svc.Init(context.Background(), "1", "t", "p")
	assert.True(t, errors.Is(err, journal.ErrPersistFailure), "got %v", err)

	err = svc.AddTest(context.Background(), "1", "x", journal.ResultPass)
	assert.True(t, errors.Is(err, journal.ErrPersistFailure), "got %v", err)
}
