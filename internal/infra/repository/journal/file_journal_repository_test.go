package journal_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/YoshitsuguKoike/rljournal/internal/domain/model/journal"
	journalrepo "github.com/YoshitsuguKoike/rljournal/internal/infra/repository/journal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(fs afero.Fs) *journalrepo.FileJournalRepository {
	return journalrepo.NewFileJournalRepository(fs, "/tmp", "", "")
}

func TestFileJournalRepository_Path(t *testing.T) {
	repo := newRepo(afero.NewMemMapFs())

	path, err := repo.Path("42")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp", "beakerlib-42", "journal.xml"), path)

	for _, id := range []string{"", ".", "..", "a/b", `a\b`, "../etc"} {
		_, err := repo.Path(id)
		assert.True(t, errors.Is(err, journal.ErrInvalidRunID), "id %q: %v", id, err)
	}
}

func TestFileJournalRepository_SaveAndLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := newRepo(fs)
	ctx := context.Background()

	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
	j := journal.New("42", "mytest", "bash", now)
	j.OpenPhase("Setup", "FAIL", now)
	j.AddTest("check config", journal.ResultPass)

	require.NoError(t, repo.Save(ctx, "42", j))

	loaded, err := repo.Load(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "mytest", loaded.TestName)
	require.Len(t, loaded.Phases(), 1)
	assert.Equal(t, "Setup", loaded.CurrentPhase().Name)

	raw, err := afero.ReadFile(fs, "/tmp/beakerlib-42/journal.xml")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `<?xml version="1.0" encoding="UTF-8"?>`)
}

func TestFileJournalRepository_LoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := newRepo(fs)
	ctx := context.Background()

	_, err := repo.Load(ctx, "missing")
	assert.True(t, errors.Is(err, journal.ErrJournalNotFound), "got %v", err)

	require.NoError(t, afero.WriteFile(fs, "/tmp/beakerlib-bad/journal.xml", []byte("<BEAKER_TEST><log>"), 0o644))
	_, err = repo.Load(ctx, "bad")
	assert.True(t, errors.Is(err, journal.ErrJournalUnreadable), "got %v", err)
	assert.False(t, errors.Is(err, journal.ErrJournalNotFound))
}

func TestFileJournalRepository_SaveFailure(t *testing.T) {
	repo := newRepo(afero.NewReadOnlyFs(afero.NewMemMapFs()))

	err := repo.Save(context.Background(), "42", journal.New("42", "t", "p", time.Now()))
	assert.True(t, errors.Is(err, journal.ErrPersistFailure), "got %v", err)
}
