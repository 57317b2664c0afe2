package journal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/YoshitsuguKoike/rljournal/internal/domain/model/journal"
	"github.com/YoshitsuguKoike/rljournal/internal/infra/persistence/file"
	"github.com/spf13/afero"
)

// Defaults for the document location: <root>/<prefix><id>/<file>
const (
	DefaultDirPrefix = "beakerlib-"
	DefaultFileName  = "journal.xml"
)

// FileJournalRepository is a file-based implementation of the journal repository
type FileJournalRepository struct {
	FS        afero.Fs
	Root      string
	DirPrefix string
	FileName  string
}

// NewFileJournalRepository creates a new file-based journal repository.
// Empty root, prefix or file name fall back to the OS temp dir and defaults.
func NewFileJournalRepository(fs afero.Fs, root, dirPrefix, fileName string) *FileJournalRepository {
	if root == "" {
		root = os.TempDir()
	}
	if dirPrefix == "" {
		dirPrefix = DefaultDirPrefix
	}
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &FileJournalRepository{FS: fs, Root: root, DirPrefix: dirPrefix, FileName: fileName}
}

// Path returns <root>/<prefix><id>/<file>
func (r *FileJournalRepository) Path(id string) (string, error) {
	if err := validateRunID(id); err != nil {
		return "", err
	}
	return filepath.Join(r.Root, r.DirPrefix+id, r.FileName), nil
}

// Load reads and parses the journal for id
func (r *FileJournalRepository) Load(ctx context.Context, id string) (*journal.Journal, error) {
	path, err := r.Path(id)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(r.FS, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", journal.ErrJournalNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", journal.ErrJournalUnreadable, path, err)
	}

	j, err := journal.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", journal.ErrJournalUnreadable, path, err)
	}
	return j, nil
}

// Save writes the whole journal for id, replacing the previous document
func (r *FileJournalRepository) Save(ctx context.Context, id string, j *journal.Journal) error {
	path, err := r.Path(id)
	if err != nil {
		return err
	}

	data, err := journal.Marshal(j, false)
	if err != nil {
		return fmt.Errorf("%w to %s: %w", journal.ErrPersistFailure, path, err)
	}
	if err := file.WriteFileAtomic(r.FS, path, data, 0o644); err != nil {
		return fmt.Errorf("%w to %s: %w", journal.ErrPersistFailure, path, err)
	}
	return nil
}

// validateRunID rejects ids that would escape the per-id directory
func validateRunID(id string) error {
	switch {
	case id == "", id == ".", id == "..":
		return fmt.Errorf("%w: %q", journal.ErrInvalidRunID, id)
	case strings.ContainsAny(id, `/\`+"\x00"):
		return fmt.Errorf("%w: %q", journal.ErrInvalidRunID, id)
	}
	return nil
}
