package journal

import "fmt"

// JournalError represents domain-specific errors for the journal
type JournalError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e JournalError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Common journal errors
var (
	// ErrJournalNotFound indicates no document exists for the run id
	ErrJournalNotFound = JournalError{
		Code:    "JOURNAL_NOT_FOUND",
		Message: "Journal not found",
	}

	// ErrJournalUnreadable indicates the document exists but cannot be parsed,
	// or could not be read even after auto-initialization
	ErrJournalUnreadable = JournalError{
		Code:    "JOURNAL_UNREADABLE",
		Message: "Journal cannot be read",
	}

	// ErrPersistFailure indicates the document could not be written
	ErrPersistFailure = JournalError{
		Code:    "JOURNAL_PERSIST_FAILURE",
		Message: "Failed to save journal",
	}

	// ErrDuplicateMetricName indicates a metric name already used in the phase
	ErrDuplicateMetricName = JournalError{
		Code:    "METRIC_NAME_NOT_UNIQUE",
		Message: "Metric name not unique",
	}

	// ErrUnknownSeverity indicates a severity missing from the severity table
	ErrUnknownSeverity = JournalError{
		Code:    "UNKNOWN_SEVERITY",
		Message: "Unknown severity",
	}

	// ErrNoOpenPhase indicates there is no unfinished phase to close
	ErrNoOpenPhase = JournalError{
		Code:    "NO_OPEN_PHASE",
		Message: "No unfinished phase",
	}

	// ErrInvalidRunID indicates a run id that cannot be mapped to a path
	ErrInvalidRunID = JournalError{
		Code:    "INVALID_RUN_ID",
		Message: "Invalid run identifier",
	}

	// ErrUnknownDumpFormat indicates a dump format other than raw or pretty
	ErrUnknownDumpFormat = JournalError{
		Code:    "UNKNOWN_DUMP_FORMAT",
		Message: "Journal dump error: bad type specification",
	}
)
