package journal

import "fmt"

// Severity is the priority level of a journal message
type Severity string

const (
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityLog     Severity = "LOG" // always shown
)

// String returns the string representation
func (s Severity) String() string {
	return string(s)
}

// SeverityTable maps severities to their priority. It is immutable once built
// and is shared by reference between renderers.
type SeverityTable struct {
	order    []Severity
	priority map[Severity]int
}

var defaultSeverities = NewSeverityTable(
	SeverityDebug, SeverityInfo, SeverityWarning, SeverityError, SeverityFatal, SeverityLog,
)

// DefaultSeverities returns the standard table DEBUG<INFO<WARNING<ERROR<FATAL<LOG
func DefaultSeverities() *SeverityTable {
	return defaultSeverities
}

// NewSeverityTable builds a table from severities in increasing priority
func NewSeverityTable(ordered ...Severity) *SeverityTable {
	t := &SeverityTable{
		order:    make([]Severity, len(ordered)),
		priority: make(map[Severity]int, len(ordered)),
	}
	copy(t.order, ordered)
	for i, s := range ordered {
		t.priority[s] = i
	}
	return t
}

// Priority returns the priority of s and whether s is known
func (t *SeverityTable) Priority(s Severity) (int, bool) {
	p, ok := t.priority[s]
	return p, ok
}

// Allowed returns the severities whose priority is at least the threshold's,
// in increasing priority order.
func (t *SeverityTable) Allowed(threshold Severity) ([]Severity, error) {
	floor, ok := t.priority[threshold]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSeverity, threshold)
	}
	allowed := make([]Severity, 0, len(t.order))
	for _, s := range t.order {
		if t.priority[s] >= floor {
			allowed = append(allowed, s)
		}
	}
	return allowed, nil
}

// Passes reports whether a message of severity s is shown at threshold.
// Unknown severities never pass.
func (t *SeverityTable) Passes(s, threshold Severity) bool {
	p, ok := t.priority[s]
	if !ok {
		return false
	}
	floor, ok := t.priority[threshold]
	if !ok {
		return false
	}
	return p >= floor
}
