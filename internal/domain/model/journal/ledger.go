package journal

import "fmt"

// target is where new entries go: the current phase or the top-level log
func (j *Journal) target() *Entries {
	if p := j.CurrentPhase(); p != nil {
		return &p.Entries
	}
	return &j.Log
}

// AddMessage appends a message to the current phase
func (j *Journal) AddMessage(text string, severity Severity) *Message {
	m := &Message{Severity: Severity(Sanitize(string(severity))), Text: Sanitize(text)}
	t := j.target()
	*t = append(*t, m)
	return m
}

// AddTest appends an assertion to the current phase. The phase result is
// only computed when the phase is closed.
func (j *Journal) AddTest(label, result string) *Test {
	tst := &Test{Label: Sanitize(label), Result: Sanitize(result)}
	t := j.target()
	*t = append(*t, tst)
	return tst
}

// AddMetric appends a metric to the current phase. A name already used in
// the same phase is rejected and the journal is left untouched. Without an
// open phase the name must be unique across the whole log, phases included.
func (j *Journal) AddMetric(metricType, name string, value, tolerance float64) (*Metric, error) {
	t := j.target()
	name = Sanitize(name)
	if t.hasMetric(name) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateMetricName, name)
	}
	m := &Metric{Type: Sanitize(metricType), Name: name, Value: value, Tolerance: tolerance}
	*t = append(*t, m)
	return m, nil
}

// FailedTests counts failed assertions across all phases
func (j *Journal) FailedTests() int {
	total := 0
	for _, p := range j.Phases() {
		_, failed := p.Tally()
		total += failed
	}
	return total
}

// CurrentFailedTests counts failed assertions in the current phase, or among
// the top-level assertions when no phase is open.
func (j *Journal) CurrentFailedTests() int {
	if p := j.CurrentPhase(); p != nil {
		_, failed := p.Tally()
		return failed
	}
	_, failed := j.Log.tally()
	return failed
}
