// Package journal is the typed model of a test-run journal: the document root,
// its phases and the messages, assertions and metrics recorded in them.
package journal

import (
	"encoding/xml"
	"time"
)

// TimeLayout is the timestamp layout used for every time stored in the journal
const TimeLayout = "2006-01-02 15:04:05 MST"

// Phase and test results
const (
	ResultUnfinished = "unfinished"
	ResultPass       = "PASS"
	ResultFail       = "FAIL"
)

// FormatTime renders t in the journal timestamp layout
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ParseTime parses a journal timestamp in the local zone
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.Local)
}

// Journal is the persisted record of one test run
type Journal struct {
	XMLName    xml.Name `xml:"BEAKER_TEST"`
	TestID     string   `xml:"test_id"`
	Package    string   `xml:"package"`
	PkgDetails []string `xml:"pkgdetails"`
	StartTime  string   `xml:"starttime"`
	EndTime    string   `xml:"endtime"`
	TestName   string   `xml:"testname"`
	Release    string   `xml:"release"`
	Hostname   string   `xml:"hostname"`
	Arch       string   `xml:"arch"`
	HWCPU      string   `xml:"hw_cpu"`
	HWRAM      string   `xml:"hw_ram"`
	HWHDD      string   `xml:"hw_hdd"`
	Plugins    []string `xml:"plugin"`
	Purpose    string   `xml:"purpose"`
	Log        Entries  `xml:"log"`

	// current is the last unfinished phase, valid while resolved is set.
	current  *Phase
	resolved bool
}

// New creates an empty journal for a run started at now
func New(id, testName, pkg string, now time.Time) *Journal {
	ts := FormatTime(now)
	return &Journal{
		TestID:    id,
		Package:   pkg,
		TestName:  testName,
		StartTime: ts,
		EndTime:   ts,
		Log:       Entries{},
	}
}

// Entry is one record of the ordered log: *Phase, *Message, *Test or *Metric
type Entry interface {
	elementName() string
}

// Entries is an ordered sequence of journal entries
type Entries []Entry

// Phase is a named, timed section of a test run. Its result, end time and
// score only change when the phase is closed.
type Phase struct {
	Name      string
	Type      string
	StartTime string
	Entries   Entries

	result  string
	endTime string
	score   *int
}

func (*Phase) elementName() string { return "phase" }

// IsOpen reports whether the phase has not been closed yet
func (p *Phase) IsOpen() bool {
	return p.result == ResultUnfinished
}

// Result is "unfinished" while open, then PASS or the phase type
func (p *Phase) Result() string {
	return p.result
}

// EndTime is empty while the phase is open
func (p *Phase) EndTime() string {
	return p.endTime
}

// Score returns the failed assertion count fixed at close time.
// ok is false for a phase that was never closed.
func (p *Phase) Score() (score int, ok bool) {
	if p.score == nil {
		return 0, false
	}
	return *p.score, true
}

// Tally counts passed and failed assertions recorded in the phase
func (p *Phase) Tally() (passed, failed int) {
	return p.Entries.tally()
}

// Message is a free-text log line with a severity
type Message struct {
	Severity Severity `xml:"severity,attr"`
	Text     string   `xml:",chardata"`
}

func (*Message) elementName() string { return "message" }

// Test is a single PASS/FAIL assertion
type Test struct {
	Label  string `xml:"message,attr"`
	Result string `xml:",chardata"`
}

func (*Test) elementName() string { return "test" }

// Failed reports whether the assertion failed. Only FAIL counts as a failure.
func (t *Test) Failed() bool {
	return t.Result == ResultFail
}

// Metric is a named numeric measurement with a tolerance
type Metric struct {
	Type      string
	Name      string
	Value     float64
	Tolerance float64
}

func (*Metric) elementName() string { return "metric" }

// Phases returns the phases of the log in document order
func (j *Journal) Phases() []*Phase {
	var phases []*Phase
	for _, e := range j.Log {
		if p, ok := e.(*Phase); ok {
			phases = append(phases, p)
		}
	}
	return phases
}

func (es Entries) tally() (passed, failed int) {
	for _, e := range es {
		t, ok := e.(*Test)
		if !ok {
			continue
		}
		if t.Failed() {
			failed++
		} else {
			passed++
		}
	}
	return passed, failed
}

func (es Entries) metric(name string) *Metric {
	for _, e := range es {
		if m, ok := e.(*Metric); ok && m.Name == name {
			return m
		}
	}
	return nil
}

// hasMetric searches es and the children of any phase in es
func (es Entries) hasMetric(name string) bool {
	if es.metric(name) != nil {
		return true
	}
	for _, e := range es {
		if p, ok := e.(*Phase); ok && p.Entries.metric(name) != nil {
			return true
		}
	}
	return false
}
