package presenter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/YoshitsuguKoike/rljournal/internal/domain/model/journal"
)

// UnknownDuration is printed when phase timestamps cannot be parsed
const UnknownDuration = "duration unknown (error when computing)"

// ReportOptions selects what the report shows
type ReportOptions struct {
	Threshold journal.Severity // lowest message severity shown
	Full      bool             // include hardware facts
}

// ReportSummary is the aggregate result of a rendered report
type ReportSummary struct {
	PhasesPassed int
	PhasesFailed int
}

// Passed reports whether no phase failed
func (s ReportSummary) Passed() bool {
	return s.PhasesFailed == 0
}

// ReportPresenter renders a journal as a human-readable test protocol.
// It never modifies the journal.
type ReportPresenter struct {
	console    *Console
	severities *journal.SeverityTable
	now        func() time.Time
}

// NewReportPresenterWithConsole creates a report presenter on an existing console
func NewReportPresenterWithConsole(c *Console, severities *journal.SeverityTable, now func() time.Time) *ReportPresenter {
	if severities == nil {
		severities = journal.DefaultSeverities()
	}
	if now == nil {
		now = time.Now
	}
	return &ReportPresenter{console: c, severities: severities, now: now}
}

// Render prints the whole report and returns the phase tally
func (p *ReportPresenter) Render(j *journal.Journal, opts ReportOptions) (ReportSummary, error) {
	if _, err := p.severities.Allowed(opts.Threshold); err != nil {
		return ReportSummary{}, err
	}

	c := p.console
	c.HeadLog("TEST PROTOCOL")
	p.renderHeader(j, opts)

	var summary ReportSummary
	for _, entry := range j.Log {
		switch e := entry.(type) {
		case *journal.Phase:
			if p.renderPhase(e, opts.Threshold) > 0 {
				summary.PhasesFailed++
			} else {
				summary.PhasesPassed++
			}
		case *journal.Message:
			if p.severities.Passes(e.Severity, opts.Threshold) {
				c.Log("TEST BUG: Message not in phase", "WARNING")
				c.Log(e.Text, e.Severity.String())
			}
		case *journal.Test:
			c.Log("TEST BUG: Assertion not in phase", "WARNING")
			p.renderTest(e)
		case *journal.Metric:
			c.Log("TEST BUG: Metric not in phase", "WARNING")
			p.renderMetric(e)
		}
	}

	c.HeadLog(j.TestName)
	c.Log(fmt.Sprintf("Phases: %d good, %d bad", summary.PhasesPassed, summary.PhasesFailed), "LOG")
	result := journal.ResultPass
	if !summary.Passed() {
		result = journal.ResultFail
	}
	c.Log("RESULT: "+j.TestName, result)

	return summary, nil
}

func (p *ReportPresenter) renderHeader(j *journal.Journal, opts ReportOptions) {
	c := p.console
	c.Log("Test run ID   : "+j.TestID, "LOG")
	c.Log("Package       : "+j.Package, "LOG")
	for _, pkg := range j.PkgDetails {
		c.Log("Installed     : "+pkg, "LOG")
	}
	c.Log("Test started  : "+j.StartTime, "LOG")
	c.Log("Test finished : "+j.EndTime, "LOG")
	c.Log("Test name     : "+j.TestName, "LOG")
	c.Log("Distro        : "+j.Release, "LOG")
	c.Log("Hostname      : "+j.Hostname, "LOG")
	c.Log("Architecture  : "+j.Arch, "LOG")
	if opts.Full {
		c.Log("CPUs          : "+j.HWCPU, "LOG")
		c.Log("RAM size      : "+j.HWRAM, "LOG")
		c.Log("HDD size      : "+j.HWHDD, "LOG")
	}
	for _, plugin := range j.Plugins {
		c.Log("Plugin        : "+plugin, "LOG")
	}
	c.Purpose(j.Purpose)
}

// renderPhase prints one phase and returns its failed assertion count
func (p *ReportPresenter) renderPhase(ph *journal.Phase, threshold journal.Severity) int {
	c := p.console
	c.HeadLog(ph.Name)

	passed, failed := 0, 0
	for _, entry := range ph.Entries {
		switch e := entry.(type) {
		case *journal.Message:
			if p.severities.Passes(e.Severity, threshold) {
				c.Log(e.Text, e.Severity.String())
			}
		case *journal.Test:
			if p.renderTest(e) {
				failed++
			} else {
				passed++
			}
		case *journal.Metric:
			p.renderMetric(e)
		}
	}

	c.Log("Duration: "+p.duration(ph.StartTime, ph.EndTime()), "LOG")
	c.Log(fmt.Sprintf("Assertions: %d good, %d bad", passed, failed), "LOG")
	c.Log("RESULT: "+ph.Name, ph.Result())
	return failed
}

// renderTest prints an assertion and reports whether it failed
func (p *ReportPresenter) renderTest(t *journal.Test) bool {
	if t.Failed() {
		p.console.Log(t.Label, journal.ResultFail)
		return true
	}
	p.console.Log(t.Label, journal.ResultPass)
	return false
}

func (p *ReportPresenter) renderMetric(m *journal.Metric) {
	p.console.Log(m.Name+": "+strconv.FormatFloat(m.Value, 'g', -1, 64), "METRIC")
}

// duration formats end-start; an empty end means the phase is still open
// and is measured up to now
func (p *ReportPresenter) duration(startTime, endTime string) string {
	start, err := journal.ParseTime(startTime)
	if err != nil {
		return UnknownDuration
	}
	end := p.now()
	if endTime != "" {
		if end, err = journal.ParseTime(endTime); err != nil {
			return UnknownDuration
		}
	}
	d := end.Sub(start)
	if d < 0 {
		return UnknownDuration
	}
	return FormatDuration(d)
}

// FormatDuration renders d as "1h 2m 3s", omitting zero leading units
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	out := ""
	if h := secs / 3600; h > 0 {
		out = fmt.Sprintf("%dh ", h)
		secs %= 3600
	}
	if m := secs / 60; m > 0 {
		out += fmt.Sprintf("%dm ", m)
		secs %= 60
	}
	return out + fmt.Sprintf("%ds", secs)
}
