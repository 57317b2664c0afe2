package journal

import (
	"fmt"
	"time"
)

// PhaseOutcome is what closing a phase reports back to the caller
type PhaseOutcome struct {
	Result string
	Score  int
	Type   string
	Name   string
}

// String renders the outcome as type:result:name
func (o PhaseOutcome) String() string {
	return fmt.Sprintf("%s:%s:%s", o.Type, o.Result, o.Name)
}

// OpenPhase appends a new unfinished phase to the log and makes it current.
// Phases that are still open stay open.
func (j *Journal) OpenPhase(name, phaseType string, now time.Time) *Phase {
	p := &Phase{
		Name:      Sanitize(name),
		Type:      Sanitize(phaseType),
		result:    ResultUnfinished,
		StartTime: FormatTime(now),
		Entries:   Entries{},
	}
	j.Log = append(j.Log, p)
	j.current = p
	j.resolved = true
	return p
}

// CurrentPhase returns the most recently appended unfinished phase,
// or nil when entries go to the top-level log.
func (j *Journal) CurrentPhase() *Phase {
	if !j.resolved {
		j.current = j.lastUnfinished()
		j.resolved = true
	}
	return j.current
}

func (j *Journal) lastUnfinished() *Phase {
	for i := len(j.Log) - 1; i >= 0; i-- {
		if p, ok := j.Log[i].(*Phase); ok && p.IsOpen() {
			return p
		}
	}
	return nil
}

// ClosePhase closes the current phase. The score is the number of failed
// assertions; the result is PASS for a zero score and the phase type otherwise.
// The journal end time is stamped as well.
func (j *Journal) ClosePhase(now time.Time) (PhaseOutcome, error) {
	p := j.CurrentPhase()
	if p == nil {
		return PhaseOutcome{}, ErrNoOpenPhase
	}

	ts := FormatTime(now)
	_, failed := p.Tally()
	p.endTime = ts
	p.score = &failed
	if failed == 0 {
		p.result = ResultPass
	} else {
		p.result = p.Type
	}
	j.EndTime = ts

	// an earlier overlapping phase may become current again
	j.resolved = false

	return PhaseOutcome{Result: p.result, Score: failed, Type: p.Type, Name: p.Name}, nil
}
