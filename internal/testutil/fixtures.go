// Package testutil holds test doubles shared by the service and CLI tests
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/YoshitsuguKoike/rljournal/internal/application/port/output"
)

// Clock advances by Step (one second when zero) on every call to Now
type Clock struct {
	mu   sync.Mutex
	T    time.Time
	Step time.Duration
}

// NewClock returns a clock starting at start
func NewClock(start time.Time) *Clock {
	return &Clock{T: start}
}

// Now advances the clock and returns the new time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	step := c.Step
	if step == 0 {
		step = time.Second
	}
	c.T = c.T.Add(step)
	return c.T
}

// Environment is a fixed host snapshot. Calls counts Snapshot invocations.
type Environment struct {
	Calls   int
	Purpose string
}

// Snapshot reports fixed facts with the requested package installed
func (e *Environment) Snapshot(_ context.Context, pkg string) output.EnvironmentSnapshot {
	e.Calls++
	purpose := e.Purpose
	if purpose == "" {
		purpose = "exercise the journal"
	}
	return output.EnvironmentSnapshot{
		Hostname: "builder.example.com",
		Arch:     "x86_64",
		Release:  "Fedora release 38",
		CPU:      "2 x Xeon",
		RAM:      "7821 MB",
		Disk:     "50.0 GB",
		Packages: []string{pkg + "-1.0-1.x86_64"},
		Purpose:  purpose,
	}
}

var _ output.EnvironmentProvider = (*Environment)(nil)
