package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_Now(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c := NewClock(start)
	assert.Equal(t, start.Add(time.Second), c.Now())
	assert.Equal(t, start.Add(2*time.Second), c.Now())

	c = &Clock{T: start, Step: time.Minute}
	assert.Equal(t, start.Add(time.Minute), c.Now())
}

func TestEnvironment_Snapshot(t *testing.T) {
	env := &Environment{}
	snap := env.Snapshot(context.Background(), "bash")

	assert.Equal(t, 1, env.Calls)
	assert.Equal(t, []string{"bash-1.0-1.x86_64"}, snap.Packages)
	assert.Equal(t, "exercise the journal", snap.Purpose)
}
