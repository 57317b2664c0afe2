package journal

import (
	"bytes"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunID(t *testing.T) {
	id := NewRunID(testNow, nil)

	parsed, err := ulid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(testNow), parsed.Time())
	assert.Len(t, id, 26)
}

func TestNewRunID_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a := NewRunID(testNow, bytes.NewReader(seed))
	b := NewRunID(testNow, bytes.NewReader(seed))
	assert.Equal(t, a, b)
}

func TestNewRunID_IsValidDirectoryName(t *testing.T) {
	id := NewRunID(testNow, nil)
	assert.NotContains(t, id, "/")
	assert.NotContains(t, id, ".")
}
