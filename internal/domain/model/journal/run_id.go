package journal

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewRunID generates a sortable ULID suitable as a journal run id.
// A nil entropy source uses crypto/rand.
func NewRunID(now time.Time, entropy io.Reader) string {
	if entropy == nil {
		entropy = ulid.Monotonic(rand.Reader, 0)
	}
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}
