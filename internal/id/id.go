// Package id issues ULID run IDs.
package id

import (
	cryptorand "crypto/rand"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy io.Reader = newEntropy()
)

// newEntropy seeds a ChaCha8 stream from the OS so run IDs from separate
// processes do not collide.
func newEntropy() io.Reader {
	var seed [32]byte
	_, _ = cryptorand.Read(seed[:])
	return ulid.Monotonic(rand.NewChaCha8(seed), 0)
}

// New returns a ULID for tagging a pricing or simulation run in logs and
// responses. IDs from the same millisecond still sort in creation order.
func New() string {
	return At(time.Now())
}

// At returns a ULID stamped with t.
func At(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(t.UTC()), entropy).String()
}
