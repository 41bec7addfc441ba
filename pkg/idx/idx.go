// Package idx generates lexicographically sortable ULID identifiers for
// persisted records (users, workspaces). Token IDs (jti) are UUIDs and
// live in pkg/jwtx instead.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

var (
	once    sync.Once
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
)

func initEntropy() {
	entropy = ulid.Monotonic(rand.Reader, 0)
}

// New returns a new ULID string using the current time in UTC and a
// monotonic entropy source, so IDs generated in the same millisecond
// still sort in creation order.
func New() string {
	once.Do(initEntropy)

	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}

// Parse validates a ULID string and returns its canonical form.
func Parse(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return "", ErrInvalid
	}
	return s, nil
}
