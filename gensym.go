package textpipe

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// symbols generates unique, time-ordered identifiers for pipelines and documents.
var symbols = struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}{entropy: ulid.Monotonic(rand.Reader, 0)}

// GenSym returns a new unique identifier.
func GenSym() string {
	symbols.mu.Lock()
	defer symbols.mu.Unlock()
	return ulid.MustNew(ulid.Now(), symbols.entropy).String()
}
