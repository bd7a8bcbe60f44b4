package notebook

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDPrefix is prepended to generated entry ids.
const IDPrefix = "tab-"

// IDGenerator produces ULID-based entry ids. Ids generated within the same
// millisecond are strictly increasing, so two adds in one clock tick never
// collide.
type IDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewIDGenerator returns a generator using cryptographic entropy.
func NewIDGenerator() *IDGenerator {
	return NewIDGeneratorWithEntropy(rand.Reader, time.Now)
}

// NewIDGeneratorWithEntropy returns a generator with a custom entropy source
// and clock, for deterministic tests.
func NewIDGeneratorWithEntropy(entropy io.Reader, now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{
		entropy: ulid.Monotonic(entropy, 0),
		now:     now,
	}
}

// New returns a fresh id.
func (g *IDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := ulid.Timestamp(g.now())
	id, err := ulid.New(ms, g.entropy)
	if err != nil {
		// Monotonic entropy overflowed within this millisecond.
		id = ulid.MustNew(ms, rand.Reader)
	}
	return IDPrefix + id.String()
}
