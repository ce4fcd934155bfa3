// Package identity generates the fixed-width identifiers that name every
// persisted session artifact.
//
// An identifier is 8 characters of base62 (0-9, A-Z, a-z, in that order so
// byte-wise comparison equals numeric comparison). The encoded value is
// (milliseconds since 2020-01-01 UTC) << 8 | sequence, where the sequence
// occupies the low 8 bits and disambiguates identifiers minted within the
// same millisecond. Identifiers minted in call order on one generator are
// therefore non-decreasing under plain string comparison, which makes a
// lexicographic sort of filenames a chronological sort.
package identity

import (
	"sync/atomic"
	"time"
)

const (
	// epochMillis is 2020-01-01 00:00:00 UTC. IDs are relative to this
	// epoch so the 8-character format lasts roughly 280 years before
	// pinning at the maximum value.
	epochMillis = 1577836800000

	seqBits = 8
	seqMask = (1 << seqBits) - 1

	idWidth = 8
	base    = 62

	// maxValue is 62^8 - 1, the largest value 8 base62 digits can encode.
	maxValue = 218340105584895
)

// alphabet is ordered so lexicographic order of encoded strings equals
// numeric order of the underlying values.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Generator mints identifiers. It is safe for concurrent use from multiple
// goroutines; the shared state is advanced with a compare-and-swap loop and
// no locks are held.
type Generator struct {
	last uint64
	now  func() uint64
}

// NewGenerator returns a generator backed by the wall clock.
func NewGenerator() *Generator {
	return &Generator{now: nowMillis}
}

// NextID returns a new identifier. Within one process, successive calls
// return strictly increasing identifiers. If more than 256 identifiers are
// requested within a single millisecond the call spins until the clock
// advances to the next millisecond; it never fails.
func (g *Generator) NextID() string {
	for {
		ms := g.now()
		var msRel uint64
		if ms > epochMillis {
			msRel = ms - epochMillis
		}
		candidate := msRel << seqBits
		if candidate > maxValue {
			candidate = maxValue
		}

		prev := atomic.LoadUint64(&g.last)
		var next uint64
		if prev>>seqBits < msRel {
			next = candidate
		} else {
			seq := (prev & seqMask) + 1
			if seq > seqMask {
				// Sequence exhausted for this millisecond; re-read
				// the clock until it ticks.
				continue
			}
			next = prev + 1
			if next > maxValue {
				next = maxValue
			}
		}
		if atomic.CompareAndSwapUint64(&g.last, prev, next) {
			return encode(next)
		}
	}
}

func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}

// encode renders n as exactly 8 base62 digits, most significant first.
func encode(n uint64) string {
	var buf [idWidth]byte
	for i := idWidth - 1; i >= 0; i-- {
		buf[i] = alphabet[n%base]
		n /= base
	}
	return string(buf[:])
}

var defaultGenerator = NewGenerator()

// NextID mints an identifier from the process-wide default generator.
func NextID() string {
	return defaultGenerator.NextID()
}
