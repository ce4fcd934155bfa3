package identity

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIDFixedWidthASCII(t *testing.T) {
	g := NewGenerator()
	id := g.NextID()
	require.Len(t, id, 8)
	for _, c := range id {
		assert.True(t, (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'),
			"unexpected character %q in id %q", c, id)
	}
}

func TestNextIDMonotonicAcrossCalls(t *testing.T) {
	g := NewGenerator()
	ids := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		ids = append(ids, g.NextID())
	}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	assert.Equal(t, sorted, ids, "sorting must preserve generation order")
}

func TestNextIDMonotonicWithinBurst(t *testing.T) {
	g := NewGenerator()
	ids := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		ids = append(ids, g.NextID())
	}
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i], "burst ids must be strictly increasing")
	}
}

func TestNextIDSameMillisecondUsesSequence(t *testing.T) {
	g := &Generator{now: func() uint64 { return epochMillis + 1000 }}
	first := g.NextID()
	second := g.NextID()
	assert.Less(t, first, second)
	// Only the low (sequence) digit may differ within one millisecond.
	assert.Equal(t, first[:7], second[:7])
}

func TestNextIDNewMillisecondResetsSequence(t *testing.T) {
	ms := uint64(epochMillis + 1000)
	g := &Generator{now: func() uint64 { return ms }}
	g.NextID()
	g.NextID()
	ms++
	next := g.NextID()
	assert.Equal(t, encode((1001)<<seqBits), next)
}

func TestNextIDSequenceExhaustionSpinsToNextMillisecond(t *testing.T) {
	ms := uint64(epochMillis + 5)
	calls := 0
	g := &Generator{now: func() uint64 {
		calls++
		// Advance the clock only after the generator starts spinning.
		if calls > 300 {
			return ms + 1
		}
		return ms
	}}
	ids := make([]string, 0, 257)
	for i := 0; i < 257; i++ {
		ids = append(ids, g.NextID())
	}
	for i := 1; i < len(ids); i++ {
		require.Less(t, ids[i-1], ids[i])
	}
}

func TestNextIDClampsToMaxValue(t *testing.T) {
	g := &Generator{now: func() uint64 { return epochMillis + maxValue }}
	id := g.NextID()
	assert.Equal(t, "zzzzzzzz", id)
}

func TestNextIDConcurrentNoDuplicates(t *testing.T) {
	g := NewGenerator()
	const goroutines = 8
	const perGoroutine = 100

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perGoroutine)
			for j := 0; j < perGoroutine; j++ {
				local = append(local, g.NextID())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				assert.False(t, seen[id], "duplicate id %q", id)
				seen[id] = true
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestEncodeZero(t *testing.T) {
	assert.Equal(t, "00000000", encode(0))
}
