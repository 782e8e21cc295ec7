// FILE: logfeeder/src/internal/dedup/cache_test.go
package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, cfg Config) *Cache {
	t.Helper()
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c := newCache(t, Config{Size: 10, DedupInterval: time.Second})
		assert.Equal(t, "log_message", c.Config().KeyField)
	})

	t.Run("ErrorZeroSize", func(t *testing.T) {
		c, err := New(Config{Size: 0})
		assert.Error(t, err)
		assert.Nil(t, c)
	})

	t.Run("ErrorNegativeInterval", func(t *testing.T) {
		_, err := New(Config{Size: 1, DedupInterval: -time.Second})
		assert.Error(t, err)
	})
}

func TestCache_Key(t *testing.T) {
	t.Run("DefaultFieldIsWholeLine", func(t *testing.T) {
		c := newCache(t, Config{Size: 2})
		key, ok := c.Key("disk full")
		assert.True(t, ok)
		assert.Equal(t, "disk full", key)

		_, ok = c.Key("")
		assert.False(t, ok)
	})

	t.Run("JSONField", func(t *testing.T) {
		c := newCache(t, Config{Size: 2, KeyField: "request.id"})
		key, ok := c.Key(`{"request":{"id":"abc"},"msg":"x"}`)
		assert.True(t, ok)
		assert.Equal(t, "abc", key)
	})

	t.Run("MissingFieldNeverKeyed", func(t *testing.T) {
		c := newCache(t, Config{Size: 2, KeyField: "request.id"})
		_, ok := c.Key(`{"msg":"x"}`)
		assert.False(t, ok)
		_, ok = c.Key("not json")
		assert.False(t, ok)
	})
}

func TestCache_IntervalPolicy(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	interval := time.Second

	testCases := []struct {
		name       string
		delta      time.Duration
		suppressed bool
	}{
		{"WithinInterval", 500 * time.Millisecond, true},
		{"JustBelowInterval", interval - time.Millisecond, true},
		{"ExactlyInterval", interval, false},
		{"BeyondInterval", 3 * time.Second, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newCache(t, Config{Size: 10, DedupInterval: interval})
			assert.False(t, c.IsDuplicate("boom", base))
			assert.Equal(t, tc.suppressed, c.IsDuplicate("boom", base.Add(tc.delta)))
		})
	}

	t.Run("PassThroughRefreshesTimestamp", func(t *testing.T) {
		c := newCache(t, Config{Size: 10, DedupInterval: interval})
		assert.False(t, c.IsDuplicate("boom", base))
		assert.False(t, c.IsDuplicate("boom", base.Add(2*time.Second)))
		assert.True(t, c.IsDuplicate("boom", base.Add(2500*time.Millisecond)))
		assert.Equal(t, uint64(3), c.Hits("boom"))
	})

	t.Run("DistinctKeysIndependent", func(t *testing.T) {
		c := newCache(t, Config{Size: 10, DedupInterval: interval})
		assert.False(t, c.IsDuplicate("a", base))
		assert.False(t, c.IsDuplicate("b", base))
		assert.True(t, c.IsDuplicate("a", base.Add(time.Millisecond)))
	})
}

func TestCache_ConsecutivePolicy(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("RunOfIdenticalKeys", func(t *testing.T) {
		c := newCache(t, Config{Size: 10, LastDedupEnabled: true, DedupInterval: time.Second})
		k := 5
		passed, suppressed := 0, 0
		for i := 0; i < k; i++ {
			// Spaced far beyond the interval to show elapsed time is irrelevant
			if c.IsDuplicate("same", base.Add(time.Duration(i)*time.Hour)) {
				suppressed++
			} else {
				passed++
			}
		}
		assert.Equal(t, 1, passed)
		assert.Equal(t, k-1, suppressed)
	})

	t.Run("InterleavedKeyResetsRun", func(t *testing.T) {
		c := newCache(t, Config{Size: 10, LastDedupEnabled: true, DedupInterval: time.Second})
		assert.False(t, c.IsDuplicate("a", base))
		assert.True(t, c.IsDuplicate("a", base))
		assert.False(t, c.IsDuplicate("b", base))
		assert.False(t, c.IsDuplicate("a", base))
		assert.True(t, c.IsDuplicate("a", base))
	})
}

func TestCache_Eviction(t *testing.T) {
	now := time.Now()

	t.Run("InsertBeyondCapacityEvictsOldest", func(t *testing.T) {
		c := newCache(t, Config{Size: 2, DedupInterval: time.Second})
		c.IsDuplicate("A", now)
		c.IsDuplicate("B", now)
		c.IsDuplicate("C", now)

		assert.Equal(t, 2, c.Len())
		assert.Equal(t, []string{"B", "C"}, c.Keys())
	})

	t.Run("LookupTouchesKey", func(t *testing.T) {
		c := newCache(t, Config{Size: 2, DedupInterval: time.Second})
		c.IsDuplicate("A", now)
		c.IsDuplicate("B", now)
		c.IsDuplicate("A", now) // touch A, B becomes oldest
		c.IsDuplicate("C", now)

		assert.Equal(t, []string{"A", "C"}, c.Keys())
	})

	t.Run("NeverExceedsSize", func(t *testing.T) {
		c := newCache(t, Config{Size: 3, DedupInterval: time.Second})
		for i := 0; i < 100; i++ {
			c.IsDuplicate(string(rune('a'+i%26))+string(rune('a'+i/26)), now)
			require.LessOrEqual(t, c.Len(), 3)
		}
	})

	t.Run("EvictedKeyIsNew", func(t *testing.T) {
		c := newCache(t, Config{Size: 1, DedupInterval: time.Hour})
		assert.False(t, c.IsDuplicate("A", now))
		assert.False(t, c.IsDuplicate("B", now))
		assert.False(t, c.IsDuplicate("A", now), "A was evicted so it passes again")
	})
}
