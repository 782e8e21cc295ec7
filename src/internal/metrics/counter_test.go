// FILE: logfeeder/src/internal/metrics/counter_test.go
package metrics

import (
	"sync"
	"testing"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	c := NewCounter("input.lines")
	c.Inc()
	c.Add(4)
	assert.Equal(t, uint64(5), c.Value())
	assert.Equal(t, "input.lines", c.Name())
}

func TestCounter_ConcurrentReadWhileIncrementing(t *testing.T) {
	c := NewCounter("bytes")
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10000; i++ {
			c.Inc()
		}
	}()

	var last uint64
	for i := 0; i < 1000; i++ {
		v := c.Value()
		require.GreaterOrEqual(t, v, last, "counter must never go backwards")
		last = v
	}
	wg.Wait()
	assert.Equal(t, uint64(10000), c.Value())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := NewCounter("a")
	b := NewCounter("b")
	r.Register(a, nil, b)

	counters := r.Counters()
	require.Len(t, counters, 2)
	assert.Same(t, a, counters[0])
	assert.Same(t, b, counters[1])

	a.Add(2)
	b.Inc()
	other := NewCounter("a")
	other.Add(3)
	r.Register(other)

	snap := r.Snapshot()
	assert.Equal(t, uint64(5), snap["a"])
	assert.Equal(t, uint64(1), snap["b"])
}

func TestRegistry_Scope(t *testing.T) {
	r := NewRegistry()
	first := r.Scope("input.app")
	second := r.Scope("input.db")
	assert.Equal(t, "input.app", first.Prefix())
	assert.Equal(t, "input.app.filter", first.Scope("filter").Prefix())

	linesA := NewCounter("lines")
	linesB := NewCounter("lines")
	first.Register(linesA)
	second.Register(linesB)
	first.Scope("output").Register(NewCounter("written"))

	linesA.Add(2)
	linesB.Inc()

	assert.Equal(t, []string{"input.app.lines", "input.db.lines", "input.app.output.written"}, r.Names())
	snap := r.Snapshot()
	assert.Equal(t, uint64(2), snap["input.app.lines"])
	assert.Equal(t, uint64(1), snap["input.db.lines"])
	assert.NotContains(t, snap, "lines")
	assert.Len(t, first.Counters(), 3, "scopes share one store")
}

func TestLogStat_DoesNotResetCounter(t *testing.T) {
	logger := log.NewLogger()
	c := NewCounter("lines")
	c.Add(10)

	LogStat(logger, c, "Stat: Lines Read")
	assert.Equal(t, uint64(10), c.Value())
	assert.Equal(t, uint64(10), c.lastLogged.Load())

	c.Add(5)
	LogStat(logger, c, "Stat: Lines Read")
	assert.Equal(t, uint64(15), c.Value())
	assert.Equal(t, uint64(15), c.lastLogged.Load())

	// Nil safe
	LogStat(logger, nil, "nothing")
}
