// FILE: logfeeder/src/internal/sink/dispatcher_test.go
package sink

import (
	"testing"
	"time"

	"logfeeder/src/internal/core"
	"logfeeder/src/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_Write(t *testing.T) {
	logger := newTestLogger()
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("FansOutAndContinuesPastFailure", func(t *testing.T) {
		broken := &memorySink{name: "broken", failN: 1}
		healthy := &memorySink{name: "healthy"}
		d := NewDispatcher([]Sink{broken, healthy}, "service", DispatchOptions{}, logger)

		err := d.Write(&core.LogEntry{Message: "hello"}, core.InputMarker{Input: "app"})
		assert.NoError(t, err)
		require.Len(t, healthy.entries, 1)
		assert.Equal(t, "service", healthy.rows[0])
		assert.Empty(t, broken.entries)

		r := metrics.NewRegistry()
		d.AddMetrics(r)
		snap := r.Snapshot()
		assert.Equal(t, uint64(1), snap["output.written"])
		assert.Equal(t, uint64(1), snap["output.failed"])
	})

	t.Run("StampsEventMD5", func(t *testing.T) {
		out := &memorySink{name: "out"}
		d := NewDispatcher([]Sink{out}, "service", DispatchOptions{GenEventMD5: true}, logger)

		entry := &core.LogEntry{Time: ts, Source: "app", Message: "hello"}
		require.NoError(t, d.Write(entry, core.InputMarker{}))

		assert.Len(t, out.entries[0].EventMD5, 32)
		assert.Equal(t, EventMD5(&core.LogEntry{Time: ts, Source: "app", Message: "hello"}), out.entries[0].EventMD5)
		assert.Empty(t, out.entries[0].ID)
	})

	t.Run("MD5AsID", func(t *testing.T) {
		out := &memorySink{name: "out"}
		d := NewDispatcher([]Sink{out}, "service", DispatchOptions{GenEventMD5: true, UseEventMD5AsID: true}, logger)

		require.NoError(t, d.Write(&core.LogEntry{Time: ts, Message: "hello"}, core.InputMarker{}))
		assert.Equal(t, out.entries[0].EventMD5, out.entries[0].ID)
	})

	t.Run("NoStampingWhenDisabled", func(t *testing.T) {
		out := &memorySink{name: "out"}
		d := NewDispatcher([]Sink{out}, "service", DispatchOptions{}, logger)

		require.NoError(t, d.Write(&core.LogEntry{Message: "hello"}, core.InputMarker{}))
		assert.Empty(t, out.entries[0].EventMD5)
	})
}

func TestEventMD5(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := EventMD5(&core.LogEntry{Time: ts, Source: "app", Message: "hello"})
	b := EventMD5(&core.LogEntry{Time: ts, Source: "app", Message: "hello"})
	c := EventMD5(&core.LogEntry{Time: ts.Add(time.Millisecond), Source: "app", Message: "hello"})
	d := EventMD5(&core.LogEntry{Time: ts, Source: "other", Message: "hello"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}
