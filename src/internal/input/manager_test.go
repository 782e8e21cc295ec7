// FILE: logfeeder/src/internal/input/manager_test.go
package input

import (
	"context"
	"testing"
	"time"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(config.MonitorConfig{
		CheckIntervalMS: 10,
		StatIntervalMS:  1000,
		DrainTimeoutMS:  500,
	}, newTestLogger())
}

func TestManager_StartsInputsWhenReady(t *testing.T) {
	m := newTestManager()

	ready := newFakeSource()
	ready.block = true
	late := newFakeSource()
	late.block = true
	late.ready.Store(false)

	inReady := newInput(t, ready, cacheSettings(false, false), &collector{})
	inLate := newInput(t, late, cacheSettings(false, false), &collector{})
	m.Add(inReady)
	m.Add(inLate)

	m.Start(context.Background())
	assert.True(t, inReady.Started(), "first monitor pass runs immediately")
	assert.False(t, inLate.Started())

	late.ready.Store(true)
	require.Eventually(t, inLate.Started, time.Second, 5*time.Millisecond)

	m.Shutdown(context.Background())
	assert.Equal(t, StateClosed, inReady.State())
	assert.Equal(t, StateClosed, inLate.State())
	assert.Equal(t, 1, ready.lastCheckIns)
	assert.Equal(t, 1, late.lastCheckIns)
}

func TestManager_ClosesExitedInputs(t *testing.T) {
	m := newTestManager()
	src := newFakeSource("a", "b")
	out := &collector{}
	in := newInput(t, src, cacheSettings(false, false), out)
	m.Add(in)

	m.Start(context.Background())
	require.Eventually(t, func() bool { return in.State() == StateClosed }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, out.got())

	m.Shutdown(context.Background())
	m.Shutdown(context.Background())
	assert.Equal(t, StateClosed, in.State())
}

func TestManager_ShutdownBoundedWithLeakedInput(t *testing.T) {
	m := NewManager(config.MonitorConfig{CheckIntervalMS: 10, DrainTimeoutMS: 50}, newTestLogger())

	stuck := newFakeSource()
	stuck.ignoreCancel = true
	good := newFakeSource()
	good.block = true
	inStuck := newInput(t, stuck, cacheSettings(false, false), &collector{})
	inGood := newInput(t, good, cacheSettings(false, false), &collector{})
	m.Add(inStuck)
	m.Add(inGood)

	m.Start(context.Background())
	<-stuck.started
	<-good.started

	start := time.Now()
	m.Shutdown(context.Background())
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, inGood.Exited())
	assert.False(t, inStuck.Exited())
	assert.Equal(t, StateClosed, inGood.State())
	assert.Equal(t, StateClosed, inStuck.State())

	close(stuck.release)
	<-inStuck.Done()
}

func TestManager_Stats(t *testing.T) {
	m := newTestManager()
	a := newInput(t, newFakeSource(), cacheSettings(false, false), &collector{})
	m.Add(a)

	a.Emit("hello", core.InputMarker{})
	a.Emit("world", core.InputMarker{})

	snap := m.Registry().Snapshot()
	assert.Equal(t, uint64(2), snap["input.fake.lines"])
	assert.Equal(t, uint64(10), snap["input.fake.bytes"])

	stats := m.GetStats()
	require.Contains(t, stats, "fake")
	assert.Equal(t, uint64(2), stats["fake"].(map[string]any)["lines"])

	assert.NotPanics(t, m.LogStats)
	m.Shutdown(context.Background())
}

func TestManager_CountersScopedPerInput(t *testing.T) {
	m := newTestManager()
	named := func(desc string) *Input {
		src := newFakeSource()
		src.desc = desc
		return newInput(t, src, cacheSettings(false, false), &collector{})
	}
	first := named("app")
	second := named("db")
	twin := named("")
	other := named("")
	m.Add(first)
	m.Add(second)
	m.Add(twin)
	m.Add(other)

	first.Emit("one", core.InputMarker{})
	first.Emit("two", core.InputMarker{})
	second.Emit("three", core.InputMarker{})
	other.Emit("four", core.InputMarker{})

	snap := m.Registry().Snapshot()
	assert.Equal(t, uint64(2), snap["input.app.lines"])
	assert.Equal(t, uint64(1), snap["input.db.lines"])
	assert.Equal(t, uint64(2), snap["input.app.filter_chain.passed"])
	assert.Equal(t, uint64(1), snap["input.db.filter_chain.passed"])
	assert.Equal(t, uint64(0), snap["input.fake.lines"])
	assert.Equal(t, uint64(1), snap["input.fake#2.lines"])
	assert.NotContains(t, snap, "lines")

	names := m.Registry().Names()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		assert.False(t, seen[n], "counter %s registered twice", n)
		seen[n] = true
	}
	m.Shutdown(context.Background())
}
