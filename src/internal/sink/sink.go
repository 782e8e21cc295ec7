// FILE: logfeeder/src/internal/sink/sink.go
package sink

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"logfeeder/src/internal/core"
)

// ErrSinkStopped is returned by Write after Stop
var ErrSinkStopped = errors.New("sink stopped")

// Sink represents an output destination for log entries. A sink may be bound to
// several inputs; Write is safe for concurrent use.
type Sink interface {
	// Name identifies the sink in logs and stats
	Name() string

	// Write hands a record to the sink. rowType is the tag of the originating input.
	Write(entry *core.LogEntry, rowType string) error

	// Start begins processing log entries
	Start(ctx context.Context) error

	// Stop delivers what is queued and shuts the sink down
	Stop()

	// GetStats returns sink statistics
	GetStats() SinkStats
}

// SinkStats contains statistics about a sink
type SinkStats struct {
	Type           string
	TotalProcessed uint64
	TotalFailed    uint64
	StartTime      time.Time
	LastProcessed  time.Time
	Details        map[string]any
}

// queue is the buffered hand-off between writers and a sink's process loop.
// Writers from many inputs enqueue concurrently; one loop consumes.
type queue struct {
	input    chan core.LogEntry
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	startTime      time.Time
	totalProcessed atomic.Uint64
	totalFailed    atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

func newQueue(size int64) *queue {
	if size <= 0 {
		size = core.DefaultSinkBufferSize
	}
	q := &queue{
		input:     make(chan core.LogEntry, size),
		done:      make(chan struct{}),
		startTime: time.Now(),
	}
	q.lastProcessed.Store(time.Time{})
	return q
}

// enqueue copies the entry into the queue, blocking while it is full
func (q *queue) enqueue(entry *core.LogEntry) error {
	select {
	case <-q.done:
		return ErrSinkStopped
	default:
	}

	select {
	case q.input <- *entry:
		return nil
	case <-q.done:
		return ErrSinkStopped
	}
}

// run starts the consuming loop. handle is called for each entry in order.
// Entries still queued at stop are handled before the loop exits.
func (q *queue) run(ctx context.Context, handle func(entry core.LogEntry)) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case entry := <-q.input:
				q.totalProcessed.Add(1)
				q.lastProcessed.Store(time.Now())
				handle(entry)

			case <-ctx.Done():
				return
			case <-q.done:
				for {
					select {
					case entry := <-q.input:
						q.totalProcessed.Add(1)
						handle(entry)
					default:
						return
					}
				}
			}
		}
	}()
}

// stop signals the loop and waits for it to finish. Safe to call more than once.
func (q *queue) stop() {
	q.stopOnce.Do(func() {
		close(q.done)
	})
	q.wg.Wait()
}

func (q *queue) stats(typ string, details map[string]any) SinkStats {
	lastProc, _ := q.lastProcessed.Load().(time.Time)
	return SinkStats{
		Type:           typ,
		TotalProcessed: q.totalProcessed.Load(),
		TotalFailed:    q.totalFailed.Load(),
		StartTime:      q.startTime,
		LastProcessed:  lastProc,
		Details:        details,
	}
}
