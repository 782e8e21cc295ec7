// FILE: logfeeder/src/internal/sink/retry.go
package sink

import (
	"errors"
	"time"

	"logfeeder/src/internal/core"

	"github.com/lixenwraith/log"
)

// RetrySink retries a failed Write on the wrapped sink a fixed number of times.
// ErrSinkStopped is never retried.
type RetrySink struct {
	Sink
	attempts int
	delay    time.Duration
	logger   *log.Logger
}

// NewRetrySink wraps inner. attempts < 1 means a single attempt; delayMS 0 means one second.
func NewRetrySink(inner Sink, attempts int, delayMS int64, logger *log.Logger) *RetrySink {
	if attempts < 1 {
		attempts = 1
	}
	if delayMS == 0 {
		delayMS = 1000
	}
	return &RetrySink{
		Sink:     inner,
		attempts: attempts,
		delay:    time.Duration(delayMS) * time.Millisecond,
		logger:   logger,
	}
}

// Write forwards to the wrapped sink, retrying on failure. The last error is returned.
func (r *RetrySink) Write(entry *core.LogEntry, rowType string) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err = r.Sink.Write(entry, rowType)
		if err == nil || errors.Is(err, ErrSinkStopped) {
			return err
		}

		r.logger.Warn("msg", "Sink write failed",
			"component", "retry_sink",
			"sink", r.Sink.Name(),
			"attempt", attempt,
			"attempts", r.attempts,
			"error", err)

		if attempt < r.attempts {
			time.Sleep(r.delay)
		}
	}
	return err
}
