// FILE: logfeeder/src/internal/input/source.go
package input

import (
	"context"

	"logfeeder/src/internal/core"
	"logfeeder/src/internal/metrics"
)

// Source is a concrete log origin driven by an Input
type Source interface {
	// IsReady reports whether Start can run, e.g. the file exists and is readable
	IsReady() bool

	// Start reads until the source is exhausted or ctx is cancelled, handing every
	// line to emit from the calling goroutine. Cancellation returns nil or ctx.Err();
	// an unrecoverable read failure returns an error wrapping core.ErrIO.
	Start(ctx context.Context, emit Emitter) error

	// CheckIn records the progress captured by marker
	CheckIn(marker core.InputMarker)

	// LastCheckIn durably persists the latest progress. Called once at close,
	// possibly from another goroutine than Start.
	LastCheckIn()

	ShortDescription() string
}

// Emitter accepts raw lines from a source
type Emitter interface {
	Emit(line string, marker core.InputMarker)
}

// Chain is the filter chain an input feeds
type Chain interface {
	Init() error
	Apply(entry *core.LogEntry, marker core.InputMarker) error
	Flush()
	Close() error
	AddMetrics(r *metrics.Registry)
	LogStat()
}
