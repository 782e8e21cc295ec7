// FILE: logfeeder/src/internal/sink/dispatcher.go
package sink

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"

	"logfeeder/src/internal/core"
	"logfeeder/src/internal/metrics"

	"github.com/lixenwraith/log"
)

// DispatchOptions are the per-input record stamping flags
type DispatchOptions struct {
	GenEventMD5     bool
	UseEventMD5AsID bool
}

// Dispatcher is the terminal stage of an input's filter chain. It stamps the record
// and writes it to every sink bound to the input.
type Dispatcher struct {
	sinks   []Sink
	rowType string
	opts    DispatchOptions
	logger  *log.Logger

	written *metrics.Counter
	failed  *metrics.Counter
}

func NewDispatcher(sinks []Sink, rowType string, opts DispatchOptions, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		sinks:   sinks,
		rowType: rowType,
		opts:    opts,
		logger:  logger,
		written: metrics.NewCounter("output.written"),
		failed:  metrics.NewCounter("output.failed"),
	}
}

// Write delivers the record to all bound sinks. A failing sink does not stop delivery
// to the others and is not reported to the caller.
func (d *Dispatcher) Write(entry *core.LogEntry, marker core.InputMarker) error {
	if d.opts.GenEventMD5 || d.opts.UseEventMD5AsID {
		entry.EventMD5 = EventMD5(entry)
		if d.opts.UseEventMD5AsID {
			entry.ID = entry.EventMD5
		}
	}

	for _, s := range d.sinks {
		if err := s.Write(entry, d.rowType); err != nil {
			d.failed.Inc()
			d.logger.Error("msg", "Failed to write to output",
				"component", "dispatcher",
				"output", s.Name(),
				"input", marker.Input,
				"error", err)
			continue
		}
		d.written.Inc()
	}
	return nil
}

// Sinks returns the bound sinks
func (d *Dispatcher) Sinks() []Sink {
	return d.sinks
}

func (d *Dispatcher) AddMetrics(r *metrics.Registry) {
	r.Register(d.written, d.failed)
}

func (d *Dispatcher) LogStat() {
	metrics.LogStat(d.logger, d.written, "Output written", "rowtype", d.rowType)
	metrics.LogStat(d.logger, d.failed, "Output failed", "rowtype", d.rowType)
}

// EventMD5 is the hex md5 of the record's origin, log time in milliseconds, and message
func EventMD5(entry *core.LogEntry) string {
	h := md5.New()
	h.Write([]byte(entry.Source))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(entry.Time.UnixMilli(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(entry.Message))
	return hex.EncodeToString(h.Sum(nil))
}
