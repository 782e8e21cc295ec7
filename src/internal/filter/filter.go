// FILE: logfeeder/src/internal/filter/filter.go
package filter

import (
	"fmt"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"
	"logfeeder/src/internal/metrics"

	"github.com/lixenwraith/log"
)

// Filter is one stage of an input's filter chain
type Filter interface {
	// Name identifies the stage in logs, metrics and FilterError
	Name() string

	Init() error

	// Apply transforms the entry in place. forward=false drops the record silently.
	// A non-nil error reports a record-level failure; the record is dropped.
	Apply(entry *core.LogEntry, marker core.InputMarker) (forward bool, err error)

	// Flush emits anything a buffering stage holds. Stateless stages do nothing.
	Flush()

	Close() error
	AddMetrics(r *metrics.Registry)
	LogStat()
}

// Output receives records that passed every stage of a chain
type Output interface {
	Write(entry *core.LogEntry, marker core.InputMarker) error
}

// OutputFunc adapts a function to Output
type OutputFunc func(entry *core.LogEntry, marker core.InputMarker) error

func (f OutputFunc) Write(entry *core.LogEntry, marker core.InputMarker) error {
	return f(entry, marker)
}

// NewFilter creates a stage from configuration
func NewFilter(cfg config.FilterConfig, logger *log.Logger) (Filter, error) {
	switch cfg.Type {
	case config.FilterTypeGrep:
		return NewGrep(cfg, logger)
	case config.FilterTypeJSON:
		return NewJSON(cfg, logger), nil
	case config.FilterTypeThrottle:
		return NewThrottle(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown filter type '%s'", cfg.Type)
	}
}

// stageStats holds the counters every stage reports
type stageStats struct {
	name      string
	logger    *log.Logger
	processed *metrics.Counter
	dropped   *metrics.Counter
}

func newStageStats(name string, logger *log.Logger) stageStats {
	return stageStats{
		name:      name,
		logger:    logger,
		processed: metrics.NewCounter("filter." + name + ".processed"),
		dropped:   metrics.NewCounter("filter." + name + ".dropped"),
	}
}

func (s *stageStats) AddMetrics(r *metrics.Registry) {
	r.Register(s.processed, s.dropped)
}

func (s *stageStats) LogStat() {
	metrics.LogStat(s.logger, s.processed, "Filter processed", "filter", s.name)
	metrics.LogStat(s.logger, s.dropped, "Filter dropped", "filter", s.name)
}
