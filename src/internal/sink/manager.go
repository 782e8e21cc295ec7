// FILE: logfeeder/src/internal/sink/manager.go
package sink

import (
	"context"
	"fmt"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/format"

	"github.com/lixenwraith/log"
)

// binding pairs a sink with the row types it accepts
type binding struct {
	sink Sink
	rule *MatchRule
}

// Manager owns every configured sink. Inputs hold non-owning references obtained
// through Select; the manager starts and stops the sinks.
type Manager struct {
	bindings []binding
	logger   *log.Logger
}

func NewManager(logger *log.Logger) *Manager {
	return &Manager{logger: logger}
}

// NewManagerFromConfig builds a sink per output section. Outputs must be validated.
func NewManagerFromConfig(cfgs []config.OutputConfig, logger *log.Logger) (*Manager, error) {
	m := NewManager(logger)
	for i := range cfgs {
		s, err := NewSink(&cfgs[i], logger)
		if err != nil {
			m.Stop()
			return nil, fmt.Errorf("output[%d] '%s': %w", i, cfgs[i].DisplayName(), err)
		}
		m.Add(s, NewMatchRule(cfgs[i].Conditions))
	}
	return m, nil
}

// NewSink creates one sink with its formatter and optional retry decorator
func NewSink(cfg *config.OutputConfig, logger *log.Logger) (Sink, error) {
	formatter, err := format.NewFormatter(cfg.Format, logger)
	if err != nil {
		return nil, err
	}

	var s Sink
	name := cfg.DisplayName()
	switch cfg.Type {
	case config.OutputTypeConsole:
		s = NewConsoleSink(name, cfg.Console, logger, formatter)
	case config.OutputTypeFile:
		s, err = NewFileSink(name, cfg.File, logger, formatter)
	case config.OutputTypeHTTP:
		s, err = NewHTTPSink(name, cfg.HTTP, logger, formatter)
	case config.OutputTypeRedis:
		s, err = NewRedisSink(name, cfg.Redis, logger, formatter)
	default:
		return nil, fmt.Errorf("unknown output type '%s'", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Retry != nil && cfg.Retry.Attempts > 1 {
		s = NewRetrySink(s, int(cfg.Retry.Attempts), cfg.Retry.DelayMS, logger)
	}
	return s, nil
}

// Add registers a sink. A nil rule never binds.
func (m *Manager) Add(s Sink, rule *MatchRule) {
	if rule == nil {
		m.logger.Warn("msg", "Output has no rowtype conditions and will not receive records",
			"component", "sink_manager",
			"output", s.Name())
	}
	m.bindings = append(m.bindings, binding{sink: s, rule: rule})
}

// Select returns the sinks whose rule accepts rowType, in configuration order
func (m *Manager) Select(rowType string) []Sink {
	var out []Sink
	for _, b := range m.bindings {
		if b.rule.Accepts(rowType) {
			out = append(out, b.sink)
		}
	}
	return out
}

// Start starts every sink, stopping the already started ones on failure
func (m *Manager) Start(ctx context.Context) error {
	for i, b := range m.bindings {
		if err := b.sink.Start(ctx); err != nil {
			for _, started := range m.bindings[:i] {
				started.sink.Stop()
			}
			return fmt.Errorf("failed to start output '%s': %w", b.sink.Name(), err)
		}
	}
	return nil
}

// Stop stops every sink
func (m *Manager) Stop() {
	for _, b := range m.bindings {
		b.sink.Stop()
	}
}

func (m *Manager) GetStats() map[string]any {
	stats := make(map[string]any, len(m.bindings))
	for _, b := range m.bindings {
		s := b.sink.GetStats()
		stats[b.sink.Name()] = map[string]any{
			"type":            s.Type,
			"rowtypes":        b.rule.RowTypes(),
			"total_processed": s.TotalProcessed,
			"total_failed":    s.TotalFailed,
			"start_time":      s.StartTime,
			"last_processed":  s.LastProcessed,
			"details":         s.Details,
		}
	}
	return stats
}
