// FILE: logfeeder/src/internal/filter/chain.go
package filter

import (
	"errors"
	"fmt"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"
	"logfeeder/src/internal/metrics"

	"github.com/lixenwraith/log"
)

var errNoOutput = errors.New("filter chain has no output")

// Chain is the ordered sequence of stages owned by one input. Records that pass every
// stage are written to the chain's output. Stages are appended during assembly only;
// the chain is not safe for concurrent Apply calls.
type Chain struct {
	stages []Filter
	output Output
	logger *log.Logger

	// Statistics
	totalProcessed *metrics.Counter
	totalPassed    *metrics.Counter
}

// NewChain creates a chain writing to output, with the given stages in order
func NewChain(output Output, logger *log.Logger, stages ...Filter) *Chain {
	c := &Chain{
		output:         output,
		logger:         logger,
		totalProcessed: metrics.NewCounter("filter_chain.processed"),
		totalPassed:    metrics.NewCounter("filter_chain.passed"),
	}
	for _, s := range stages {
		c.Append(s)
	}
	return c
}

// BuildChain creates the chain of an input from the configured stages whose conditions
// select the input's type, keeping configuration order.
func BuildChain(configs []config.FilterConfig, inputType string, output Output, logger *log.Logger) (*Chain, error) {
	if output == nil {
		return nil, errNoOutput
	}

	chain := NewChain(output, logger)
	for i, cfg := range configs {
		if !cfg.AppliesTo(inputType) {
			continue
		}
		f, err := NewFilter(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("filter[%d]: %w", i, err)
		}
		chain.Append(f)
	}

	logger.Debug("msg", "Filter chain created",
		"component", "filter_chain",
		"input_type", inputType,
		"filter_count", len(chain.stages))
	return chain, nil
}

// Append adds a stage at the tail. Assembly only.
func (c *Chain) Append(f Filter) {
	c.stages = append(c.stages, f)
}

// Len returns the number of stages
func (c *Chain) Len() int {
	return len(c.stages)
}

// Init initializes every stage in order
func (c *Chain) Init() error {
	var errs []error
	for _, s := range c.stages {
		if err := s.Init(); err != nil {
			errs = append(errs, fmt.Errorf("filter '%s' init: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Apply runs a record through every stage and writes it to the output if no stage
// drops it. A dropped record is not an error. A stage failure is returned as *core.FilterError.
func (c *Chain) Apply(entry *core.LogEntry, marker core.InputMarker) error {
	c.totalProcessed.Inc()

	for i, s := range c.stages {
		forward, err := s.Apply(entry, marker)
		if err != nil {
			var fe *core.FilterError
			if errors.As(err, &fe) {
				return err
			}
			return &core.FilterError{Stage: s.Name(), Err: err}
		}
		if !forward {
			c.logger.Debug("msg", "Entry filtered out",
				"component", "filter_chain",
				"filter_index", i,
				"filter_type", s.Name())
			return nil
		}
	}

	if c.output == nil {
		return errNoOutput
	}
	c.totalPassed.Inc()
	return c.output.Write(entry, marker)
}

// Flush flushes every stage in order, then the output if it buffers
func (c *Chain) Flush() {
	for _, s := range c.stages {
		s.Flush()
	}
	if f, ok := c.output.(interface{ Flush() }); ok {
		f.Flush()
	}
}

// Close closes every stage in order. Every stage is closed even if an earlier one fails.
// The output is shared and closed by its owner.
func (c *Chain) Close() error {
	var errs []error
	for _, s := range c.stages {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("filter '%s' close: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// AddMetrics registers chain totals, every stage's counters, and the output's when it has any
func (c *Chain) AddMetrics(r *metrics.Registry) {
	r.Register(c.totalProcessed, c.totalPassed)
	for _, s := range c.stages {
		s.AddMetrics(r)
	}
	if m, ok := c.output.(interface{ AddMetrics(*metrics.Registry) }); ok {
		m.AddMetrics(r)
	}
}

// LogStat logs chain totals, every stage's counters, and the output's
func (c *Chain) LogStat() {
	metrics.LogStat(c.logger, c.totalPassed, "Filter chain passed")
	for _, s := range c.stages {
		s.LogStat()
	}
	if l, ok := c.output.(interface{ LogStat() }); ok {
		l.LogStat()
	}
}

// GetStats returns aggregated statistics for the entire chain.
func (c *Chain) GetStats() map[string]any {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name()
	}

	return map[string]any{
		"filter_count":    len(c.stages),
		"filters":         names,
		"total_processed": c.totalProcessed.Value(),
		"total_passed":    c.totalPassed.Value(),
	}
}
