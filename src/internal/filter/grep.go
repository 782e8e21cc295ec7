// FILE: logfeeder/src/internal/filter/grep.go
package filter

import (
	"fmt"
	"regexp"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"
	"logfeeder/src/internal/metrics"

	"github.com/lixenwraith/log"
)

// Grep applies regex-based include/exclude filtering to log entries
type Grep struct {
	config   config.FilterConfig
	patterns []*regexp.Regexp
	logger   *log.Logger

	stageStats
	matched *metrics.Counter
}

// NewGrep creates a grep stage from configuration
func NewGrep(cfg config.FilterConfig, logger *log.Logger) (*Grep, error) {
	// Set defaults
	if cfg.Action == "" {
		cfg.Action = config.FilterActionInclude
	}
	if cfg.Logic == "" {
		cfg.Logic = config.FilterLogicOr
	}

	g := &Grep{
		config:     cfg,
		patterns:   make([]*regexp.Regexp, 0, len(cfg.Patterns)),
		logger:     logger,
		stageStats: newStageStats(config.FilterTypeGrep, logger),
		matched:    metrics.NewCounter("filter.grep.matched"),
	}

	// Compile patterns
	for i, pattern := range cfg.Patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern[%d] '%s': %w", i, pattern, err)
		}
		g.patterns = append(g.patterns, re)
	}

	logger.Debug("msg", "Grep filter created",
		"component", "filter",
		"action", cfg.Action,
		"logic", cfg.Logic,
		"pattern_count", len(cfg.Patterns))

	return g, nil
}

func (g *Grep) Name() string { return config.FilterTypeGrep }

func (g *Grep) Init() error { return nil }

// Apply checks if a log entry should be passed through
func (g *Grep) Apply(entry *core.LogEntry, _ core.InputMarker) (bool, error) {
	g.processed.Inc()

	// No patterns means pass everything
	if len(g.patterns) == 0 {
		return true, nil
	}

	// Check against all fields that might contain the log content
	text := entry.Message
	if entry.Level != "" {
		text = entry.Level + " " + text
	}
	if entry.Source != "" {
		text = entry.Source + " " + text
	}

	matched := g.matches(text)
	if matched {
		g.matched.Inc()
	}

	shouldPass := matched
	if g.config.Action == config.FilterActionExclude {
		shouldPass = !matched
	}

	if !shouldPass {
		g.dropped.Inc()
	}
	return shouldPass, nil
}

// matches checks if text matches the patterns according to the logic
func (g *Grep) matches(text string) bool {
	switch g.config.Logic {
	case config.FilterLogicOr:
		for _, re := range g.patterns {
			if re.MatchString(text) {
				return true
			}
		}
		return false

	case config.FilterLogicAnd:
		for _, re := range g.patterns {
			if !re.MatchString(text) {
				return false
			}
		}
		return true

	default:
		// Shouldn't happen after validation
		g.logger.Warn("msg", "Unknown filter logic",
			"component", "filter",
			"logic", g.config.Logic)
		return false
	}
}

func (g *Grep) Flush() {}

func (g *Grep) Close() error { return nil }

func (g *Grep) AddMetrics(r *metrics.Registry) {
	g.stageStats.AddMetrics(r)
	r.Register(g.matched)
}
