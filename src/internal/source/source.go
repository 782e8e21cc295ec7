// FILE: logfeeder/src/internal/source/source.go
package source

import (
	"fmt"
	"time"

	"logfeeder/src/internal/checkpoint"
	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"
	"logfeeder/src/internal/input"

	"github.com/lixenwraith/log"
)

// Stats is the read-side view of a source, reported next to the input counters
type Stats struct {
	Type          string
	TotalLines    uint64
	StartTime     time.Time
	LastEntryTime time.Time
	Details       map[string]any
}

// New creates the concrete source for an input descriptor. store may be nil, in which
// case read progress is not persisted.
func New(cfg config.InputConfig, store checkpoint.Store, cpInterval time.Duration, logger *log.Logger) (input.Source, error) {
	switch cfg.Type {
	case config.InputTypeFile:
		return NewFileSource(cfg, store, cpInterval, logger)
	case config.InputTypeStdin:
		return NewStdinSource(cfg, logger), nil
	case config.InputTypeTCP:
		return NewTCPSource(cfg, logger)
	default:
		return nil, core.ConfigError(cfg.ShortDescription(), fmt.Errorf("unknown input type '%s'", cfg.Type))
	}
}

func loadTime(v interface{ Load() any }) time.Time {
	t, _ := v.Load().(time.Time)
	return t
}
