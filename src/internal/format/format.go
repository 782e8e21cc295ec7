// FILE: logfeeder/src/internal/format/format.go
package format

import (
	"fmt"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter defines the interface for transforming a LogEntry into a byte slice.
type Formatter interface {
	// Format takes a LogEntry and returns the formatted record, newline terminated.
	Format(entry *core.LogEntry) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// NewFormatter creates a Formatter from an output's format section. A nil section yields raw.
func NewFormatter(cfg *config.FormatConfig, logger *log.Logger) (Formatter, error) {
	name := ""
	if cfg != nil {
		name = cfg.Type
	}

	switch name {
	case "json":
		return NewJSONFormatter(cfg.JSON, logger)
	case "txt":
		return NewTxtFormatter(cfg.Txt, logger)
	case "raw", "":
		return NewRawFormatter(logger), nil
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", name)
	}
}
