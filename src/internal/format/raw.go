// FILE: logfeeder/src/internal/format/raw.go
package format

import (
	"logfeeder/src/internal/core"

	"github.com/lixenwraith/log"
)

// Outputs the log message as-is with a newline
type RawFormatter struct {
	logger *log.Logger
}

func NewRawFormatter(logger *log.Logger) *RawFormatter {
	return &RawFormatter{
		logger: logger,
	}
}

func (f *RawFormatter) Format(entry *core.LogEntry) ([]byte, error) {
	return append([]byte(entry.Message), '\n'), nil
}

func (f *RawFormatter) Name() string {
	return "raw"
}
