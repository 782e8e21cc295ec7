// FILE: logfeeder/src/internal/sink/console.go
package sink

import (
	"context"
	"io"
	"os"
	"strings"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"
	"logfeeder/src/internal/format"

	"github.com/lixenwraith/log"
)

// ConsoleSink writes log entries to stdout, stderr, or both by level in split mode
type ConsoleSink struct {
	name      string
	target    string
	stdout    io.Writer
	stderr    io.Writer
	queue     *queue
	logger    *log.Logger
	formatter format.Formatter
}

// NewConsoleSink creates a console sink
func NewConsoleSink(name string, opts *config.ConsoleOutputOptions, logger *log.Logger, formatter format.Formatter) *ConsoleSink {
	target := "stdout"
	if opts != nil && opts.Target != "" {
		target = opts.Target
	}

	return &ConsoleSink{
		name:      name,
		target:    target,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		queue:     newQueue(core.DefaultSinkBufferSize),
		logger:    logger,
		formatter: formatter,
	}
}

func (s *ConsoleSink) Name() string {
	return s.name
}

func (s *ConsoleSink) Write(entry *core.LogEntry, _ string) error {
	return s.queue.enqueue(entry)
}

func (s *ConsoleSink) Start(ctx context.Context) error {
	s.queue.run(ctx, s.process)
	s.logger.Info("msg", "Console sink started",
		"component", "console_sink",
		"name", s.name,
		"target", s.target)
	return nil
}

func (s *ConsoleSink) Stop() {
	s.queue.stop()
	s.logger.Info("msg", "Console sink stopped",
		"component", "console_sink",
		"name", s.name)
}

func (s *ConsoleSink) GetStats() SinkStats {
	return s.queue.stats("console", map[string]any{
		"target": s.target,
	})
}

func (s *ConsoleSink) process(entry core.LogEntry) {
	formatted, err := s.formatter.Format(&entry)
	if err != nil {
		s.queue.totalFailed.Add(1)
		s.logger.Error("msg", "Failed to format log entry for console",
			"component", "console_sink",
			"error", err)
		return
	}

	if _, err := s.writerFor(entry.Level).Write(formatted); err != nil {
		s.queue.totalFailed.Add(1)
	}
}

// writerFor picks the stream for an entry. Split mode sends warnings and errors to stderr.
func (s *ConsoleSink) writerFor(level string) io.Writer {
	switch s.target {
	case "stderr":
		return s.stderr
	case "split":
		switch strings.ToUpper(level) {
		case "ERROR", "WARN", "WARNING", "FATAL":
			return s.stderr
		}
	}
	return s.stdout
}
