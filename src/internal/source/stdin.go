// FILE: logfeeder/src/internal/source/stdin.go
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"
	"logfeeder/src/internal/input"

	"github.com/lixenwraith/log"
)

// StdinSource reads lines from standard input until EOF. Progress is not persisted.
type StdinSource struct {
	reader io.Reader
	desc   string
	logger *log.Logger

	totalLines    atomic.Uint64
	lastLine      atomic.Int64
	startTime     time.Time
	lastEntryTime atomic.Value // time.Time
}

func NewStdinSource(cfg config.InputConfig, logger *log.Logger) *StdinSource {
	s := &StdinSource{
		reader:    os.Stdin,
		desc:      cfg.ShortDescription(),
		logger:    logger,
		startTime: time.Now(),
	}
	s.lastEntryTime.Store(time.Time{})
	return s
}

// IsReady is always true
func (s *StdinSource) IsReady() bool {
	return true
}

func (s *StdinSource) ShortDescription() string {
	return s.desc
}

// Start scans on a helper goroutine so a blocked read cannot hold up cancellation.
// Lines are emitted from the calling goroutine. The helper exits at the next line
// or EOF after cancellation.
func (s *StdinSource) Start(ctx context.Context, emit input.Emitter) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.reader)
		scanner.Buffer(make([]byte, 0, 64*1024), core.MaxLineLength)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	s.logger.Info("msg", "Stdin source started", "component", "stdin_source")

	var lineNumber int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				var err error
				select {
				case err = <-scanErr:
				default:
				}
				if err != nil {
					return fmt.Errorf("%w: stdin: %v", core.ErrIO, err)
				}
				s.logger.Info("msg", "Stdin closed",
					"component", "stdin_source",
					"lines", lineNumber)
				return nil
			}
			lineNumber++
			if line == "" {
				continue
			}
			s.totalLines.Add(1)
			s.lastEntryTime.Store(time.Now())
			emit.Emit(line, core.InputMarker{LineNumber: lineNumber})
		}
	}
}

// CheckIn tracks the last processed line for stats only
func (s *StdinSource) CheckIn(marker core.InputMarker) {
	s.lastLine.Store(marker.LineNumber)
}

func (s *StdinSource) LastCheckIn() {
	s.logger.Debug("msg", "Stdin source finished",
		"component", "stdin_source",
		"last_line", s.lastLine.Load())
}

func (s *StdinSource) GetStats() Stats {
	return Stats{
		Type:          config.InputTypeStdin,
		TotalLines:    s.totalLines.Load(),
		StartTime:     s.startTime,
		LastEntryTime: loadTime(&s.lastEntryTime),
		Details: map[string]any{
			"last_line": s.lastLine.Load(),
		},
	}
}
