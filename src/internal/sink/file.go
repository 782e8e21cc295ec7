// FILE: logfeeder/src/internal/sink/file.go
package sink

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"
	"logfeeder/src/internal/format"

	"github.com/lixenwraith/log"
)

// Writes log entries to files with rotation
type FileSink struct {
	name      string
	opts      config.FileOutputOptions
	writer    *log.Logger // Internal logger instance for file writing
	queue     *queue
	logger    *log.Logger // Application logger
	formatter format.Formatter
}

// Creates a new file sink. The rotating writer is started immediately.
func NewFileSink(name string, opts *config.FileOutputOptions, logger *log.Logger, formatter format.Formatter) (*FileSink, error) {
	if opts == nil {
		return nil, fmt.Errorf("file sink options cannot be nil")
	}

	writerConfig := log.DefaultConfig()
	writerConfig.Directory = opts.Directory
	writerConfig.Name = opts.Name
	writerConfig.EnableConsole = false // File only
	writerConfig.ShowTimestamp = false // Formatter owns timestamps
	writerConfig.ShowLevel = false

	if opts.MaxSizeMB > 0 {
		writerConfig.MaxSizeKB = opts.MaxSizeMB * 1000
	}
	if opts.MaxTotalSizeMB >= 0 {
		writerConfig.MaxTotalSizeKB = opts.MaxTotalSizeMB * 1000
	}
	if opts.RetentionHours > 0 {
		writerConfig.RetentionPeriodHrs = opts.RetentionHours
	}

	writer := log.NewLogger()
	if err := writer.ApplyConfig(writerConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize file writer: %w", err)
	}
	if err := writer.Start(); err != nil {
		return nil, fmt.Errorf("failed to start file writer: %w", err)
	}

	return &FileSink{
		name:      name,
		opts:      *opts,
		writer:    writer,
		queue:     newQueue(core.DefaultSinkBufferSize),
		logger:    logger,
		formatter: formatter,
	}, nil
}

func (fs *FileSink) Name() string {
	return fs.name
}

func (fs *FileSink) Write(entry *core.LogEntry, _ string) error {
	return fs.queue.enqueue(entry)
}

func (fs *FileSink) Start(ctx context.Context) error {
	fs.queue.run(ctx, fs.process)
	fs.logger.Info("msg", "File sink started",
		"component", "file_sink",
		"name", fs.name,
		"directory", fs.opts.Directory,
		"file", fs.opts.Name)
	return nil
}

func (fs *FileSink) Stop() {
	fs.queue.stop()

	if err := fs.writer.Shutdown(2 * time.Second); err != nil {
		fs.logger.Error("msg", "Error shutting down file writer",
			"component", "file_sink",
			"error", err)
	}

	fs.logger.Info("msg", "File sink stopped",
		"component", "file_sink",
		"name", fs.name)
}

func (fs *FileSink) GetStats() SinkStats {
	return fs.queue.stats("file", map[string]any{
		"directory": fs.opts.Directory,
		"file":      fs.opts.Name,
	})
}

func (fs *FileSink) process(entry core.LogEntry) {
	formatted, err := fs.formatter.Format(&entry)
	if err != nil {
		fs.queue.totalFailed.Add(1)
		fs.logger.Error("msg", "Failed to format log entry",
			"component", "file_sink",
			"error", err)
		return
	}

	// Convert to string to prevent hex encoding of []byte by log package
	// Strip new line, writer adds it
	fs.writer.Message(string(bytes.TrimSuffix(formatted, []byte{'\n'})))
}
