// FILE: logfeeder/src/internal/config/logging.go
package config

import (
	"fmt"
	"slices"
)

// LogConfig controls the feeder's own diagnostic log. Records read from inputs never
// go here; they are delivered by the [[outputs]] sections.
type LogConfig struct {
	// Where diagnostics go. "split" sends info/debug to stdout and warn/error to stderr,
	// "all" writes the file and the console target together.
	Output string `toml:"output"`

	Level string `toml:"level"`

	// Used by the "file" and "all" modes
	File *LogFileConfig `toml:"file"`

	// Console target for "all" mode, and the line format of every console mode
	Console *LogConsoleConfig `toml:"console"`
}

// LogFileConfig is the rotating diagnostic file
type LogFileConfig struct {
	Directory      string  `toml:"directory"`
	Name           string  `toml:"name"`
	MaxSizeMB      int64   `toml:"max_size_mb"`
	MaxTotalSizeMB int64   `toml:"max_total_size_mb"`
	RetentionHours float64 `toml:"retention_hours"` // 0 keeps files until the size cap
}

type LogConsoleConfig struct {
	Target string `toml:"target"`
	Format string `toml:"format"` // "txt" or "json"
}

var (
	logOutputs     = []string{"file", "stdout", "stderr", "split", "all", "none"}
	logLevels      = []string{"debug", "info", "warn", "error"}
	consoleTargets = []string{"stdout", "stderr", "split"}
	consoleFormats = []string{"", "txt", "json"}
)

// DefaultLogConfig logs info and above to stderr, with file settings ready for the file modes
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Output: "stderr",
		Level:  "info",
		File: &LogFileConfig{
			Directory:      "./log",
			Name:           "logfeeder",
			MaxSizeMB:      100,
			MaxTotalSizeMB: 1000,
			RetentionHours: 168,
		},
		Console: &LogConsoleConfig{
			Target: "stderr",
			Format: "txt",
		},
	}
}

func oneOf(what, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s: %s", what, value)
	}
	return nil
}

func validateLogConfig(cfg *LogConfig) error {
	if err := oneOf("log output mode", cfg.Output, logOutputs); err != nil {
		return err
	}
	if err := oneOf("log level", cfg.Level, logLevels); err != nil {
		return err
	}

	if cfg.Console != nil {
		if err := oneOf("console target", cfg.Console.Target, consoleTargets); err != nil {
			return err
		}
		if err := oneOf("console format", cfg.Console.Format, consoleFormats); err != nil {
			return err
		}
	}

	if cfg.Output == "file" || cfg.Output == "all" {
		if cfg.File == nil || cfg.File.Directory == "" || cfg.File.Name == "" {
			return fmt.Errorf("log output '%s' requires logging.file directory and name", cfg.Output)
		}
		if cfg.File.MaxSizeMB < 0 || cfg.File.MaxTotalSizeMB < 0 || cfg.File.RetentionHours < 0 {
			return fmt.Errorf("logging.file sizes and retention must not be negative")
		}
	}
	return nil
}
