// FILE: logfeeder/src/internal/config/validation.go
package config

import (
	"fmt"

	"logfeeder/src/internal/core"
)

// validateConfig checks the structure of the whole configuration and fills unset defaults.
// Input descriptors are checked individually at assembly time by ValidateInput so a bad
// input does not block the others.
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Logging == nil {
		cfg.Logging = DefaultLogConfig()
	}
	if err := validateLogConfig(cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := validateMonitor(&cfg.Monitor); err != nil {
		return fmt.Errorf("monitor config: %w", err)
	}

	if cfg.Checkpoint.IntervalMS <= 0 {
		cfg.Checkpoint.IntervalMS = core.DefaultCheckpointIntervalMS
	}

	if err := validateCache(&cfg.Cache); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if len(cfg.Inputs) == 0 {
		return fmt.Errorf("no inputs configured")
	}

	for i := range cfg.Filters {
		if err := validateFilter(i, &cfg.Filters[i]); err != nil {
			return err
		}
	}

	if len(cfg.Outputs) == 0 {
		return fmt.Errorf("no outputs configured")
	}

	names := make(map[string]bool)
	for i := range cfg.Outputs {
		if err := validateOutput(i, &cfg.Outputs[i], names); err != nil {
			return err
		}
	}

	return nil
}

func validateMonitor(m *MonitorConfig) error {
	if m.CheckIntervalMS == 0 {
		m.CheckIntervalMS = core.DefaultCheckIntervalMS
	}
	if m.CheckIntervalMS < 10 {
		return fmt.Errorf("check_interval_ms too small: %d ms (min: 10ms)", m.CheckIntervalMS)
	}
	if m.StatIntervalMS <= 0 {
		m.StatIntervalMS = core.DefaultStatIntervalMS
	}
	if m.DrainTimeoutMS <= 0 {
		m.DrainTimeoutMS = core.DefaultDrainTimeoutMS
	}
	return nil
}

// Validate runs structural validation, exported for configs built in code
func (c *Config) Validate() error {
	return validateConfig(c)
}
