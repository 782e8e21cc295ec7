// FILE: logfeeder/src/internal/config/config.go
package config

// Config is the root of the logfeeder configuration
type Config struct {
	Logging    *LogConfig       `toml:"logging"`
	Monitor    MonitorConfig    `toml:"monitor"`
	Checkpoint CheckpointConfig `toml:"checkpoint"`

	// Dedup defaults applied to every input that does not override them
	Cache CacheConfig `toml:"cache"`

	Inputs  []InputConfig  `toml:"inputs"`
	Filters []FilterConfig `toml:"filters"`
	Outputs []OutputConfig `toml:"outputs"`
}

// MonitorConfig controls the input scheduler cadence
type MonitorConfig struct {
	// Readiness re-check interval for inputs that are not running yet
	CheckIntervalMS int64 `toml:"check_interval_ms"`

	// Interval of the periodic stat report
	StatIntervalMS int64 `toml:"stat_interval_ms"`

	// Upper bound to wait for an input's execution context after drain
	DrainTimeoutMS int64 `toml:"drain_timeout_ms"`
}

// CheckpointConfig controls where and how often sources persist read offsets
type CheckpointConfig struct {
	Directory  string `toml:"directory"`
	IntervalMS int64  `toml:"interval_ms"`
}

// Conditions gate which inputs a filter or output applies to
type Conditions struct {
	Fields *ConditionFields `toml:"fields"`
}

// ConditionFields lists the accepted input types and row types
type ConditionFields struct {
	Type    []string `toml:"type"`
	RowType []string `toml:"rowtype"`
}
