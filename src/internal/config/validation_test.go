// FILE: logfeeder/src/internal/config/validation_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Inputs: []InputConfig{{Type: "stdin", RowType: "service"}},
		Filters: []FilterConfig{{
			Type:       FilterTypeGrep,
			Conditions: &Conditions{Fields: &ConditionFields{Type: []string{"stdin"}}},
			Patterns:   []string{"ERROR"},
		}},
		Outputs: []OutputConfig{{
			Type:       OutputTypeConsole,
			Conditions: &Conditions{Fields: &ConditionFields{RowType: []string{"service"}}},
		}},
	}
}

func TestValidateConfig(t *testing.T) {
	t.Run("FillsDefaults", func(t *testing.T) {
		cfg := validConfig()
		require.NoError(t, cfg.Validate())

		assert.NotNil(t, cfg.Logging)
		assert.Equal(t, int64(1000), cfg.Monitor.CheckIntervalMS)
		assert.Equal(t, int64(30000), cfg.Monitor.StatIntervalMS)
		assert.Equal(t, int64(5000), cfg.Monitor.DrainTimeoutMS)
		assert.Equal(t, int64(5000), cfg.Checkpoint.IntervalMS)
		assert.Equal(t, "stdout", cfg.Outputs[0].Console.Target)
	})

	t.Run("NoInputs", func(t *testing.T) {
		cfg := validConfig()
		cfg.Inputs = nil
		assert.ErrorContains(t, cfg.Validate(), "no inputs")
	})

	t.Run("NoOutputs", func(t *testing.T) {
		cfg := validConfig()
		cfg.Outputs = nil
		assert.ErrorContains(t, cfg.Validate(), "no outputs")
	})

	t.Run("InvalidInputDoesNotFailStructure", func(t *testing.T) {
		cfg := validConfig()
		cfg.Inputs = append(cfg.Inputs, InputConfig{Type: "file"})
		assert.NoError(t, cfg.Validate())
	})

	t.Run("CheckIntervalTooSmall", func(t *testing.T) {
		cfg := validConfig()
		cfg.Monitor.CheckIntervalMS = 5
		assert.ErrorContains(t, cfg.Validate(), "check_interval_ms")
	})

	t.Run("BadLogLevel", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging = DefaultLogConfig()
		cfg.Logging.Level = "verbose"
		assert.ErrorContains(t, cfg.Validate(), "invalid log level")
	})

	t.Run("FileLogWithoutDirectory", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging = DefaultLogConfig()
		cfg.Logging.Output = "all"
		cfg.Logging.File.Directory = ""
		assert.ErrorContains(t, cfg.Validate(), "requires logging.file")
	})

	t.Run("SplitConsoleLog", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging = DefaultLogConfig()
		cfg.Logging.Output = "split"
		cfg.Logging.File = nil
		assert.NoError(t, cfg.Validate())
	})
}

func TestValidateFilter(t *testing.T) {
	cond := &Conditions{Fields: &ConditionFields{Type: []string{"file"}}}

	testCases := []struct {
		name    string
		cfg     FilterConfig
		wantErr string
	}{
		{"GrepDefaults", FilterConfig{Type: FilterTypeGrep, Conditions: cond}, ""},
		{"JSON", FilterConfig{Type: FilterTypeJSON, Conditions: cond}, ""},
		{"Throttle", FilterConfig{Type: FilterTypeThrottle, Conditions: cond, RatePerSec: 10}, ""},
		{"MissingConditions", FilterConfig{Type: FilterTypeGrep}, "conditions.fields.type"},
		{"BadAction", FilterConfig{Type: FilterTypeGrep, Conditions: cond, Action: "keep"}, "invalid action"},
		{"BadLogic", FilterConfig{Type: FilterTypeGrep, Conditions: cond, Logic: "xor"}, "invalid logic"},
		{"BadRegex", FilterConfig{Type: FilterTypeGrep, Conditions: cond, Patterns: []string{"["}}, "invalid regex"},
		{"ThrottleNoRate", FilterConfig{Type: FilterTypeThrottle, Conditions: cond}, "rate_per_sec"},
		{"Unknown", FilterConfig{Type: "grok", Conditions: cond}, "unknown type"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateFilter(0, &tc.cfg)
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.wantErr)
			}
		})
	}
}

func TestFilterConfig_AppliesTo(t *testing.T) {
	f := FilterConfig{Conditions: &Conditions{Fields: &ConditionFields{Type: []string{"file", "tcp"}}}}
	assert.True(t, f.AppliesTo("file"))
	assert.True(t, f.AppliesTo("tcp"))
	assert.False(t, f.AppliesTo("stdin"))

	none := FilterConfig{}
	assert.False(t, none.AppliesTo("file"))
}

func TestValidateOutput(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     OutputConfig
		wantErr string
	}{
		{"ConsoleDefault", OutputConfig{Type: OutputTypeConsole}, ""},
		{"ConsoleBadTarget", OutputConfig{Type: OutputTypeConsole, Console: &ConsoleOutputOptions{Target: "tty"}}, "console target"},
		{"FileMissingOptions", OutputConfig{Type: OutputTypeFile}, "requires [file]"},
		{"FileMissingName", OutputConfig{Type: OutputTypeFile, File: &FileOutputOptions{Directory: "/tmp"}}, "'name'"},
		{"HTTPBadScheme", OutputConfig{Type: OutputTypeHTTP, HTTP: &HTTPOutputOptions{URL: "ftp://x"}}, "http://"},
		{"HTTPValid", OutputConfig{Type: OutputTypeHTTP, HTTP: &HTTPOutputOptions{URL: "http://collector:8080/ingest"}}, ""},
		{"RedisMissingKey", OutputConfig{Type: OutputTypeRedis, Redis: &RedisOutputOptions{Addr: "localhost:6379"}}, "'key'"},
		{"UnknownFormat", OutputConfig{Type: OutputTypeConsole, Format: &FormatConfig{Type: "xml"}}, "unknown format"},
		{"EmptyRowType", OutputConfig{Type: OutputTypeConsole, Conditions: &Conditions{Fields: &ConditionFields{RowType: []string{" "}}}}, "empty rowtype"},
		{"Unknown", OutputConfig{Type: "kafka"}, "unknown type"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateOutput(0, &tc.cfg, map[string]bool{})
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.wantErr)
			}
		})
	}

	t.Run("HTTPDefaultsApplied", func(t *testing.T) {
		o := OutputConfig{Type: OutputTypeHTTP, HTTP: &HTTPOutputOptions{URL: "https://x"}}
		require.NoError(t, validateOutput(0, &o, map[string]bool{}))
		assert.Equal(t, int64(100), o.HTTP.BatchSize)
		assert.Equal(t, 2.0, o.HTTP.RetryBackoff)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		names := map[string]bool{}
		a := OutputConfig{Type: OutputTypeConsole}
		b := OutputConfig{Type: OutputTypeConsole}
		require.NoError(t, validateOutput(0, &a, names))
		assert.ErrorContains(t, validateOutput(1, &b, names), "duplicate name")
	})
}
