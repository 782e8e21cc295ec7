// FILE: logfeeder/src/internal/config/output.go
package config

import (
	"fmt"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

const (
	OutputTypeConsole = "console"
	OutputTypeFile    = "file"
	OutputTypeHTTP    = "http"
	OutputTypeRedis   = "redis"
)

// OutputConfig describes one sink. A sink is bound only to inputs whose row type is listed
// in conditions.fields.rowtype.
type OutputConfig struct {
	Name       string        `toml:"name"`
	Type       string        `toml:"type"`
	Conditions *Conditions   `toml:"conditions"`
	Format     *FormatConfig `toml:"format"`
	Retry      *RetryConfig  `toml:"retry"`

	Console *ConsoleOutputOptions `toml:"console"`
	File    *FileOutputOptions    `toml:"file"`
	HTTP    *HTTPOutputOptions    `toml:"http"`
	Redis   *RedisOutputOptions   `toml:"redis"`
}

type RetryConfig struct {
	Attempts int64 `toml:"attempts"`
	DelayMS  int64 `toml:"delay_ms"`
}

type FormatConfig struct {
	// Formatter: "raw", "json", "txt"
	Type string                `toml:"type"`
	JSON *JSONFormatterOptions `toml:"json"`
	Txt  *TxtFormatterOptions  `toml:"txt"`
}

type JSONFormatterOptions struct {
	Pretty         bool   `toml:"pretty"`
	TimestampField string `toml:"timestamp_field"`
	LevelField     string `toml:"level_field"`
	MessageField   string `toml:"message_field"`
	SourceField    string `toml:"source_field"`
}

type TxtFormatterOptions struct {
	Template        string `toml:"template"`
	TimestampFormat string `toml:"timestamp_format"`
}

type ConsoleOutputOptions struct {
	// "stdout", "stderr", or "split"
	Target string `toml:"target"`
}

type FileOutputOptions struct {
	Directory      string  `toml:"directory"`
	Name           string  `toml:"name"`
	MaxSizeMB      int64   `toml:"max_size_mb"`
	MaxTotalSizeMB int64   `toml:"max_total_size_mb"`
	RetentionHours float64 `toml:"retention_hours"`
}

type HTTPOutputOptions struct {
	URL                string  `toml:"url"`
	BufferSize         int64   `toml:"buffer_size"`
	BatchSize          int64   `toml:"batch_size"`
	BatchDelayMS       int64   `toml:"batch_delay_ms"`
	Timeout            int64   `toml:"timeout_seconds"`
	MaxRetries         int64   `toml:"max_retries"`
	RetryDelayMS       int64   `toml:"retry_delay_ms"`
	RetryBackoff       float64 `toml:"retry_backoff"`
	InsecureSkipVerify bool    `toml:"insecure_skip_verify"`
}

type RedisOutputOptions struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int64  `toml:"db"`
	Key       string `toml:"key"`
	TimeoutMS int64  `toml:"timeout_ms"`
}

// DisplayName returns the configured name or the sink type
func (o *OutputConfig) DisplayName() string {
	if o.Name != "" {
		return o.Name
	}
	return o.Type
}

func validateOutput(index int, o *OutputConfig, names map[string]bool) error {
	if err := lconfig.NonEmpty(o.Type); err != nil {
		return fmt.Errorf("output[%d]: missing type", index)
	}

	name := o.DisplayName()
	if names[name] {
		return fmt.Errorf("output[%d]: duplicate name '%s'", index, name)
	}
	names[name] = true

	// A sink without a rowtype rule never binds. Report it so it is not silently idle.
	if o.Conditions != nil && o.Conditions.Fields != nil {
		for i, rt := range o.Conditions.Fields.RowType {
			if strings.TrimSpace(rt) == "" {
				return fmt.Errorf("output[%d]: empty rowtype at index %d", index, i)
			}
		}
	}

	if o.Format != nil {
		switch o.Format.Type {
		case "", "raw", "json", "txt":
		default:
			return fmt.Errorf("output[%d]: unknown format '%s'", index, o.Format.Type)
		}
	}

	if o.Retry != nil && o.Retry.Attempts < 0 {
		return fmt.Errorf("output[%d]: retry attempts must not be negative", index)
	}

	switch o.Type {
	case OutputTypeConsole:
		if o.Console == nil {
			o.Console = &ConsoleOutputOptions{Target: "stdout"}
		}
		switch o.Console.Target {
		case "stdout", "stderr", "split":
		case "":
			o.Console.Target = "stdout"
		default:
			return fmt.Errorf("output[%d]: invalid console target '%s'", index, o.Console.Target)
		}

	case OutputTypeFile:
		if o.File == nil {
			return fmt.Errorf("output[%d]: file output requires [file] options", index)
		}
		if err := lconfig.NonEmpty(o.File.Directory); err != nil {
			return fmt.Errorf("output[%d]: file output requires 'directory'", index)
		}
		if err := lconfig.NonEmpty(o.File.Name); err != nil {
			return fmt.Errorf("output[%d]: file output requires 'name'", index)
		}

	case OutputTypeHTTP:
		if o.HTTP == nil {
			return fmt.Errorf("output[%d]: http output requires [http] options", index)
		}
		if err := lconfig.NonEmpty(o.HTTP.URL); err != nil {
			return fmt.Errorf("output[%d]: http output requires 'url'", index)
		}
		if !strings.HasPrefix(o.HTTP.URL, "http://") && !strings.HasPrefix(o.HTTP.URL, "https://") {
			return fmt.Errorf("output[%d]: http url must start with http:// or https://", index)
		}
		applyHTTPDefaults(o.HTTP)

	case OutputTypeRedis:
		if o.Redis == nil {
			return fmt.Errorf("output[%d]: redis output requires [redis] options", index)
		}
		if err := lconfig.NonEmpty(o.Redis.Addr); err != nil {
			return fmt.Errorf("output[%d]: redis output requires 'addr'", index)
		}
		if err := lconfig.NonEmpty(o.Redis.Key); err != nil {
			return fmt.Errorf("output[%d]: redis output requires 'key'", index)
		}
		if o.Redis.TimeoutMS <= 0 {
			o.Redis.TimeoutMS = 3000
		}

	default:
		return fmt.Errorf("output[%d]: unknown type '%s'", index, o.Type)
	}

	return nil
}

func applyHTTPDefaults(h *HTTPOutputOptions) {
	if h.BufferSize <= 0 {
		h.BufferSize = 1000
	}
	if h.BatchSize <= 0 {
		h.BatchSize = 100
	}
	if h.BatchDelayMS <= 0 {
		h.BatchDelayMS = 1000
	}
	if h.Timeout <= 0 {
		h.Timeout = 30
	}
	if h.MaxRetries < 0 {
		h.MaxRetries = 0
	}
	if h.RetryDelayMS <= 0 {
		h.RetryDelayMS = 1000
	}
	if h.RetryBackoff < 1.0 {
		h.RetryBackoff = 2.0
	}
}
