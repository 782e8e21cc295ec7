// FILE: logfeeder/src/internal/format/json.go
package format

import (
	"encoding/json"
	"fmt"
	"time"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/tidwall/gjson"
)

// JSONFormatter produces structured JSON logs from LogEntry objects.
type JSONFormatter struct {
	config *config.JSONFormatterOptions
	logger *log.Logger
}

// NewJSONFormatter creates a new JSON formatter from configuration options.
func NewJSONFormatter(opts *config.JSONFormatterOptions, logger *log.Logger) (*JSONFormatter, error) {
	cfg := config.JSONFormatterOptions{}
	if opts != nil {
		cfg = *opts
	}
	if cfg.TimestampField == "" {
		cfg.TimestampField = "timestamp"
	}
	if cfg.LevelField == "" {
		cfg.LevelField = "level"
	}
	if cfg.MessageField == "" {
		cfg.MessageField = "message"
	}
	if cfg.SourceField == "" {
		cfg.SourceField = "source"
	}

	return &JSONFormatter{
		config: &cfg,
		logger: logger,
	}, nil
}

// Format transforms a single LogEntry into a JSON byte slice.
func (f *JSONFormatter) Format(entry *core.LogEntry) ([]byte, error) {
	output := make(map[string]any)

	output[f.config.TimestampField] = entry.Time.Format(time.RFC3339Nano)
	output[f.config.LevelField] = entry.Level
	output[f.config.SourceField] = entry.Source
	if entry.Type != "" {
		output["type"] = entry.Type
	}
	if entry.RowType != "" {
		output["rowtype"] = entry.RowType
	}
	if entry.EventMD5 != "" {
		output["event_md5"] = entry.EventMD5
	}
	if entry.ID != "" {
		output["id"] = entry.ID
	}

	// A JSON object message is merged; entry metadata takes precedence
	msg := gjson.Parse(entry.Message)
	if gjson.Valid(entry.Message) && msg.IsObject() {
		msg.ForEach(func(key, value gjson.Result) bool {
			k := key.String()
			if _, exists := output[k]; !exists {
				output[k] = value.Value()
			} else if k == f.config.TimestampField {
				f.logger.Debug("msg", "Overriding timestamp from JSON message",
					"component", "json_formatter",
					"original", value.String())
			}
			return true
		})
	} else {
		output[f.config.MessageField] = entry.Message
	}

	// Fields lifted by a filter stage never override existing keys
	if len(entry.Fields) > 0 && gjson.ValidBytes(entry.Fields) {
		gjson.ParseBytes(entry.Fields).ForEach(func(key, value gjson.Result) bool {
			if _, exists := output[key.String()]; !exists {
				output[key.String()] = value.Value()
			}
			return true
		})
	}

	var result []byte
	var err error
	if f.config.Pretty {
		result, err = json.MarshalIndent(output, "", "  ")
	} else {
		result, err = json.Marshal(output)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return append(result, '\n'), nil
}

// Name returns the formatter's type name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// FormatBatch transforms a slice of LogEntry objects into a single JSON array byte slice.
func (f *JSONFormatter) FormatBatch(entries []core.LogEntry) ([]byte, error) {
	batch := make([]json.RawMessage, 0, len(entries))

	for i := range entries {
		formatted, err := f.Format(&entries[i])
		if err != nil {
			f.logger.Warn("msg", "Failed to format entry in batch",
				"component", "json_formatter",
				"error", err)
			continue
		}

		// Remove the trailing newline for array elements
		if len(formatted) > 0 && formatted[len(formatted)-1] == '\n' {
			formatted = formatted[:len(formatted)-1]
		}

		batch = append(batch, formatted)
	}

	return json.Marshal(batch)
}
