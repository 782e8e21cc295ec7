// FILE: logfeeder/src/internal/format/txt.go
package format

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"

	"github.com/lixenwraith/log"
)

const defaultTxtTemplate = "[{{.Timestamp | FmtTime}}] [{{.Level | ToUpper}}] {{.Source}} - {{.Message}}"

// Produces human-readable text logs using templates
type TxtFormatter struct {
	config   config.TxtFormatterOptions
	template *template.Template
	logger   *log.Logger
}

func NewTxtFormatter(opts *config.TxtFormatterOptions, logger *log.Logger) (*TxtFormatter, error) {
	f := &TxtFormatter{
		logger: logger,
	}
	if opts != nil {
		f.config = *opts
	}
	if f.config.Template == "" {
		f.config.Template = defaultTxtTemplate
	}
	if f.config.TimestampFormat == "" {
		f.config.TimestampFormat = time.RFC3339
	}

	funcMap := template.FuncMap{
		"FmtTime": func(t time.Time) string {
			return t.Format(f.config.TimestampFormat)
		},
		"ToUpper":   strings.ToUpper,
		"ToLower":   strings.ToLower,
		"TrimSpace": strings.TrimSpace,
	}

	tmpl, err := template.New("log").Funcs(funcMap).Parse(f.config.Template)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	f.template = tmpl
	return f, nil
}

// Formats the log entry using the template
func (f *TxtFormatter) Format(entry *core.LogEntry) ([]byte, error) {
	data := map[string]any{
		"Timestamp": entry.Time,
		"Level":     entry.Level,
		"Source":    entry.Source,
		"Type":      entry.Type,
		"RowType":   entry.RowType,
		"Message":   entry.Message,
		"ID":        entry.ID,
	}

	if entry.Level == "" {
		data["Level"] = "INFO"
	}
	if len(entry.Fields) > 0 {
		data["Fields"] = string(entry.Fields)
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		f.logger.Debug("msg", "Template execution failed, using fallback",
			"component", "txt_formatter",
			"error", err)

		fallback := fmt.Sprintf("[%s] [%s] %s - %s\n",
			entry.Time.Format(f.config.TimestampFormat),
			strings.ToUpper(data["Level"].(string)),
			entry.Source,
			entry.Message)
		return []byte(fallback), nil
	}

	result := buf.Bytes()
	if len(result) == 0 || result[len(result)-1] != '\n' {
		result = append(result, '\n')
	}

	return result, nil
}

func (f *TxtFormatter) Name() string {
	return "txt"
}
