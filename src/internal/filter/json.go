// FILE: logfeeder/src/internal/filter/json.go
package filter

import (
	"encoding/json"
	"errors"
	"strings"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/tidwall/gjson"
)

var errInvalidJSON = errors.New("message is not valid json")

// JSON parses the message as a JSON object, lifts the level and message fields
// onto the entry and keeps the object in Fields
type JSON struct {
	messageField string
	levelField   string
	lenient      bool
	logger       *log.Logger

	stageStats
}

func NewJSON(cfg config.FilterConfig, logger *log.Logger) *JSON {
	j := &JSON{
		messageField: cfg.MessageField,
		levelField:   cfg.LevelField,
		lenient:      cfg.Lenient,
		logger:       logger,
		stageStats:   newStageStats(config.FilterTypeJSON, logger),
	}
	if j.messageField == "" {
		j.messageField = "message"
	}
	if j.levelField == "" {
		j.levelField = "level"
	}
	return j
}

func (j *JSON) Name() string { return config.FilterTypeJSON }

func (j *JSON) Init() error {
	j.logger.Debug("msg", "JSON filter initialized",
		"component", "filter",
		"message_field", j.messageField,
		"level_field", j.levelField,
		"lenient", j.lenient)
	return nil
}

func (j *JSON) Apply(entry *core.LogEntry, _ core.InputMarker) (bool, error) {
	j.processed.Inc()

	raw := strings.TrimSpace(entry.Message)
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		if j.lenient {
			return true, nil
		}
		j.dropped.Inc()
		return false, errInvalidJSON
	}

	doc := gjson.Parse(raw)
	if level := doc.Get(j.levelField); level.Exists() {
		entry.Level = strings.ToUpper(level.String())
	}
	if msg := doc.Get(j.messageField); msg.Exists() {
		entry.Message = msg.String()
	}
	entry.Fields = json.RawMessage(raw)

	return true, nil
}

func (j *JSON) Flush() {}

func (j *JSON) Close() error { return nil }
