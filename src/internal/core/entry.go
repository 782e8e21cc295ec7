// FILE: logfeeder/src/internal/core/entry.go
package core

import (
	"encoding/json"
	"time"
)

// Represents a single log record flowing from an input through its filter chain to the outputs
type LogEntry struct {
	Time     time.Time       `json:"time"`
	Source   string          `json:"source"`
	Type     string          `json:"type,omitempty"`
	RowType  string          `json:"rowtype,omitempty"`
	Level    string          `json:"level,omitempty"`
	Message  string          `json:"message"`
	Fields   json.RawMessage `json:"fields,omitempty"`
	EventMD5 string          `json:"event_md5,omitempty"`
	ID       string          `json:"id,omitempty"`
	RawSize  int64           `json:"-"`
}

// Captures the read position a line came from. Sources create one per emitted line
// and receive it back through CheckIn once the line has been processed.
type InputMarker struct {
	Input      string
	Path       string
	LineNumber int64
	Offset     int64
}
