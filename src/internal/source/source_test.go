// FILE: logfeeder/src/internal/source/source_test.go
package source

import (
	"testing"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	logger := log.NewLogger()

	tests := []struct {
		name    string
		cfg     config.InputConfig
		want    any
		wantErr bool
	}{
		{"file", config.InputConfig{Type: config.InputTypeFile, Path: "app.log"}, &FileSource{}, false},
		{"file without path", config.InputConfig{Type: config.InputTypeFile}, nil, true},
		{"stdin", config.InputConfig{Type: config.InputTypeStdin}, &StdinSource{}, false},
		{"tcp", config.InputConfig{Type: config.InputTypeTCP, Port: 5170}, &TCPSource{}, false},
		{"tcp without port", config.InputConfig{Type: config.InputTypeTCP}, nil, true},
		{"unknown", config.InputConfig{Type: "syslog"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := New(tt.cfg, nil, 0, logger)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, src)
		})
	}
}
