// FILE: logfeeder/src/internal/sink/console_test.go
package sink

import (
	"bytes"
	"context"
	"testing"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"
	"logfeeder/src/internal/format"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleSink(t *testing.T) {
	logger := newTestLogger()

	testCases := []struct {
		target     string
		wantStdout string
		wantStderr string
	}{
		{"stdout", "info line\nerror line\n", ""},
		{"stderr", "", "info line\nerror line\n"},
		{"split", "info line\n", "error line\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.target, func(t *testing.T) {
			s := NewConsoleSink("console", &config.ConsoleOutputOptions{Target: tc.target}, logger, format.NewRawFormatter(logger))
			var stdout, stderr bytes.Buffer
			s.stdout, s.stderr = &stdout, &stderr

			require.NoError(t, s.Start(context.Background()))
			require.NoError(t, s.Write(&core.LogEntry{Level: "INFO", Message: "info line"}, "service"))
			require.NoError(t, s.Write(&core.LogEntry{Level: "ERROR", Message: "error line"}, "service"))
			s.Stop()

			assert.Equal(t, tc.wantStdout, stdout.String())
			assert.Equal(t, tc.wantStderr, stderr.String())
			assert.Equal(t, uint64(2), s.GetStats().TotalProcessed)
		})
	}
}
