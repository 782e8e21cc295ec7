// FILE: logfeeder/src/internal/config/input_test.go
package config

import (
	"errors"
	"testing"
	"time"

	"logfeeder/src/internal/core"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestInputConfig_Defaults(t *testing.T) {
	c := InputConfig{Type: InputTypeFile, RowType: "service", Path: "/var/log/app/app.log"}

	assert.True(t, c.IsEnabled())
	assert.True(t, c.IsTail())
	assert.True(t, c.IsGenEventMD5())
	assert.False(t, c.IsUseEventMD5AsID())
	assert.Equal(t, "file=app.log", c.ShortDescription())

	c.Enabled = boolPtr(false)
	c.Tail = boolPtr(false)
	assert.False(t, c.IsEnabled())
	assert.False(t, c.IsTail())

	c.Name = "app"
	assert.Equal(t, "app", c.ShortDescription())
}

func TestInputConfig_ResolveCache(t *testing.T) {
	t.Run("BuiltInDefaults", func(t *testing.T) {
		c := InputConfig{}
		s := c.ResolveCache(CacheConfig{})
		assert.Equal(t, CacheSettings{
			Enabled:          false,
			KeyField:         "log_message",
			Size:             100,
			LastDedupEnabled: false,
			DedupInterval:    time.Second,
		}, s)
	})

	t.Run("GlobalOverridesDefaults", func(t *testing.T) {
		c := InputConfig{}
		s := c.ResolveCache(CacheConfig{Enabled: boolPtr(true), Size: 50})
		assert.True(t, s.Enabled)
		assert.Equal(t, 50, s.Size)
		assert.Equal(t, "log_message", s.KeyField)
	})

	t.Run("InputOverridesGlobal", func(t *testing.T) {
		c := InputConfig{Cache: &CacheConfig{
			Enabled:          boolPtr(false),
			KeyField:         "request_id",
			LastDedupEnabled: boolPtr(true),
			DedupIntervalMS:  250,
		}}
		s := c.ResolveCache(CacheConfig{Enabled: boolPtr(true), Size: 50})
		assert.False(t, s.Enabled)
		assert.Equal(t, "request_id", s.KeyField)
		assert.Equal(t, 50, s.Size)
		assert.True(t, s.LastDedupEnabled)
		assert.Equal(t, 250*time.Millisecond, s.DedupInterval)
	})
}

func TestValidateInput(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     InputConfig
		wantErr string
	}{
		{"ValidFile", InputConfig{Type: "file", RowType: "service", Path: "/tmp/a.log"}, ""},
		{"ValidStdin", InputConfig{Type: "stdin", RowType: "service"}, ""},
		{"ValidTCP", InputConfig{Type: "tcp", RowType: "audit", Port: 5140}, ""},
		{"MissingType", InputConfig{RowType: "service"}, "missing type"},
		{"MissingRowType", InputConfig{Type: "stdin"}, "missing rowtype"},
		{"FileWithoutPath", InputConfig{Type: "file", RowType: "service"}, "requires 'path'"},
		{"UnknownType", InputConfig{Type: "kafka", RowType: "service"}, "unknown input type"},
		{"TCPBadPort", InputConfig{Type: "tcp", RowType: "service", Port: 70000}, "input[0]"},
		{"TCPWithACL", InputConfig{Type: "tcp", RowType: "audit", Port: 5140, IPAllow: []string{"10.0.0.0/8"}, IPDeny: []string{"10.0.0.1"}}, ""},
		{"TCPBadAllowRule", InputConfig{Type: "tcp", RowType: "audit", Port: 5140, IPAllow: []string{"not-an-ip"}}, "ip_allow"},
		{"TCPBadDenyRule", InputConfig{Type: "tcp", RowType: "audit", Port: 5140, IPDeny: []string{"1.2.3.4/40"}}, "ip_deny"},
		{"NegativeCacheSize", InputConfig{Type: "stdin", RowType: "service", Cache: &CacheConfig{Size: -1}}, "cache size"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateInput(0, &tc.cfg)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrConfiguration))
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
