// FILE: logfeeder/src/internal/config/input.go
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"logfeeder/src/internal/core"
	"logfeeder/src/internal/limit"

	lconfig "github.com/lixenwraith/config"
)

const (
	InputTypeFile  = "file"
	InputTypeStdin = "stdin"
	InputTypeTCP   = "tcp"
)

// InputConfig is the declarative descriptor of one input
type InputConfig struct {
	// Optional display name, defaults to type and path
	Name string `toml:"name"`

	// Input type: "file", "stdin", "tcp"
	Type string `toml:"type"`

	// Row-type tag used to select outputs
	RowType string `toml:"rowtype"`

	Enabled         *bool `toml:"enabled"`
	Tail            *bool `toml:"tail"`
	GenEventMD5     *bool `toml:"gen_event_md5"`
	UseEventMD5AsID *bool `toml:"use_event_md5_as_id"`

	// Per-input dedup overrides
	Cache *CacheConfig `toml:"cache"`

	// File input
	Path           string `toml:"path"`
	PollIntervalMS int64  `toml:"poll_interval_ms"`
	// Verify a checkpoint against a hash of the file head before resuming
	Checksum *bool `toml:"checksum"`

	// TCP input
	Host string `toml:"host"`
	Port int64  `toml:"port"`

	// TCP access rules, CIDR or plain IP. Deny wins over allow.
	IPAllow []string `toml:"ip_allow"`
	IPDeny  []string `toml:"ip_deny"`
}

// CacheConfig holds dedup cache settings. Unset fields fall back to the global section, then to defaults.
type CacheConfig struct {
	Enabled          *bool  `toml:"enabled"`
	KeyField         string `toml:"key_field"`
	Size             int64  `toml:"size"`
	LastDedupEnabled *bool  `toml:"last_dedup_enabled"`
	DedupIntervalMS  int64  `toml:"dedup_interval_ms"`
}

// CacheSettings is the resolved dedup configuration of an input
type CacheSettings struct {
	Enabled          bool
	KeyField         string
	Size             int
	LastDedupEnabled bool
	DedupInterval    time.Duration
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// IsEnabled is true unless explicitly disabled
func (c *InputConfig) IsEnabled() bool {
	return boolOr(c.Enabled, true)
}

func (c *InputConfig) IsTail() bool {
	return boolOr(c.Tail, core.DefaultTail)
}

func (c *InputConfig) IsChecksum() bool {
	return boolOr(c.Checksum, core.DefaultChecksum)
}

func (c *InputConfig) IsGenEventMD5() bool {
	return boolOr(c.GenEventMD5, core.DefaultGenEventMD5)
}

func (c *InputConfig) IsUseEventMD5AsID() bool {
	return boolOr(c.UseEventMD5AsID, core.DefaultUseEventMD5AsID)
}

// ShortDescription names the input for logs and execution context naming
func (c *InputConfig) ShortDescription() string {
	if c.Name != "" {
		return c.Name
	}
	switch c.Type {
	case InputTypeFile:
		if c.Path != "" {
			return c.Type + "=" + filepath.Base(c.Path)
		}
	case InputTypeTCP:
		return fmt.Sprintf("%s=%s:%d", c.Type, c.Host, c.Port)
	}
	return c.Type
}

// ResolveCache merges the input's cache overrides over the global section and built-in defaults
func (c *InputConfig) ResolveCache(global CacheConfig) CacheSettings {
	s := CacheSettings{
		Enabled:          boolOr(global.Enabled, core.DefaultCacheEnabled),
		KeyField:         core.DefaultCacheKeyField,
		Size:             core.DefaultCacheSize,
		LastDedupEnabled: boolOr(global.LastDedupEnabled, core.DefaultCacheLastDedupEnabled),
		DedupInterval:    core.DefaultCacheDedupIntervalMS * time.Millisecond,
	}
	apply := func(cc *CacheConfig) {
		if cc == nil {
			return
		}
		if cc.Enabled != nil {
			s.Enabled = *cc.Enabled
		}
		if cc.KeyField != "" {
			s.KeyField = cc.KeyField
		}
		if cc.Size > 0 {
			s.Size = int(cc.Size)
		}
		if cc.LastDedupEnabled != nil {
			s.LastDedupEnabled = *cc.LastDedupEnabled
		}
		if cc.DedupIntervalMS > 0 {
			s.DedupInterval = time.Duration(cc.DedupIntervalMS) * time.Millisecond
		}
	}
	apply(&global)
	apply(c.Cache)
	return s
}

// ValidateInput checks one input descriptor. Failures wrap core.ErrConfiguration and only
// disqualify that input.
func ValidateInput(index int, c *InputConfig) error {
	name := fmt.Sprintf("input[%d]", index)

	if err := lconfig.NonEmpty(c.Type); err != nil {
		return core.ConfigError(name, fmt.Errorf("missing type"))
	}
	if err := lconfig.NonEmpty(c.RowType); err != nil {
		return core.ConfigError(name, fmt.Errorf("missing rowtype"))
	}

	switch c.Type {
	case InputTypeFile:
		if err := lconfig.NonEmpty(c.Path); err != nil {
			return core.ConfigError(name, fmt.Errorf("file input requires 'path'"))
		}
		if c.PollIntervalMS < 0 {
			return core.ConfigError(name, fmt.Errorf("poll_interval_ms must not be negative"))
		}
	case InputTypeStdin:
	case InputTypeTCP:
		if err := lconfig.Port(c.Port); err != nil {
			return core.ConfigError(name, err)
		}
		if err := limit.ValidateRules(c.IPAllow); err != nil {
			return core.ConfigError(name, fmt.Errorf("ip_allow: %w", err))
		}
		if err := limit.ValidateRules(c.IPDeny); err != nil {
			return core.ConfigError(name, fmt.Errorf("ip_deny: %w", err))
		}
	default:
		return core.ConfigError(name, fmt.Errorf("unknown input type '%s'", c.Type))
	}

	if c.Cache != nil {
		if err := validateCache(c.Cache); err != nil {
			return core.ConfigError(name, err)
		}
	}
	return nil
}

func validateCache(c *CacheConfig) error {
	if c.Size < 0 {
		return fmt.Errorf("cache size must be positive: %d", c.Size)
	}
	if c.DedupIntervalMS < 0 {
		return fmt.Errorf("cache dedup_interval_ms must not be negative: %d", c.DedupIntervalMS)
	}
	return nil
}
