// FILE: logfeeder/src/internal/config/filter.go
package config

import (
	"fmt"
	"regexp"
)

const (
	FilterTypeGrep     = "grep"
	FilterTypeJSON     = "json"
	FilterTypeThrottle = "throttle"

	FilterActionInclude = "include"
	FilterActionExclude = "exclude"

	FilterLogicOr  = "or"
	FilterLogicAnd = "and"
)

// FilterConfig describes one filter stage. Stages apply to inputs whose type
// appears in conditions.fields.type, in configuration order.
type FilterConfig struct {
	Type       string      `toml:"type"`
	Conditions *Conditions `toml:"conditions"`

	// grep: "include" or "exclude"
	Action   string   `toml:"action"`
	Logic    string   `toml:"logic"`
	Patterns []string `toml:"patterns"`

	// json
	MessageField string `toml:"message_field"`
	LevelField   string `toml:"level_field"`
	Lenient      bool   `toml:"lenient"`

	// throttle
	RatePerSec float64 `toml:"rate_per_sec"`
	Burst      int64   `toml:"burst"`
}

// AppliesTo reports whether the stage belongs in the chain of an input of the given type
func (f *FilterConfig) AppliesTo(inputType string) bool {
	if f.Conditions == nil || f.Conditions.Fields == nil {
		return false
	}
	for _, t := range f.Conditions.Fields.Type {
		if t == inputType {
			return true
		}
	}
	return false
}

func validateFilter(index int, cfg *FilterConfig) error {
	if cfg.Conditions == nil || cfg.Conditions.Fields == nil || len(cfg.Conditions.Fields.Type) == 0 {
		return fmt.Errorf("filter[%d]: missing conditions.fields.type", index)
	}

	switch cfg.Type {
	case FilterTypeGrep:
		switch cfg.Action {
		case FilterActionInclude, FilterActionExclude, "":
		default:
			return fmt.Errorf("filter[%d]: invalid action '%s' (must be 'include' or 'exclude')",
				index, cfg.Action)
		}

		switch cfg.Logic {
		case FilterLogicOr, FilterLogicAnd, "":
		default:
			return fmt.Errorf("filter[%d]: invalid logic '%s' (must be 'or' or 'and')",
				index, cfg.Logic)
		}

		for i, pattern := range cfg.Patterns {
			if _, err := regexp.Compile(pattern); err != nil {
				return fmt.Errorf("filter[%d] pattern[%d] '%s': invalid regex: %w",
					index, i, pattern, err)
			}
		}

	case FilterTypeJSON:

	case FilterTypeThrottle:
		if cfg.RatePerSec <= 0 {
			return fmt.Errorf("filter[%d]: rate_per_sec must be positive", index)
		}
		if cfg.Burst < 0 {
			return fmt.Errorf("filter[%d]: burst must not be negative", index)
		}

	default:
		return fmt.Errorf("filter[%d]: unknown type '%s'", index, cfg.Type)
	}

	return nil
}
