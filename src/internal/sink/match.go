// FILE: logfeeder/src/internal/sink/match.go
package sink

import (
	"sort"

	"logfeeder/src/internal/config"
)

// MatchRule is the set of input row types a sink accepts
type MatchRule struct {
	rowTypes map[string]struct{}
}

// NewMatchRule builds the rule from an output's conditions. Missing conditions
// or an empty rowtype list yield nil, which accepts nothing.
func NewMatchRule(c *config.Conditions) *MatchRule {
	if c == nil || c.Fields == nil || len(c.Fields.RowType) == 0 {
		return nil
	}
	r := &MatchRule{rowTypes: make(map[string]struct{}, len(c.Fields.RowType))}
	for _, rt := range c.Fields.RowType {
		r.rowTypes[rt] = struct{}{}
	}
	return r
}

// Accepts reports whether an input tagged rowType binds to the sink
func (r *MatchRule) Accepts(rowType string) bool {
	if r == nil {
		return false
	}
	_, ok := r.rowTypes[rowType]
	return ok
}

func (r *MatchRule) RowTypes() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.rowTypes))
	for rt := range r.rowTypes {
		out = append(out, rt)
	}
	sort.Strings(out)
	return out
}
