// FILE: logfeeder/src/internal/metrics/counter.go
package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/log"
)

// Counter is a named, monotonically increasing count. Safe for concurrent
// increments by one writer and reads by any number of reporters.
type Counter struct {
	name  string
	value atomic.Uint64

	// Value at the time of the previous stat line
	lastLogged atomic.Uint64
}

// NewCounter creates a counter with the given metric name
func NewCounter(name string) *Counter {
	return &Counter{name: name}
}

func (c *Counter) Name() string {
	return c.name
}

func (c *Counter) Inc() {
	c.value.Add(1)
}

func (c *Counter) Add(n uint64) {
	c.value.Add(n)
}

func (c *Counter) Value() uint64 {
	return c.value.Load()
}

// Registry collects counters in registration order for an external reporter.
// A scoped registry shares storage with its parent and prefixes the names it registers.
type Registry struct {
	prefix string
	store  *registryStore
}

type registryStore struct {
	mu      sync.RWMutex
	entries []registryEntry
}

type registryEntry struct {
	name    string
	counter *Counter
}

func NewRegistry() *Registry {
	return &Registry{store: &registryStore{}}
}

// Scope returns a view registering counters as "<prefix>.<scope>.<name>"
func (r *Registry) Scope(scope string) *Registry {
	return &Registry{prefix: r.qualify(scope), store: r.store}
}

// Prefix returns the scope prefix, empty for a root registry
func (r *Registry) Prefix() string {
	return r.prefix
}

func (r *Registry) qualify(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + "." + name
}

// Register appends counters to the registry. Nil counters are skipped.
func (r *Registry) Register(counters ...*Counter) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range counters {
		if c != nil {
			r.store.entries = append(r.store.entries, registryEntry{name: r.qualify(c.name), counter: c})
		}
	}
}

// Counters returns the registered counters in registration order, across all scopes
func (r *Registry) Counters() []*Counter {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*Counter, len(r.store.entries))
	for i, e := range r.store.entries {
		out[i] = e.counter
	}
	return out
}

// Names returns the qualified names in registration order
func (r *Registry) Names() []string {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]string, len(r.store.entries))
	for i, e := range r.store.entries {
		out[i] = e.name
	}
	return out
}

// Snapshot returns the current value of every registered counter keyed by qualified name.
// Counters registered under the same qualified name are summed.
func (r *Registry) Snapshot() map[string]uint64 {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	snap := make(map[string]uint64, len(r.store.entries))
	for _, e := range r.store.entries {
		snap[e.name] += e.counter.Value()
	}
	return snap
}

// LogStat logs the growth of a counter since its previous stat line along with the running total.
// Nothing is logged when the counter has not moved.
func LogStat(logger *log.Logger, c *Counter, title string, kv ...any) {
	if c == nil || logger == nil {
		return
	}
	current := c.Value()
	previous := c.lastLogged.Swap(current)
	if current == previous {
		return
	}

	fields := []any{"msg", title,
		"component", "metrics",
		"metric", c.name,
		"total", current,
		"since_last", current - previous,
	}
	logger.Info(append(fields, kv...)...)
}
