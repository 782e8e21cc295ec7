// FILE: logfeeder/src/internal/dedup/cache.go
package dedup

import (
	"fmt"
	"time"

	"logfeeder/src/internal/core"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/tidwall/gjson"
)

// Config holds the resolved dedup settings of one input
type Config struct {
	KeyField         string
	Size             int
	LastDedupEnabled bool
	DedupInterval    time.Duration
}

type cacheEntry struct {
	lastSeen time.Time
	hits     uint64
}

// Cache suppresses repeated records of a single input. Memory is bounded by Size keys,
// evicted least-recently-touched first. Not safe for concurrent use: an input's cache
// is only touched from that input's execution context.
type Cache struct {
	cfg Config
	lru *simplelru.LRU[string, *cacheEntry]

	// Most recent key, used by the consecutive-repeat policy
	lastKey string
	hasLast bool
}

// New creates a cache from resolved settings
func New(cfg Config) (*Cache, error) {
	if cfg.Size < 1 {
		return nil, fmt.Errorf("cache size must be positive: %d", cfg.Size)
	}
	if cfg.DedupInterval < 0 {
		return nil, fmt.Errorf("dedup interval must not be negative: %s", cfg.DedupInterval)
	}
	if cfg.KeyField == "" {
		cfg.KeyField = core.DefaultCacheKeyField
	}

	lru, err := simplelru.NewLRU[string, *cacheEntry](cfg.Size, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru: %w", err)
	}

	return &Cache{cfg: cfg, lru: lru}, nil
}

// Key extracts the dedup key from a raw line. The default key field is the whole line;
// any other field is looked up in the line parsed as JSON. A missing field yields ok=false
// and the line must never be treated as a duplicate.
func (c *Cache) Key(line string) (key string, ok bool) {
	if c.cfg.KeyField == core.DefaultCacheKeyField {
		return line, line != ""
	}
	if !gjson.Valid(line) {
		return "", false
	}
	r := gjson.Get(line, c.cfg.KeyField)
	if !r.Exists() {
		return "", false
	}
	return r.String(), true
}

// IsDuplicate records an occurrence of key at time now and reports whether it must be suppressed.
func (c *Cache) IsDuplicate(key string, now time.Time) bool {
	if c.cfg.LastDedupEnabled {
		return c.checkConsecutive(key, now)
	}
	return c.checkInterval(key, now)
}

// Suppresses a key seen again within the interval of its last accepted occurrence
func (c *Cache) checkInterval(key string, now time.Time) bool {
	e, ok := c.lru.Get(key)
	if !ok {
		c.lru.Add(key, &cacheEntry{lastSeen: now, hits: 1})
		return false
	}

	e.hits++
	elapsed := now.Sub(e.lastSeen)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	if elapsed < c.cfg.DedupInterval {
		return true
	}

	e.lastSeen = now
	return false
}

// Suppresses only an immediate repeat of the previous key, regardless of elapsed time
func (c *Cache) checkConsecutive(key string, now time.Time) bool {
	duplicate := c.hasLast && c.lastKey == key
	c.lastKey = key
	c.hasLast = true

	if e, ok := c.lru.Get(key); ok {
		e.hits++
		e.lastSeen = now
	} else {
		c.lru.Add(key, &cacheEntry{lastSeen: now, hits: 1})
	}
	return duplicate
}

// Len returns the number of resident keys
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Keys returns resident keys from least to most recently touched
func (c *Cache) Keys() []string {
	return c.lru.Keys()
}

// Hits returns the number of occurrences recorded for key without touching it
func (c *Cache) Hits(key string) uint64 {
	if e, ok := c.lru.Peek(key); ok {
		return e.hits
	}
	return 0
}

func (c *Cache) Config() Config {
	return c.cfg
}
