// FILE: logfeeder/src/internal/sink/redis.go
package sink

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"
	"logfeeder/src/internal/format"

	"github.com/lixenwraith/log"
	"github.com/redis/go-redis/v9"
)

// listClient is the subset of *redis.Client the sink uses
type listClient interface {
	RPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisSink appends formatted records to a redis list. Writes are synchronous so a
// failure reaches the caller and a retry decorator can act on it.
type RedisSink struct {
	name      string
	opts      config.RedisOutputOptions
	client    listClient
	timeout   time.Duration
	formatter format.Formatter
	logger    *log.Logger

	startTime      time.Time
	totalProcessed atomic.Uint64
	totalFailed    atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

func NewRedisSink(name string, opts *config.RedisOutputOptions, logger *log.Logger, formatter format.Formatter) (*RedisSink, error) {
	if opts == nil {
		return nil, fmt.Errorf("redis sink options cannot be nil")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       int(opts.DB),
	})
	return newRedisSink(name, opts, rdb, logger, formatter), nil
}

func newRedisSink(name string, opts *config.RedisOutputOptions, client listClient, logger *log.Logger, formatter format.Formatter) *RedisSink {
	timeout := time.Duration(opts.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	s := &RedisSink{
		name:      name,
		opts:      *opts,
		client:    client,
		timeout:   timeout,
		formatter: formatter,
		logger:    logger,
		startTime: time.Now(),
	}
	s.lastProcessed.Store(time.Time{})
	return s
}

func (s *RedisSink) Name() string {
	return s.name
}

func (s *RedisSink) Write(entry *core.LogEntry, _ string) error {
	formatted, err := s.formatter.Format(entry)
	if err != nil {
		s.totalFailed.Add(1)
		return fmt.Errorf("format: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.RPush(ctx, s.opts.Key, string(bytes.TrimSuffix(formatted, []byte{'\n'}))).Err(); err != nil {
		s.totalFailed.Add(1)
		return fmt.Errorf("rpush %s: %w", s.opts.Key, err)
	}

	s.totalProcessed.Add(1)
	s.lastProcessed.Store(time.Now())
	return nil
}

// Start checks connectivity. An unreachable server is logged, not fatal;
// writes fail until it comes up.
func (s *RedisSink) Start(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Ping(pingCtx).Err(); err != nil {
		s.logger.Warn("msg", "Redis not reachable at start",
			"component", "redis_sink",
			"name", s.name,
			"addr", s.opts.Addr,
			"error", err)
	}

	s.logger.Info("msg", "Redis sink started",
		"component", "redis_sink",
		"name", s.name,
		"addr", s.opts.Addr,
		"key", s.opts.Key)
	return nil
}

func (s *RedisSink) Stop() {
	if err := s.client.Close(); err != nil {
		s.logger.Warn("msg", "Error closing redis client",
			"component", "redis_sink",
			"error", err)
	}
	s.logger.Info("msg", "Redis sink stopped",
		"component", "redis_sink",
		"name", s.name,
		"total_processed", s.totalProcessed.Load())
}

func (s *RedisSink) GetStats() SinkStats {
	lastProc, _ := s.lastProcessed.Load().(time.Time)
	return SinkStats{
		Type:           "redis",
		TotalProcessed: s.totalProcessed.Load(),
		TotalFailed:    s.totalFailed.Load(),
		StartTime:      s.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"addr": s.opts.Addr,
			"key":  s.opts.Key,
			"db":   s.opts.DB,
		},
	}
}
