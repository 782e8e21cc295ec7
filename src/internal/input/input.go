// FILE: logfeeder/src/internal/input/input.go
package input

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"
	"logfeeder/src/internal/dedup"
	"logfeeder/src/internal/metrics"

	"github.com/lixenwraith/log"
)

// Input drives one source: readiness gate, execution context, record emission
// through dedup and the filter chain, drain and close.
type Input struct {
	cfg    config.InputConfig
	cache  config.CacheSettings
	name   string
	source Source
	chain  Chain
	dedup  *dedup.Cache
	logger *log.Logger

	now          func() time.Time
	drainTimeout time.Duration

	state       atomic.Int32
	initialized bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	execErr error

	closeOnce sync.Once

	// Statistics
	lines        *metrics.Counter
	bytes        *metrics.Counter
	duplicates   *metrics.Counter
	filterErrors *metrics.Counter
}

// Option customizes an Input
type Option func(*Input)

// WithClock replaces the clock used to timestamp records and drive dedup
func WithClock(now func() time.Time) Option {
	return func(in *Input) { in.now = now }
}

// WithDrainTimeout bounds how long Close waits for the execution context
func WithDrainTimeout(d time.Duration) Option {
	return func(in *Input) { in.drainTimeout = d }
}

// New binds a descriptor to its source and chain. cache is the resolved dedup configuration.
func New(cfg config.InputConfig, cache config.CacheSettings, source Source, chain Chain, logger *log.Logger, opts ...Option) *Input {
	in := &Input{
		cfg:          cfg,
		cache:        cache,
		source:       source,
		chain:        chain,
		logger:       logger,
		now:          time.Now,
		drainTimeout: core.DefaultDrainTimeoutMS * time.Millisecond,
		lines:        metrics.NewCounter("lines"),
		bytes:        metrics.NewCounter("bytes"),
		duplicates:   metrics.NewCounter("duplicates"),
		filterErrors: metrics.NewCounter("filter_errors"),
	}
	in.name = cfg.ShortDescription()
	if source != nil && source.ShortDescription() != "" {
		in.name = source.ShortDescription()
	}
	for _, opt := range opts {
		opt(in)
	}
	in.state.Store(int32(StateConfigured))
	return in
}

// Init builds the dedup cache and initializes the chain. A failure is a
// configuration error for this input only.
func (in *Input) Init() error {
	if in.source == nil {
		return core.ConfigError(in.name, errors.New("no source"))
	}
	// Records are never written without a chain
	if in.chain == nil {
		return core.ConfigError(in.name, errors.New("no filter chain"))
	}

	if in.cache.Enabled {
		c, err := dedup.New(dedup.Config{
			KeyField:         in.cache.KeyField,
			Size:             in.cache.Size,
			LastDedupEnabled: in.cache.LastDedupEnabled,
			DedupInterval:    in.cache.DedupInterval,
		})
		if err != nil {
			return core.ConfigError(in.name, err)
		}
		in.dedup = c
	}

	if err := in.chain.Init(); err != nil {
		return core.ConfigError(in.name, err)
	}

	in.initialized = true
	in.logger.Debug("msg", "Input initialized",
		"component", "input",
		"input", in.name,
		"type", in.cfg.Type,
		"rowtype", in.cfg.RowType,
		"cache_enabled", in.cache.Enabled,
		"tail", in.cfg.IsTail())
	return nil
}

// Name returns the short description used in logs
func (in *Input) Name() string {
	return in.name
}

func (in *Input) Config() config.InputConfig {
	return in.cfg
}

func (in *Input) State() State {
	return State(in.state.Load())
}

// IsReady delegates to the source
func (in *Input) IsReady() bool {
	return in.source.IsReady()
}

// Monitor starts the execution context once the source is ready. It returns true
// when the input was started by this call.
func (in *Input) Monitor() bool {
	if !in.initialized || in.State() != StateConfigured {
		return false
	}
	if !in.source.IsReady() {
		return false
	}
	if !in.state.CompareAndSwap(int32(StateConfigured), int32(StateReady)) {
		return false
	}
	in.logger.Info("msg", "Starting input",
		"component", "input",
		"input", in.name)
	in.run()
	return true
}

// Started reports whether an execution context was spawned
func (in *Input) Started() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.done != nil
}

func (in *Input) run() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	in.mu.Lock()
	in.cancel = cancel
	in.done = done
	in.mu.Unlock()

	in.state.CompareAndSwap(int32(StateReady), int32(StateRunning))
	go in.exec(ctx, done)
}

// exec is the execution context. It is not restarted when it exits.
func (in *Input) exec(ctx context.Context, done chan struct{}) {
	defer close(done)

	err := in.startSource(ctx)
	in.chain.Flush()

	switch {
	case err == nil, errors.Is(err, context.Canceled), ctx.Err() != nil && errors.Is(err, ctx.Err()):
		in.state.CompareAndSwap(int32(StateRunning), int32(StateDraining))
		in.logger.Info("msg", "Input exited",
			"component", "input",
			"input", in.name,
			"drained", ctx.Err() != nil)
	default:
		in.mu.Lock()
		in.execErr = err
		in.mu.Unlock()
		in.state.Store(int32(StateFailed))
		in.logger.Error("msg", "Input failed",
			"component", "input",
			"input", in.name,
			"io_error", errors.Is(err, core.ErrIO),
			"error", err)
	}
}

func (in *Input) startSource(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source panic: %v", r)
		}
	}()
	return in.source.Start(ctx, in)
}

// Emit is the single hand-off point for sources. Counters, dedup, chain and
// check-in happen in that order on the caller's goroutine. Record-level failures
// are logged and never returned. Only valid after a successful Init, which guarantees
// a chain.
func (in *Input) Emit(line string, marker core.InputMarker) {
	in.lines.Inc()
	in.bytes.Add(uint64(len(line)))

	if marker.Input == "" {
		marker.Input = in.name
	}
	// Progress is tracked for every read line, suppressed or dropped included
	defer in.source.CheckIn(marker)

	now := in.now()

	if in.dedup != nil {
		if key, ok := in.dedup.Key(line); ok && in.dedup.IsDuplicate(key, now) {
			in.duplicates.Inc()
			return
		}
	}

	entry := &core.LogEntry{
		Time:    now,
		Source:  in.name,
		Type:    in.cfg.Type,
		RowType: in.cfg.RowType,
		Message: line,
		RawSize: int64(len(line)),
	}

	if err := in.apply(entry, marker); err != nil {
		in.filterErrors.Inc()
		in.logger.Error("msg", "Failed to process record",
			"component", "input",
			"input", in.name,
			"line", marker.LineNumber,
			"error", err)
	}
}

func (in *Input) apply(entry *core.LogEntry, marker core.InputMarker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &core.FilterError{Stage: "chain", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return in.chain.Apply(entry, marker)
}

// Drain requests cooperative cancellation of the execution context. An input that
// never started will not be started afterwards.
func (in *Input) Drain() {
	for {
		s := in.State()
		if s == StateDraining || s == StateClosed || s == StateFailed {
			break
		}
		if in.state.CompareAndSwap(int32(s), int32(StateDraining)) {
			in.logger.Info("msg", "Request to drain",
				"component", "input",
				"input", in.name)
			break
		}
	}

	in.mu.Lock()
	cancel := in.cancel
	in.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Flush pushes buffered records down the chain without changing state
func (in *Input) Flush() {
	if in.chain != nil {
		in.chain.Flush()
	}
}

// Done is closed when the execution context has exited. An input that never
// started returns a closed channel.
func (in *Input) Done() <-chan struct{} {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.done == nil {
		c := make(chan struct{})
		close(c)
		return c
	}
	return in.done
}

// Exited reports whether the execution context has exited
func (in *Input) Exited() bool {
	in.mu.Lock()
	done := in.done
	in.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return true
	default:
		return false
	}
}

// Err returns the failure that ended the execution context, if any
func (in *Input) Err() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.execErr
}

// Close drains, waits for the execution context up to the drain timeout, takes a final
// checkpoint, and closes the chain. Collaborator errors are logged and swallowed.
// Calls after the first do nothing.
func (in *Input) Close() {
	in.close(in.drainTimeout)
}

func (in *Input) close(wait time.Duration) {
	in.closeOnce.Do(func() {
		in.logger.Info("msg", "Close called",
			"component", "input",
			"input", in.name)

		in.Drain()

		if !in.waitExit(wait) {
			in.logger.Error("msg", "Input did not exit after drain, execution context leaked",
				"component", "input",
				"input", in.name,
				"waited", wait)
		}

		if in.source != nil {
			in.safely("last check-in", in.source.LastCheckIn)
		}
		if in.chain != nil {
			in.safely("chain close", func() {
				if err := in.chain.Close(); err != nil {
					in.logger.Warn("msg", "Error closing filter chain",
						"component", "input",
						"input", in.name,
						"error", err)
				}
			})
		}

		if in.State() != StateFailed {
			in.state.Store(int32(StateClosed))
		}
	})
}

func (in *Input) waitExit(wait time.Duration) bool {
	select {
	case <-in.Done():
		return true
	default:
	}
	if wait <= 0 {
		return false
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-in.Done():
		return true
	case <-timer.C:
		return false
	}
}

func (in *Input) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			in.logger.Error("msg", "Panic during "+what,
				"component", "input",
				"input", in.name,
				"panic", r)
		}
	}()
	fn()
}

// AddMetrics registers the input's counters followed by the chain's. Callers scope r
// to this input; see Manager.Add.
func (in *Input) AddMetrics(r *metrics.Registry) {
	r.Register(in.lines, in.bytes, in.duplicates, in.filterErrors)
	if in.chain != nil {
		in.chain.AddMetrics(r)
	}
}

// LogStat logs counter growth since the previous report
func (in *Input) LogStat() {
	metrics.LogStat(in.logger, in.lines, "Stat: Lines Read", "input", in.name)
	metrics.LogStat(in.logger, in.bytes, "Stat: Bytes Read", "input", in.name)
	metrics.LogStat(in.logger, in.duplicates, "Stat: Duplicates Suppressed", "input", in.name)
	metrics.LogStat(in.logger, in.filterErrors, "Stat: Filter Errors", "input", in.name)
	if in.chain != nil {
		in.chain.LogStat()
	}
}

func (in *Input) GetStats() map[string]any {
	stats := map[string]any{
		"type":          in.cfg.Type,
		"rowtype":       in.cfg.RowType,
		"state":         in.State().String(),
		"lines":         in.lines.Value(),
		"bytes":         in.bytes.Value(),
		"duplicates":    in.duplicates.Value(),
		"filter_errors": in.filterErrors.Value(),
	}
	if in.dedup != nil {
		stats["cache_keys"] = in.dedup.Len()
	}
	if err := in.Err(); err != nil {
		stats["error"] = err.Error()
	}
	return stats
}
