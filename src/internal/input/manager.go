// FILE: logfeeder/src/internal/input/manager.go
package input

import (
	"context"
	"fmt"
	"sync"
	"time"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/metrics"

	"github.com/lixenwraith/log"
)

// Manager schedules inputs: it starts them once ready, reaps exited ones, and
// drains everything at shutdown.
type Manager struct {
	inputs   []*Input
	registry *metrics.Registry
	scopes   map[string]int
	logger   *log.Logger

	checkInterval time.Duration
	drainTimeout  time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped bool
}

func NewManager(cfg config.MonitorConfig, logger *log.Logger) *Manager {
	return &Manager{
		registry:      metrics.NewRegistry(),
		scopes:        make(map[string]int),
		logger:        logger,
		checkInterval: time.Duration(cfg.CheckIntervalMS) * time.Millisecond,
		drainTimeout:  time.Duration(cfg.DrainTimeoutMS) * time.Millisecond,
	}
}

// Add registers an initialized input and its counters under "input.<name>".
// Inputs sharing a name get "#2", "#3" appended to keep their counters apart. Assembly only.
func (m *Manager) Add(in *Input) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, in)
	in.AddMetrics(m.registry.Scope(m.scopeFor(in.Name())))
}

func (m *Manager) scopeFor(name string) string {
	m.scopes[name]++
	scope := "input." + name
	if n := m.scopes[name]; n > 1 {
		scope = fmt.Sprintf("%s#%d", scope, n)
	}
	return scope
}

func (m *Manager) Inputs() []*Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Input, len(m.inputs))
	copy(out, m.inputs)
	return out
}

// Registry exposes every registered counter for reporters
func (m *Manager) Registry() *metrics.Registry {
	return m.registry
}

// Start runs a monitor pass immediately and then every check interval
func (m *Manager) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()

	m.MonitorOnce()

	interval := m.checkInterval
	if interval <= 0 {
		interval = time.Second
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.MonitorOnce()
			}
		}
	}()

	m.logger.Info("msg", "Input manager started",
		"component", "input_manager",
		"inputs", len(m.Inputs()),
		"check_interval", interval)
}

// MonitorOnce starts ready inputs and closes inputs whose execution context exited
func (m *Manager) MonitorOnce() {
	for _, in := range m.Inputs() {
		switch {
		case !in.Started():
			if in.State() == StateConfigured {
				in.Monitor()
			}
		case in.Exited():
			if s := in.State(); s != StateClosed {
				in.Close()
			}
		}
	}
}

// Shutdown drains every input, waits for their execution contexts up to the drain
// timeout or ctx, then closes all inputs. Inputs that do not exit are reported.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()

	inputs := m.Inputs()
	for _, in := range inputs {
		in.Drain()
	}

	waitCtx, waitCancel := context.WithTimeout(ctx, m.drainTimeout)
	defer waitCancel()

	for _, in := range inputs {
		select {
		case <-in.Done():
		case <-waitCtx.Done():
		}
	}

	for _, in := range inputs {
		if !in.Exited() && in.Started() {
			m.logger.Error("msg", "Input ignored drain request, execution context leaked",
				"component", "input_manager",
				"input", in.Name())
		}
		in.close(0)
	}

	m.logger.Info("msg", "Input manager stopped",
		"component", "input_manager")
}

// LogStats logs every input's counter growth since the previous call
func (m *Manager) LogStats() {
	for _, in := range m.Inputs() {
		in.LogStat()
	}
}

func (m *Manager) GetStats() map[string]any {
	inputs := m.Inputs()
	stats := make(map[string]any, len(inputs))
	for _, in := range inputs {
		stats[in.Name()] = in.GetStats()
	}
	return stats
}
