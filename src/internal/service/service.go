// FILE: logfeeder/src/internal/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"logfeeder/src/internal/checkpoint"
	"logfeeder/src/internal/config"
	"logfeeder/src/internal/input"
	"logfeeder/src/internal/sink"

	"github.com/lixenwraith/log"
)

var errNoInputs = errors.New("no input could be assembled")

// Service owns the shared outputs and every assembled input pipeline.
type Service struct {
	cfg    *config.Config
	sinks  *sink.Manager
	inputs *input.Manager
	store  checkpoint.Store
	logger *log.Logger

	pipelines []*Pipeline

	mu       sync.Mutex
	started  bool
	shutdown bool
}

// Option customizes assembly
type Option func(*Service)

// WithCheckpointStore replaces the file store built from the checkpoint section
func WithCheckpointStore(store checkpoint.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithSinkManager supplies prebuilt outputs instead of building them from the outputs section
func WithSinkManager(m *sink.Manager) Option {
	return func(s *Service) { s.sinks = m }
}

// New assembles outputs once, then each input. An input that fails assembly is logged
// and skipped. Output and checkpoint failures abort.
func New(cfg *config.Config, logger *log.Logger, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:    cfg,
		inputs: input.NewManager(cfg.Monitor, logger),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil && cfg.Checkpoint.Directory != "" {
		store, err := checkpoint.NewFileStore(cfg.Checkpoint.Directory)
		if err != nil {
			return nil, err
		}
		s.store = store
		logger.Info("msg", "Checkpoint store ready",
			"component", "service",
			"directory", store.Dir())
	}

	if s.sinks == nil {
		sinks, err := sink.NewManagerFromConfig(cfg.Outputs, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create outputs: %w", err)
		}
		s.sinks = sinks
	}

	for i := range cfg.Inputs {
		ic := &cfg.Inputs[i]
		if !ic.IsEnabled() {
			logger.Info("msg", "Input disabled, skipping",
				"component", "service",
				"input", ic.ShortDescription())
			continue
		}

		p, err := s.newPipeline(i, ic)
		if err != nil {
			logger.Error("msg", "Failed to assemble input, skipping",
				"component", "service",
				"input", ic.ShortDescription(),
				"error", err)
			continue
		}

		s.inputs.Add(p.Input)
		s.pipelines = append(s.pipelines, p)
	}

	if len(s.pipelines) == 0 {
		s.sinks.Stop()
		return nil, errNoInputs
	}

	logger.Info("msg", "Service assembled",
		"component", "service",
		"inputs", len(s.pipelines),
		"configured_inputs", len(cfg.Inputs),
		"outputs", len(cfg.Outputs))
	return s, nil
}

// Start starts the outputs, then the input monitor
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("service already started")
	}

	if err := s.sinks.Start(ctx); err != nil {
		return err
	}
	s.inputs.Start(ctx)
	s.started = true
	return nil
}

// Shutdown drains and closes the inputs, then stops the outputs so records flushed
// during drain still reach them
func (s *Service) Shutdown(ctx context.Context) {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return
	}
	s.shutdown = true
	s.mu.Unlock()

	s.logger.Info("msg", "Service shutdown initiated", "component", "service")

	s.inputs.Shutdown(ctx)
	s.sinks.Stop()

	s.logger.Info("msg", "Service shutdown complete", "component", "service")
}

// Pipelines returns the assembled inputs in configuration order
func (s *Service) Pipelines() []*Pipeline {
	return s.pipelines
}

// Inputs exposes the input scheduler
func (s *Service) Inputs() *input.Manager {
	return s.inputs
}

// LogStats logs the counter growth of every input, its filters and its outputs
func (s *Service) LogStats() {
	s.inputs.LogStats()
}

// GetStats returns statistics for all inputs and outputs.
func (s *Service) GetStats() map[string]any {
	inputs := make([]map[string]any, 0, len(s.pipelines))
	for _, p := range s.pipelines {
		st := p.GetStats()
		st["name"] = p.Input.Name()
		inputs = append(inputs, st)
	}

	return map[string]any{
		"inputs":       inputs,
		"total_inputs": len(s.pipelines),
		"outputs":      s.sinks.GetStats(),
		"counters":     s.inputs.Registry().Snapshot(),
	}
}
