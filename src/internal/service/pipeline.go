// FILE: logfeeder/src/internal/service/pipeline.go
package service

import (
	"fmt"
	"time"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/filter"
	"logfeeder/src/internal/input"
	"logfeeder/src/internal/sink"
	"logfeeder/src/internal/source"
)

// Pipeline is one assembled input: source -> input engine -> filter chain -> dispatcher
type Pipeline struct {
	Input      *input.Input
	Source     input.Source
	Chain      *filter.Chain
	Dispatcher *sink.Dispatcher
}

// newPipeline assembles and initializes one input. Any error disqualifies only this input.
func (s *Service) newPipeline(index int, cfg *config.InputConfig) (*Pipeline, error) {
	if err := config.ValidateInput(index, cfg); err != nil {
		return nil, err
	}

	cpInterval := time.Duration(s.cfg.Checkpoint.IntervalMS) * time.Millisecond
	src, err := source.New(*cfg, s.store, cpInterval, s.logger)
	if err != nil {
		return nil, fmt.Errorf("input[%d]: failed to create source: %w", index, err)
	}

	sinks := s.sinks.Select(cfg.RowType)
	if len(sinks) == 0 {
		s.logger.Warn("msg", "No output accepts this rowtype, records will be discarded",
			"component", "service",
			"input", cfg.ShortDescription(),
			"rowtype", cfg.RowType)
	}
	dispatcher := sink.NewDispatcher(sinks, cfg.RowType, sink.DispatchOptions{
		GenEventMD5:     cfg.IsGenEventMD5(),
		UseEventMD5AsID: cfg.IsUseEventMD5AsID(),
	}, s.logger)

	chain, err := filter.BuildChain(s.cfg.Filters, cfg.Type, dispatcher, s.logger)
	if err != nil {
		return nil, fmt.Errorf("input[%d]: failed to create filter chain: %w", index, err)
	}

	in := input.New(*cfg, cfg.ResolveCache(s.cfg.Cache), src, chain, s.logger,
		input.WithDrainTimeout(time.Duration(s.cfg.Monitor.DrainTimeoutMS)*time.Millisecond))
	if err := in.Init(); err != nil {
		return nil, fmt.Errorf("input[%d]: %w", index, err)
	}

	outputs := make([]string, len(sinks))
	for i, sk := range sinks {
		outputs[i] = sk.Name()
	}
	s.logger.Info("msg", "Input assembled",
		"component", "service",
		"input", in.Name(),
		"type", cfg.Type,
		"rowtype", cfg.RowType,
		"filters", chain.Len(),
		"outputs", outputs)

	return &Pipeline{
		Input:      in,
		Source:     src,
		Chain:      chain,
		Dispatcher: dispatcher,
	}, nil
}

// GetStats returns the input, chain and source view of this pipeline
func (p *Pipeline) GetStats() map[string]any {
	stats := p.Input.GetStats()
	stats["filter_chain"] = p.Chain.GetStats()

	outputs := make([]string, 0, len(p.Dispatcher.Sinks()))
	for _, sk := range p.Dispatcher.Sinks() {
		outputs = append(outputs, sk.Name())
	}
	stats["outputs"] = outputs

	if sp, ok := p.Source.(interface{ GetStats() source.Stats }); ok {
		ss := sp.GetStats()
		stats["source"] = map[string]any{
			"type":            ss.Type,
			"total_lines":     ss.TotalLines,
			"start_time":      ss.StartTime,
			"last_entry_time": ss.LastEntryTime,
			"details":         ss.Details,
		}
	}
	return stats
}
