// FILE: logfeeder/src/cmd/logfeeder/status.go
package main

import (
	"context"
	"time"

	"logfeeder/src/internal/service"
)

// Periodically logs counter growth and service status
func statusReporter(ctx context.Context, svc *service.Service, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Safely get stats with recovery
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Error("msg", "Panic in status reporter",
							"component", "status_reporter",
							"panic", r)
					}
				}()

				svc.LogStats()

				stats := svc.GetStats()
				logger.Debug("msg", "Status report",
					"component", "status_reporter",
					"active_inputs", stats["total_inputs"],
					"time", time.Now().Format("15:04:05"))

				if inputs, ok := stats["inputs"].([]map[string]any); ok {
					for _, in := range inputs {
						logInputStatus(in)
					}
				}
			}()
		}
	}
}

// Logs the status of an individual input
func logInputStatus(stats map[string]any) {
	statusFields := []any{
		"msg", "Input status",
		"component", "status_reporter",
		"input", stats["name"],
		"state", stats["state"],
	}

	if lines, ok := stats["lines"].(uint64); ok {
		statusFields = append(statusFields, "lines", lines)
	}
	if dups, ok := stats["duplicates"].(uint64); ok && dups > 0 {
		statusFields = append(statusFields, "duplicates", dups)
	}
	if errs, ok := stats["filter_errors"].(uint64); ok && errs > 0 {
		statusFields = append(statusFields, "filter_errors", errs)
	}
	if outputs, ok := stats["outputs"].([]string); ok {
		statusFields = append(statusFields, "outputs", outputs)
	}
	if e, ok := stats["error"].(string); ok {
		statusFields = append(statusFields, "error", e)
	}

	logger.Debug(statusFields...)
}
