// FILE: logfeeder/src/cmd/logfeeder/bootstrap.go
package main

import (
	"context"
	"fmt"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/service"
	"logfeeder/src/internal/version"

	"github.com/lixenwraith/log"
)

// bootstrapService assembles the inputs and outputs and starts them
func bootstrapService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	svc, err := service.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	displayInputs(cfg)

	if err := svc.Start(ctx); err != nil {
		svc.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to start service: %w", err)
	}

	logger.Info("msg", "LogFeeder started",
		"version", version.Short(),
		"inputs", len(svc.Pipelines()))
	return svc, nil
}

// initializeLogger sets up the application logger from the logging section
func initializeLogger(cfg *config.LogConfig) error {
	logger = log.NewLogger()

	level, err := parseLogLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	configArgs := []string{fmt.Sprintf("level=%d", level)}

	switch cfg.Output {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")
	case "stdout", "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target="+cfg.Output)
	case "split":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_split_mode=true",
			"stdout_target=split")
	case "file":
		configArgs = append(configArgs, "enable_stdout=false")
		configArgs = append(configArgs, fileLogArgs(cfg)...)
	case "all":
		configArgs = append(configArgs, "enable_stdout=true")
		configArgs = append(configArgs, fileLogArgs(cfg)...)
		configArgs = append(configArgs, consoleTargetArgs(cfg)...)
	default:
		return fmt.Errorf("invalid log output mode: %s", cfg.Output)
	}

	if cfg.Console != nil && cfg.Console.Format != "" {
		configArgs = append(configArgs, fmt.Sprintf("format=%s", cfg.Console.Format))
	}

	return logger.InitWithDefaults(configArgs...)
}

func fileLogArgs(cfg *config.LogConfig) []string {
	if cfg.File == nil {
		return nil
	}
	args := []string{
		fmt.Sprintf("directory=%s", cfg.File.Directory),
		fmt.Sprintf("name=%s", cfg.File.Name),
		fmt.Sprintf("max_size_mb=%d", cfg.File.MaxSizeMB),
		fmt.Sprintf("max_total_size_mb=%d", cfg.File.MaxTotalSizeMB),
	}
	if cfg.File.RetentionHours > 0 {
		args = append(args, fmt.Sprintf("retention_period_hrs=%.1f", cfg.File.RetentionHours))
	}
	return args
}

// consoleTargetArgs picks the console stream for "all" mode, stderr unless configured
func consoleTargetArgs(cfg *config.LogConfig) []string {
	target := "stderr"
	if cfg.Console != nil && cfg.Console.Target != "" {
		target = cfg.Console.Target
	}
	if target == "split" {
		return []string{"stdout_split_mode=true", "stdout_target=split"}
	}
	return []string{"stdout_target=" + target}
}

// displayInputs logs what each configured input will read from
func displayInputs(cfg *config.Config) {
	for i, in := range cfg.Inputs {
		fields := []any{"msg", "Input configured",
			"component", "main",
			"input_index", i,
			"input", in.ShortDescription(),
			"rowtype", in.RowType,
			"enabled", in.IsEnabled(),
		}
		switch in.Type {
		case config.InputTypeFile:
			fields = append(fields, "path", in.Path, "tail", in.IsTail())
		case config.InputTypeTCP:
			fields = append(fields, "listen", fmt.Sprintf("%s:%d", in.Host, in.Port))
		}
		logger.Info(fields...)
	}

	for i, out := range cfg.Outputs {
		var rowTypes []string
		if out.Conditions != nil && out.Conditions.Fields != nil {
			rowTypes = out.Conditions.Fields.RowType
		}
		logger.Info("msg", "Output configured",
			"component", "main",
			"output_index", i,
			"output", out.DisplayName(),
			"type", out.Type,
			"rowtypes", rowTypes)
	}

	if len(cfg.Filters) > 0 {
		logger.Info("msg", "Filters configured",
			"component", "main",
			"filter_count", len(cfg.Filters))
	}
}
