// FILE: logfeeder/src/cmd/logfeeder/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

func main() {
	if err := parseFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Set config file environment if specified
	if *configFile != "" {
		os.Setenv("LOGFEEDER_CONFIG_FILE", *configFile)
	}

	cfg, err := config.LoadWithCLI(flagArgs())
	if err != nil {
		if *configFile != "" && strings.Contains(err.Error(), "not found") {
			fmt.Fprintf(os.Stderr, "Config file not found: %s\n", *configFile)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg)

	if err := initializeLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer shutdownLogger()

	logger.Info("msg", "LogFeeder starting",
		"version", version.String(),
		"config_file", config.GetConfigPath(),
		"log_output", cfg.Logging.Output)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigHandler := NewSignalHandler(logger)
	defer sigHandler.Stop()

	svc, err := bootstrapService(ctx, cfg)
	if err != nil {
		logger.Error("msg", "Failed to bootstrap service", "error", err)
		shutdownLogger()
		os.Exit(1)
	}

	if enableStatusReporter() {
		go statusReporter(ctx, svc, time.Duration(cfg.Monitor.StatIntervalMS)*time.Millisecond)
	}

	sig := sigHandler.Wait(ctx)
	logger.Info("msg", "Shutdown signal received, starting graceful shutdown...",
		"signal", sig)

	// Inputs get their drain timeout, outputs a little more to flush
	timeout := time.Duration(cfg.Monitor.DrainTimeoutMS)*time.Millisecond + 5*time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		svc.Shutdown(shutdownCtx)
		close(done)
	}()

	select {
	case <-done:
		logger.Info("msg", "Shutdown complete")
	case <-shutdownCtx.Done():
		logger.Error("msg", "Shutdown timeout exceeded - forcing exit")
		shutdownLogger()
		os.Exit(1)
	}
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			// Best effort - can't log the shutdown error
			fmt.Fprintf(os.Stderr, "Logger shutdown error: %v\n", err)
		}
	}
}

func enableStatusReporter() bool {
	// Status reporter can be disabled via environment variable
	return os.Getenv("LOGFEEDER_DISABLE_STATUS_REPORTER") != "1"
}
