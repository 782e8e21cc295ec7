// FILE: logfeeder/src/internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"logfeeder/src/internal/core"

	lconfig "github.com/lixenwraith/config"
)

func defaults() *Config {
	return &Config{
		Logging: DefaultLogConfig(),
		Monitor: MonitorConfig{
			CheckIntervalMS: core.DefaultCheckIntervalMS,
			StatIntervalMS:  core.DefaultStatIntervalMS,
			DrainTimeoutMS:  core.DefaultDrainTimeoutMS,
		},
		Checkpoint: CheckpointConfig{
			Directory:  "./checkpoints",
			IntervalMS: core.DefaultCheckpointIntervalMS,
		},
		Cache: CacheConfig{
			KeyField:        core.DefaultCacheKeyField,
			Size:            core.DefaultCacheSize,
			DedupIntervalMS: core.DefaultCacheDedupIntervalMS,
		},
	}
}

// LoadWithCLI loads configuration layered as CLI > env > file > defaults
func LoadWithCLI(cliArgs []string) (*Config, error) {
	configPath := GetConfigPath()

	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix("LOGFEEDER_").
		WithFile(configPath).
		WithArgs(cliArgs).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	finalConfig := &Config{}
	if err := cfg.Scan(finalConfig, ""); err != nil {
		return nil, fmt.Errorf("failed to scan config: %w", err)
	}

	return finalConfig, validateConfig(finalConfig)
}

func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ToUpper(env)
	env = "LOGFEEDER_" + env
	return env
}

// GetConfigPath resolves the config file location from the environment
func GetConfigPath() string {
	if configFile := os.Getenv("LOGFEEDER_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("LOGFEEDER_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("LOGFEEDER_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "logfeeder.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "logfeeder.toml")
	}

	return "logfeeder.toml"
}
