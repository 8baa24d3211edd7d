// Package config handles configuration loading and validation for streamprobe.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is left at its zero value.
const (
	DefaultLogLevel     = "info"
	DefaultAwaitTimeout = 5 * time.Second
)

// Config holds harness-wide defaults for recording consumers.
type Config struct {
	// LogLevel is one of debug, info, error, none.
	LogLevel string `yaml:"log_level" env:"STREAMPROBE_LOG_LEVEL"`
	// LogFile is written instead of stdout when set.
	LogFile string `yaml:"log_file" env:"STREAMPROBE_LOG_FILE"`
	// AwaitTimeout bounds AwaitTerminalEvent when the caller passes no timeout.
	AwaitTimeout time.Duration `yaml:"await_timeout" env:"STREAMPROBE_AWAIT_TIMEOUT"`
	// DemandLimit caps processed values per subscriber; 0 means unlimited.
	DemandLimit int64 `yaml:"demand_limit" env:"STREAMPROBE_DEMAND_LIMIT"`
	// DestructiveDispose makes Subscriber.Dispose clear recorded history.
	DestructiveDispose bool `yaml:"destructive_dispose" env:"STREAMPROBE_DESTRUCTIVE_DISPOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:     DefaultLogLevel,
		AwaitTimeout: DefaultAwaitTimeout,
	}
}

// Load reads configuration from the given YAML file, then applies overrides
// from envFile (dotenv format) and finally from the process environment.
// Empty or missing paths are skipped, so Load("", "") returns defaults plus
// environment overrides.
func Load(configPath, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	environ, err := environment(envFile)
	if err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// environment merges the dotenv file with the process environment. Process
// variables win, matching godotenv.Load semantics without mutating os.Environ.
func environment(envFile string) (map[string]string, error) {
	out := map[string]string{}

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			vals, err := godotenv.Read(envFile)
			if err != nil {
				return nil, fmt.Errorf("read env file: %w", err)
			}
			for k, v := range vals {
				out[k] = v
			}
		}
	}

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			out[k] = v
		}
	}

	return out, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.AwaitTimeout == 0 {
		c.AwaitTimeout = defaults.AwaitTimeout
	}
}
