// Package config loads the pricing-service configuration from an
// optional YAML file, falling back to defaults when the file is absent.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the HTTP server settings. Timeouts are in seconds.
type Config struct {
	Addr                string `yaml:"addr"`
	ReadTimeoutSecs     int    `yaml:"read_timeout_secs"`
	WriteTimeoutSecs    int    `yaml:"write_timeout_secs"`
	IdleTimeoutSecs     int    `yaml:"idle_timeout_secs"`
	ShutdownTimeoutSecs int    `yaml:"shutdown_timeout_secs"`
}

func defaultConfig() *Config {
	return &Config{
		Addr:                ":8080",
		ReadTimeoutSecs:     10,
		WriteTimeoutSecs:    15,
		IdleTimeoutSecs:     60,
		ShutdownTimeoutSecs: 15,
	}
}

// Load reads the config from path. Returns the default config when the
// file doesn't exist; keys absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return cfg, nil
}

func (c *Config) ReadTimeout() time.Duration  { return time.Duration(c.ReadTimeoutSecs) * time.Second }
func (c *Config) WriteTimeout() time.Duration { return time.Duration(c.WriteTimeoutSecs) * time.Second }
func (c *Config) IdleTimeout() time.Duration  { return time.Duration(c.IdleTimeoutSecs) * time.Second }
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSecs) * time.Second
}
