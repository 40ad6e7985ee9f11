package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/handshake/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "handshake.yaml"

// RedisConfig locates the agent's record store.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Port string `yaml:"port" json:"port"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Config represents the structure of handshake.yaml.
type Config struct {
	DelayMS             int         `yaml:"delay_ms" json:"delay_ms"`
	AutoRedirectOnDelay bool        `yaml:"auto_redirect_on_delay" json:"auto_redirect_on_delay"`
	Redis               RedisConfig `yaml:"redis" json:"redis"`
	HTTP                HTTPConfig  `yaml:"http" json:"http"`
	Log                 LogConfig   `yaml:"log" json:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DelayMS: int(domain.DefaultDelay / time.Millisecond),
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "handshake:",
		},
		HTTP: HTTPConfig{Port: "8080"},
		Log:  LogConfig{Level: "info"},
	}
}

// Load reads a configuration file (YAML or JSON) over the defaults.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	if c.DelayMS < 0 {
		return fmt.Errorf("delay_ms must not be negative, got %d", c.DelayMS)
	}
	if c.Redis.Addr == "" {
		return errors.New("redis.addr is required")
	}
	return nil
}

// ToDomain converts the file settings into the core watchdog configuration.
func (c Config) ToDomain() domain.Config {
	return domain.Config{
		Delay:               time.Duration(c.DelayMS) * time.Millisecond,
		AutoRedirectOnDelay: c.AutoRedirectOnDelay,
	}
}
