// Package config loads deepwork settings from a YAML file, a .env file and
// the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvBackendURL = "DEEPWORK_BACKEND_URL"
	EnvDBPath     = "DEEPWORK_DB"
	EnvListenAddr = "DEEPWORK_ADDR"
)

// MaxMinutes caps countdown lengths; the backend rejects sessions longer
// than a day.
const MaxMinutes = 24 * 60

type Config struct {
	BackendURL     string `yaml:"backend_url"`
	DefaultMinutes int    `yaml:"default_minutes"`
	Presets        []int  `yaml:"presets"`
	RequestTimeout int    `yaml:"request_timeout"` // seconds
	LogFile        string `yaml:"log_file"`
	DBPath         string `yaml:"db_path"`
	ListenAddr     string `yaml:"listen_addr"`
}

func Default() Config {
	return Config{
		BackendURL:     "http://localhost:8080",
		DefaultMinutes: 2,
		Presets:        []int{2, 5, 25, 50},
		RequestTimeout: 10,
		ListenAddr:     ":8080",
	}
}

// DefaultPath returns ~/.config/deepwork/config.yaml
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "deepwork", "config.yaml"), nil
}

// Load reads the YAML file at path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides file values with DEEPWORK_* variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBackendURL); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.ListenAddr = v
	}
}

func (c Config) Validate() error {
	if c.DefaultMinutes <= 0 || c.DefaultMinutes > MaxMinutes {
		return fmt.Errorf("default_minutes must be between 1 and %d, got %d", MaxMinutes, c.DefaultMinutes)
	}
	if len(c.Presets) == 0 {
		return errors.New("presets must not be empty")
	}
	for _, p := range c.Presets {
		if p <= 0 || p > MaxMinutes {
			return fmt.Errorf("presets must be between 1 and %d, got %d", MaxMinutes, p)
		}
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %d", c.RequestTimeout)
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("backend_url must be an absolute URL, got %q", c.BackendURL)
	}
	return nil
}

func (c Config) DefaultSeconds() int { return c.DefaultMinutes * 60 }

func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}
