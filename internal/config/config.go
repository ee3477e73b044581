// ============================================================================
// Corosched Config - YAML Configuration Loading
// ============================================================================
//
// Package: internal/config
// File: config.go
// Purpose: Load scheduler configuration from a YAML file and fill defaults
//
// Configuration Sections:
//   scheduler: Worker pool sizing
//   metrics:   Prometheus HTTP endpoint
//   admin:     gRPC admin/introspection endpoint
//
// Defaults:
//   Every field has a sensible zero-config default, filled in by Load
//   after YAML unmarshaling so a missing or partial config file still
//   produces a runnable configuration.
//
// ============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/beaversched/corosched/pkg/coro"
)

// Config is the complete on-disk scheduler configuration.
type Config struct {
	Scheduler struct {
		// WorkerCount is the fixed size of the worker-goroutine pool.
		// Zero means "auto-detect from CPU affinity" (see coro.DetectWorkerCount).
		WorkerCount int `yaml:"worker_count"`
	} `yaml:"scheduler"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`

	Admin struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"admin"`
}

const (
	defaultMetricsAddr = ":9090"
	defaultAdminAddr   = ":7070"
)

// Default returns a Config populated entirely with defaults, equivalent
// to loading an empty file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses the YAML config file at path, filling in any
// field left unset with its default value. A missing file is not an
// error: Default() is returned instead, matching the zero-config
// startup path documented for the corosched CLI.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Scheduler.WorkerCount <= 0 {
		cfg.Scheduler.WorkerCount = coro.DetectWorkerCount()
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = defaultMetricsAddr
	}
	if cfg.Admin.Addr == "" {
		cfg.Admin.Addr = defaultAdminAddr
	}
}
