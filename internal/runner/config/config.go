// Package config loads the YAML settings shared by the runner binaries and
// assembles the execution service from them.
package config

import (
	"fmt"
	"os"
	"time"

	"coderun/internal/runner/language"
	"coderun/internal/runner/observer"
	"coderun/internal/runner/process"
	"coderun/internal/runner/service"
	"coderun/internal/runner/workspace"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultVersionTimeout   = 5 * time.Second
	defaultOutputLimitBytes = 1 << 20
	defaultMaxCodeBytes     = 1 << 20
)

// RunnerConfig holds process limits.
type RunnerConfig struct {
	Timeout          time.Duration `yaml:"timeout"`
	VersionTimeout   time.Duration `yaml:"versionTimeout"`
	OutputLimitBytes int           `yaml:"outputLimitBytes"`
	MaxCodeBytes     int           `yaml:"maxCodeBytes"`
}

// EngineConfig is the part of the config every binary shares.
type EngineConfig struct {
	Workspace workspace.Layout    `yaml:"workspace"`
	Runner    RunnerConfig        `yaml:"runner"`
	Languages []language.Override `yaml:"languages"`
}

// ApplyDefaults replaces zero values with defaults.
func (c *EngineConfig) ApplyDefaults() {
	c.Workspace = c.Workspace.WithDefaults()
	if c.Runner.Timeout <= 0 {
		c.Runner.Timeout = defaultTimeout
	}
	if c.Runner.VersionTimeout <= 0 {
		c.Runner.VersionTimeout = defaultVersionTimeout
	}
	if c.Runner.OutputLimitBytes <= 0 {
		c.Runner.OutputLimitBytes = defaultOutputLimitBytes
	}
	if c.Runner.MaxCodeBytes <= 0 {
		c.Runner.MaxCodeBytes = defaultMaxCodeBytes
	}
}

// LoadYAML decodes the file at path into out.
func LoadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

// NewService wires registry, workspace and runner into an execution service.
// A nil recorder disables metrics.
func NewService(cfg EngineConfig, metrics observer.MetricsRecorder) (*service.Service, error) {
	cfg.ApplyDefaults()
	registry, err := language.NewRegistry(cfg.Workspace, cfg.Languages)
	if err != nil {
		return nil, fmt.Errorf("init language registry failed: %w", err)
	}
	runner := process.NewRunner(process.Config{
		Timeout:          cfg.Runner.Timeout,
		OutputLimitBytes: cfg.Runner.OutputLimitBytes,
	})
	return service.NewService(service.Config{
		Registry:       registry,
		Workspace:      workspace.NewManager(cfg.Workspace),
		Runner:         runner,
		Metrics:        metrics,
		Timeout:        cfg.Runner.Timeout,
		VersionTimeout: cfg.Runner.VersionTimeout,
		MaxCodeBytes:   cfg.Runner.MaxCodeBytes,
	})
}
