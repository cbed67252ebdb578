package main

import (
	"fmt"
	"time"

	"coderun/internal/common/http/middleware"
	runnerconfig "coderun/internal/runner/config"
	"coderun/pkg/utils/logger"
)

const (
	defaultHTTPAddr        = "0.0.0.0:8090"
	defaultReadTimeout     = 5 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMetricsPath     = "/metrics"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// AppConfig holds runner-service config.
type AppConfig struct {
	runnerconfig.EngineConfig `yaml:",inline"`

	Server  ServerConfig          `yaml:"server"`
	Logger  logger.Config         `yaml:"logger"`
	Auth    middleware.AuthConfig `yaml:"auth"`
	CORS    middleware.CORSConfig `yaml:"cors"`
	Metrics MetricsConfig         `yaml:"metrics"`
}

func loadAppConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if err := runnerconfig.LoadYAML(path, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	// A request may compile, run and probe back to back.
	if minWrite := 2*cfg.Runner.Timeout + cfg.Runner.VersionTimeout + 5*time.Second; cfg.Server.WriteTimeout < minWrite {
		cfg.Server.WriteTimeout = minWrite
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = defaultMetricsPath
	}
	if cfg.Auth.JWTIssuer != "" && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth jwtIssuer is set but jwtSecret is empty")
	}
	return &cfg, nil
}
