// Package config handles loading and validation of application configuration
// from environment variables, an optional .env file and an optional config file.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/NomadCrew/feedback-client/internal/transport"
	"github.com/NomadCrew/feedback-client/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
	EnvTest        Environment = "test"

	// DefaultBaseURL is the local-development backend origin.
	DefaultBaseURL = transport.DefaultBaseURL

	maxPageSize = 100
)

// APIConfig holds settings for the feedback backend.
type APIConfig struct {
	BaseURL  string `mapstructure:"BASE_URL" yaml:"base_url"`
	PageSize int    `mapstructure:"PAGE_SIZE" yaml:"page_size"`
}

// UIConfig holds settings for the interactive front end.
type UIConfig struct {
	// StaleSeconds is how long a fetched list stays fresh before switching
	// back to it triggers a refetch.
	StaleSeconds int `mapstructure:"STALE_SECONDS" yaml:"stale_seconds"`
	// ToastSeconds is how long a success notification stays on screen.
	ToastSeconds int `mapstructure:"TOAST_SECONDS" yaml:"toast_seconds"`
}

// MetricsConfig holds the optional Prometheus listener.
type MetricsConfig struct {
	Addr string `mapstructure:"ADDR" yaml:"addr"`
}

// WorkerPoolConfig holds configuration for the bulk import worker pool.
type WorkerPoolConfig struct {
	// MaxWorkers is the number of concurrent submissions (default: 4)
	MaxWorkers int `mapstructure:"MAX_WORKERS" yaml:"max_workers"`
	// QueueSize is the maximum number of pending jobs (default: 64)
	QueueSize int `mapstructure:"QUEUE_SIZE" yaml:"queue_size"`
	// ShutdownTimeoutSeconds is the max time to wait for workers during shutdown (default: 30)
	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Environment Environment      `mapstructure:"ENVIRONMENT" yaml:"environment"`
	LogLevel    string           `mapstructure:"LOG_LEVEL" yaml:"log_level"`
	API         APIConfig        `mapstructure:"API" yaml:"api"`
	UI          UIConfig         `mapstructure:"UI" yaml:"ui"`
	Metrics     MetricsConfig    `mapstructure:"METRICS" yaml:"metrics"`
	WorkerPool  WorkerPoolConfig `mapstructure:"WORKER_POOL" yaml:"worker_pool"`
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// bindEnvVars binds environment variables to config keys.
// The first listed variable that is set wins.
func bindEnvVars(v *viper.Viper, bindings map[string][]string) error {
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// LoadConfig loads configuration using Viper: .env files are applied to the
// process environment first, then defaults, an optional feedback.yaml in the
// working directory, and environment variables, in increasing precedence.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	log := logger.GetLogger()

	v.SetConfigName("feedback")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("ENVIRONMENT", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("API.BASE_URL", DefaultBaseURL)
	v.SetDefault("API.PAGE_SIZE", 10)
	v.SetDefault("UI.STALE_SECONDS", 60)
	v.SetDefault("UI.TOAST_SECONDS", 4)
	v.SetDefault("METRICS.ADDR", "")
	v.SetDefault("WORKER_POOL.MAX_WORKERS", 4)
	v.SetDefault("WORKER_POOL.QUEUE_SIZE", 64)
	v.SetDefault("WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", 30)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := map[string][]string{
		"ENVIRONMENT":      {"ENVIRONMENT"},
		"LOG_LEVEL":        {"LOG_LEVEL"},
		"API.BASE_URL":     {"FEEDBACK_API_URL", "VITE_API_URL", "API_URL"},
		"API.PAGE_SIZE":    {"FEEDBACK_PAGE_SIZE"},
		"UI.STALE_SECONDS": {"FEEDBACK_STALE_SECONDS"},
		"UI.TOAST_SECONDS": {"FEEDBACK_TOAST_SECONDS"},
		"METRICS.ADDR":     {"FEEDBACK_METRICS_ADDR"},

		"WORKER_POOL.MAX_WORKERS":              {"FEEDBACK_IMPORT_WORKERS"},
		"WORKER_POOL.QUEUE_SIZE":               {"FEEDBACK_IMPORT_QUEUE_SIZE"},
		"WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS": {"FEEDBACK_IMPORT_SHUTDOWN_TIMEOUT_SECONDS"},
	}
	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	// An empty override falls back to the local origin rather than failing.
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Debugw("Configuration loaded",
		"environment", cfg.Environment,
		"api_base_url", cfg.API.BaseURL,
		"page_size", cfg.API.PageSize,
		"stale_seconds", cfg.UI.StaleSeconds,
		"metrics_addr", cfg.Metrics.Addr,
	)
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	switch cfg.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("invalid environment '%s'", cfg.Environment)
	}

	if err := ValidateBaseURL(cfg.API.BaseURL); err != nil {
		return err
	}
	if cfg.API.PageSize <= 0 || cfg.API.PageSize > maxPageSize {
		return fmt.Errorf("page size must be between 1 and %d", maxPageSize)
	}
	if cfg.UI.StaleSeconds < 0 {
		return fmt.Errorf("stale seconds must not be negative")
	}
	if cfg.UI.ToastSeconds <= 0 {
		return fmt.Errorf("toast seconds must be positive")
	}

	if cfg.WorkerPool.MaxWorkers <= 0 {
		return fmt.Errorf("worker pool max workers must be positive")
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		return fmt.Errorf("worker pool queue size must be positive")
	}
	if cfg.WorkerPool.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("worker pool shutdown timeout must be positive")
	}
	return nil
}

// ValidateBaseURL reports whether raw is an absolute http(s) origin.
func ValidateBaseURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("invalid API base URL '%s': %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid API base URL '%s': scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid API base URL '%s': missing host", raw)
	}
	return nil
}
