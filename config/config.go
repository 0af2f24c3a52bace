// Package config provides configuration management for Sigline.
package config

import "fmt"

// Config is the global configuration for a Sigline-embedding application.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Queues is the worker queue configuration.
	Queues QueuesConfig `mapstructure:"queues"`

	// Metrics is the observability configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Version is the application version.
	Version string `mapstructure:"version"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"oneof=development staging production"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is the minimum logging level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn warning error"`

	// Format is the log output format (json or text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is "stdout", "stderr", or a file path.
	Output string `mapstructure:"output"`
}

// QueuesConfig holds the set of named worker queues created at startup.
type QueuesConfig struct {
	// Names lists the worker queues to create. Names must be unique.
	Names []string `mapstructure:"names" validate:"unique,dive,required"`
}

// MetricsConfig holds Prometheus exposition configuration.
type MetricsConfig struct {
	// Enabled turns metrics collection and exposition on.
	Enabled bool `mapstructure:"enabled"`

	// Port is the metrics HTTP port.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535"`

	// Path is the metrics HTTP path.
	Path string `mapstructure:"path"`
}

// String returns a one-line summary for startup logging.
func (c *Config) String() string {
	return fmt.Sprintf("app=%s env=%s log=%s/%s queues=%v metrics=%t",
		c.App.Name, c.App.Environment, c.Log.Level, c.Log.Format,
		c.Queues.Names, c.Metrics.Enabled)
}

// Validate performs structural validation of the configuration.
func (c *Config) Validate() error {
	if err := ValidateWithDetails(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
