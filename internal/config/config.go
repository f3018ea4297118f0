// Package config defines engine configuration structures and loading.
//
// Conventions:
// - Defaults live in New; Load layers file and env on top.
// - External errors are wrapped via this package's sentinel kinds.
package config

import (
	"github.com/clearnote/notescore/internal/domain/trigger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the Prometheus listen address, e.g. ":9090".
	// Empty disables the metrics endpoint.
	MetricsAddr string `koanf:"metrics_addr"`

	// DatabasePath points at the sqlite database the provider reads.
	DatabasePath string `koanf:"database_path"`

	// MFDeadlineMS bounds each matrix factorization fit in milliseconds.
	MFDeadlineMS int `koanf:"mf_deadline_ms"`

	// TriggerThreshold overrides the batch-eligibility note count.
	TriggerThreshold int `koanf:"trigger_threshold"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		MetricsAddr:      "",
		DatabasePath:     "notescore.db",
		MFDeadlineMS:     30_000,
		TriggerThreshold: trigger.DefaultThreshold,
	}
}
