// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers defaults, an optional YAML file, and environment
//   variables with the JOBRANK_ prefix.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory recompute queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ranking workers.
	WorkerCount int `koanf:"worker_count"`

	// PrivilegedRoles lists rater roles whose composites are reported
	// individually alongside the final score.
	PrivilegedRoles []string `koanf:"privileged_roles"`

	// SchemeFile optionally seeds the scoring scheme from a JSON export.
	SchemeFile string `koanf:"scheme_file"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		QueueSize:       10_000,
		WorkerCount:     runtime.NumCPU() * 2,
		PrivilegedRoles: []string{"account_manager", "sales_person", "ceo"},
	}
}
