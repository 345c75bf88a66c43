// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir is the directory holding the CSV tables.
	DataDir string `koanf:"data_dir"`

	// RunQueueSize bounds the in-memory run queue.
	RunQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of rating-run workers.
	WorkerCount int `koanf:"worker_count"`

	// DropDraws removes drawn games during normalization when true.
	DropDraws bool `koanf:"drop_draws"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:     "info",
		Addr:         ":9080",
		DataDir:      "./data",
		RunQueueSize: 64,
		WorkerCount:  2,
		DropDraws:    false,
	}
	return c
}
