package sweeper

import (
	"time"

	"github.com/go-logr/logr"
)

// Option is the function signature for all sweeper options to implement.
type Option func(config *Config)

// WithLogger sets the given logger for the sweeper.
func WithLogger(logger logr.Logger) Option {
	return func(config *Config) {
		config.Logger = logger
	}
}

// WithInterval sets the time between sweeps.
func WithInterval(interval time.Duration) Option {
	return func(config *Config) {
		config.Interval = interval
	}
}
