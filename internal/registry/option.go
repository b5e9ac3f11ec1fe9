package registry

import (
	"time"

	"github.com/go-logr/logr"
)

// Option is the function signature for all registry options to implement.
type Option func(config *Config)

// WithLogger sets the given logger for the registry.
func WithLogger(logger logr.Logger) Option {
	return func(config *Config) {
		config.Logger = logger
	}
}

// WithDefaultCap sets the per-group member cap new groups inherit at creation time.
func WithDefaultCap(cap int) Option {
	return func(config *Config) {
		config.DefaultCap = cap
	}
}

// WithMaxGroupsPerClient sets the maximum number of live groups a single client may own at once.
func WithMaxGroupsPerClient(max int) Option {
	return func(config *Config) {
		config.MaxGroupsPerClient = max
	}
}

// WithEmptyTTL sets the duration an empty group is kept alive before the sweeper reaps it.
func WithEmptyTTL(ttl time.Duration) Option {
	return func(config *Config) {
		config.EmptyTTL = ttl
	}
}

// WithInactivityThreshold sets the duration of silence after which a client is considered gone.
func WithInactivityThreshold(threshold time.Duration) Option {
	return func(config *Config) {
		config.InactivityThreshold = threshold
	}
}
