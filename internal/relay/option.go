package relay

import (
	"time"

	"github.com/go-logr/logr"
)

// Option is the function signature for all relay options to implement.
type Option func(config *Config)

// WithLogger sets the given logger for the relay and everything it constructs.
func WithLogger(logger logr.Logger) Option {
	return func(config *Config) {
		config.Logger = logger
	}
}

// WithHost sets the host:port the relay binds to.
func WithHost(host string) Option {
	return func(config *Config) {
		config.Host = host
	}
}

// WithEmptyTTL sets the duration an empty group is kept alive before the sweeper reaps it.
func WithEmptyTTL(ttl time.Duration) Option {
	return func(config *Config) {
		config.EmptyTTL = ttl
	}
}

// WithSweepInterval sets the time between sweeper passes.
func WithSweepInterval(interval time.Duration) Option {
	return func(config *Config) {
		config.SweepInterval = interval
	}
}

// WithHeartbeatInterval sets the advertised heartbeat cadence.
func WithHeartbeatInterval(interval time.Duration) Option {
	return func(config *Config) {
		config.HeartbeatInterval = interval
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
