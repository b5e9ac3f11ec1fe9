package transport

import "github.com/go-logr/logr"

// Option is the function signature for all endpoint options to implement.
type Option func(config *Config)

// WithLogger sets the given logger for the endpoint.
func WithLogger(logger logr.Logger) Option {
	return func(config *Config) {
		config.Logger = logger
	}
}

// WithHost sets the host:port the endpoint binds to.
func WithHost(host string) Option {
	return func(config *Config) {
		config.Host = host
	}
}
