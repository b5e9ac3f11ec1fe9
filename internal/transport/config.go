package transport

import "github.com/go-logr/logr"

// Config is the configuration an Endpoint is constructed with.
type Config struct {
	// Logger is the logger to use for outputting status information.
	Logger logr.Logger

	// Host is the host:port to bind to, e.g. "0.0.0.0:7946" or ":7946".
	Host string
}

// DefaultConfig provides an endpoint configuration matching the command line defaults in spec.md §6.
var DefaultConfig = Config{
	Host: "0.0.0.0:5000",
}
