package registry

import (
	"time"

	"github.com/go-logr/logr"
)

// Config is the configuration a Registry is constructed with.
type Config struct {
	// Logger is the Logger to use for outputting status information.
	Logger logr.Logger

	// DefaultCap is the per-group member cap new groups inherit at creation time. Zero means unlimited.
	DefaultCap int

	// MaxGroupsPerClient is the maximum number of live groups a single client may own at once.
	MaxGroupsPerClient int

	// EmptyTTL is the duration an empty group is kept alive before the sweeper reaps it.
	EmptyTTL time.Duration

	// InactivityThreshold is the duration of silence after which a client is considered gone by the sweeper.
	// The caller is responsible for deriving this from the heartbeat interval (spec: 3x heartbeat).
	InactivityThreshold time.Duration
}

// DefaultConfig provides a registry configuration matching the command line defaults in spec.md §6.
var DefaultConfig = Config{
	DefaultCap:          128,
	MaxGroupsPerClient:  3,
	EmptyTTL:            300 * time.Second,
	InactivityThreshold: 180 * time.Second,
}
