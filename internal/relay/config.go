package relay

import (
	"time"

	"github.com/go-logr/logr"
)

// Config is the configuration a Relay is constructed with. Field defaults mirror the command line defaults in
// spec.md §6.
type Config struct {
	// Logger is the logger to use for outputting status information.
	Logger logr.Logger

	// Host is the host:port the relay's UDP endpoint binds to.
	Host string

	// EmptyTTL is the duration an empty group is kept alive before the sweeper reaps it.
	EmptyTTL time.Duration

	// SweepInterval is the time between sweeper passes.
	SweepInterval time.Duration

	// HeartbeatInterval is the advertised heartbeat cadence, used both in PONG replies and to derive the 3x
	// inactivity eviction threshold.
	HeartbeatInterval time.Duration

	// DefaultCap is the per-group member cap new groups inherit at creation time. Zero means unlimited.
	DefaultCap int

	// MaxGroupsPerClient is the maximum number of live groups a single client may own at once.
	MaxGroupsPerClient int
}

// DefaultConfig provides a relay configuration matching the command line defaults in spec.md §6.
var DefaultConfig = Config{
	Host:               "0.0.0.0:5000",
	EmptyTTL:           300 * time.Second,
	SweepInterval:      30 * time.Second,
	HeartbeatInterval:  60 * time.Second,
	DefaultCap:         128,
	MaxGroupsPerClient: 3,
}
