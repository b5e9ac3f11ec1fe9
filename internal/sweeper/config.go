package sweeper

import (
	"time"

	"github.com/go-logr/logr"
)

// Target is the interface the sweeper drives. The registry implements this.
type Target interface {
	// Sweep runs one maintenance pass as of now and reports how much it did.
	Sweep(now time.Time) (evictedClients int, expiredGroups int)
}

// Config is the configuration a Sweeper is constructed with.
type Config struct {
	// Logger is the logger to use for outputting status information.
	Logger logr.Logger

	// Interval is the time between sweeps.
	Interval time.Duration
}

// DefaultConfig provides a sweeper configuration matching the command line default in spec.md §6.
var DefaultConfig = Config{
	Interval: 30 * time.Second,
}
