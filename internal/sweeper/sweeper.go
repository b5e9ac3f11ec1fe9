// Package sweeper drives the registry's periodic maintenance pass: inactivity eviction and empty-group expiry
// (spec.md §4.F). The background-loop shape is grounded on internal/scheduler.Scheduler, simplified down from its
// multi-ticker protocol-period/list-request cycle to a single ticker, since the sweeper has exactly one timed
// action rather than several interleaved ones.
package sweeper

import (
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// Sweeper periodically calls Target.Sweep until Shutdown is called.
//
// Sweeper is safe for concurrent use by multiple goroutines, but Startup and Shutdown must each be called exactly
// once, in that order. Create a new Sweeper if you need to restart.
type Sweeper struct {
	logger    logr.Logger
	config    Config
	target    Target
	waitGroup sync.WaitGroup
	shutdown  chan struct{}
	ticker    *time.Ticker
}

// New creates a new sweeper driving target with the given configuration. Provide options to customize the default
// configuration.
func New(target Target, options ...Option) *Sweeper {
	config := DefaultConfig
	for _, option := range options {
		option(&config)
	}

	return &Sweeper{
		logger:   config.Logger,
		config:   config,
		target:   target,
		shutdown: make(chan struct{}),
	}
}

// Config returns the config of the sweeper.
func (s *Sweeper) Config() Config {
	return s.config
}

// Startup starts the background sweep loop. It returns immediately; sweeps run on their own goroutine until
// Shutdown is called.
func (s *Sweeper) Startup() error {
	s.logger.Info("Sweeper startup", "interval", s.config.Interval)
	s.ticker = time.NewTicker(s.config.Interval)
	s.waitGroup.Add(1)
	go s.loop()
	return nil
}

// Shutdown stops the background sweep loop. It blocks until the current sweep, if any, has completed.
func (s *Sweeper) Shutdown() error {
	s.logger.Info("Sweeper shutdown")
	s.ticker.Stop()
	close(s.shutdown)
	s.waitGroup.Wait()
	return nil
}

func (s *Sweeper) loop() {
	s.logger.Info("Sweeper background task started")
	defer s.logger.Info("Sweeper background task finished")
	defer s.waitGroup.Done()

	for {
		select {
		case <-s.shutdown:
			return
		case <-s.ticker.C:
			s.runOnce()
		}
	}
}

func (s *Sweeper) runOnce() {
	start := time.Now()
	evictedClients, expiredGroups := s.target.Sweep(start)
	RunsTotal.Inc()
	RunDurationSeconds.Observe(time.Since(start).Seconds())
	ClientsEvictedTotal.Add(float64(evictedClients))
	GroupsExpiredTotal.Add(float64(expiredGroups))

	if evictedClients > 0 || expiredGroups > 0 {
		s.logger.V(1).Info("Sweep pass completed",
			"evicted-clients", evictedClients, "expired-groups", expiredGroups)
	}
}
