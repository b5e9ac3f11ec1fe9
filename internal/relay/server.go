package relay

import (
	"net"
	"time"

	"github.com/go-logr/logr"

	"github.com/relaycore/groupcast/internal/addr"
	"github.com/relaycore/groupcast/internal/protocol"
	"github.com/relaycore/groupcast/internal/registry"
	"github.com/relaycore/groupcast/internal/sweeper"
	"github.com/relaycore/groupcast/internal/transport"
)

// Relay owns the registry, sweeper, and transport endpoint, and serializes all state mutations behind the
// registry's single-writer discipline (spec.md §4.G). Inbound datagrams and sweep timer ticks are the two event
// sources; both ultimately call into Registry, which is what actually does the serializing.
type Relay struct {
	logger   logr.Logger
	config   Config
	registry *registry.Registry
	sweeper  *sweeper.Sweeper
	endpoint *transport.Endpoint
}

// New creates a new Relay. Provide options to customize the default configuration.
func New(options ...Option) *Relay {
	config := DefaultConfig
	for _, option := range options {
		option(&config)
	}

	r := &Relay{
		logger: config.Logger,
		config: config,
	}

	r.registry = registry.New(
		registry.WithLogger(config.Logger),
		registry.WithDefaultCap(config.DefaultCap),
		registry.WithMaxGroupsPerClient(config.MaxGroupsPerClient),
		registry.WithEmptyTTL(config.EmptyTTL),
		registry.WithInactivityThreshold(3*config.HeartbeatInterval),
	)
	r.sweeper = sweeper.New(
		r.registry,
		sweeper.WithLogger(config.Logger),
		sweeper.WithInterval(config.SweepInterval),
	)
	r.endpoint = transport.New(
		r.dispatch,
		transport.WithLogger(config.Logger),
		transport.WithHost(config.Host),
	)

	return r
}

// Config returns the config of the relay.
func (r *Relay) Config() Config {
	return r.config
}

// Registry returns the relay's registry, mainly for use by operational tooling (e.g. a debug-state endpoint).
func (r *Relay) Registry() *registry.Registry {
	return r.registry
}

// LocalAddr returns the address the relay's endpoint is bound to. Only valid after a successful Startup.
func (r *Relay) LocalAddr() net.Addr {
	return r.endpoint.LocalAddr()
}

// Startup binds the endpoint and starts the sweeper. Bind failure is fatal at start-up (spec.md §7).
func (r *Relay) Startup() error {
	r.logger.Info("Relay startup", "host", r.config.Host)
	if err := r.endpoint.Startup(); err != nil {
		return err
	}
	if err := r.sweeper.Startup(); err != nil {
		return err
	}
	return nil
}

// Shutdown stops the sweeper and closes the endpoint. Close endpoint → drain pending events → exit (spec.md §4.G).
func (r *Relay) Shutdown() error {
	r.logger.Info("Relay shutdown")
	if err := r.sweeper.Shutdown(); err != nil {
		return err
	}
	if err := r.endpoint.Shutdown(); err != nil {
		return err
	}
	return nil
}

// dispatch is the transport.Handler driving one received datagram through classification, handling, and reply.
func (r *Relay) dispatch(datagram transport.Datagram) {
	now := time.Now()

	if datagram.Truncated {
		r.reply(datagram.Source, protocol.ReplyErr(protocol.ErrTooLarge, protocol.MsgPayloadTooLarge))
		return
	}

	if protocol.IsCommand(datagram.Payload) {
		r.handleCommandDatagram(datagram.Source, datagram.Payload, now)
		return
	}

	reply := r.handlePayload(datagram.Source, datagram.Payload, now)
	r.reply(datagram.Source, reply)
}

func (r *Relay) handleCommandDatagram(source addr.Addr, payload []byte, now time.Time) {
	cmd, ok := protocol.ParseCommand(payload)
	if !ok {
		r.reply(source, protocol.ReplyErr(protocol.ErrBadCmd, protocol.MsgUnknownCommand))
		return
	}
	r.reply(source, r.handleCommand(source, cmd, now))
}

func (r *Relay) reply(dest addr.Addr, message string) {
	if message == "" {
		return
	}
	r.endpoint.Send(dest, []byte(message))
}
