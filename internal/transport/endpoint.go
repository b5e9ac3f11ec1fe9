// Package transport binds the relay's UDP socket and exposes a single-datagram receive/send interface (spec.md
// §4.A). The receive loop shape is grounded on internal/membership.UDPServerTransport; unlike that transport, send
// and receive here share one socket instead of a separate per-send dial, since every reply must appear to come
// from the one address clients already know. The socket is bound once at startup with ListenUDP and is not
// connected to any peer; each send names its destination with WriteToUDP.
package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/go-logr/logr"

	"github.com/relaycore/groupcast/internal/addr"
)

// MaxDatagramLength is the size of the receive buffer and the largest datagram Send transmits (spec.md §4.A, §6).
// A received datagram that fills the buffer is flagged as Truncated, so the largest payload delivered to the
// handler is one byte shorter.
const MaxDatagramLength = 4096

// Datagram is one received UDP datagram together with the address it came from. Truncated is set instead of
// Payload when the datagram reached or exceeded MaxDatagramLength and could not safely be read in full; the
// protocol layer is responsible for replying ERR TOO_LARGE in that case (spec.md §4.A, §9).
type Datagram struct {
	Payload   []byte
	Source    addr.Addr
	Truncated bool
}

// Handler processes one received datagram.
type Handler func(datagram Datagram)

// Endpoint owns the relay's UDP socket: it binds host:port, runs a receive loop dispatching to a Handler, and
// exposes Send for replies and fan-out.
type Endpoint struct {
	logger     logr.Logger
	config     Config
	handler    Handler
	connection *net.UDPConn
	waitGroup  sync.WaitGroup
}

// New creates a new Endpoint. Provide options to customize the default configuration. handler is invoked once per
// received datagram, on the endpoint's own background goroutine.
func New(handler Handler, options ...Option) *Endpoint {
	config := DefaultConfig
	for _, option := range options {
		option(&config)
	}

	return &Endpoint{
		logger:  config.Logger,
		config:  config,
		handler: handler,
	}
}

// Config returns the config of the endpoint.
func (e *Endpoint) Config() Config {
	return e.config
}

// Startup binds the configured host:port and starts the receive loop. Bind failure is fatal at start-up (spec.md
// §7).
func (e *Endpoint) Startup() error {
	e.logger.Info("Endpoint startup", "host", e.config.Host)
	udpAddr, err := net.ResolveUDPAddr("udp", e.config.Host)
	if err != nil {
		return fmt.Errorf("resolving host: %w", err)
	}

	connection, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("listening for UDP: %w", err)
	}
	e.connection = connection

	e.waitGroup.Add(1)
	go e.receiveLoop()
	return nil
}

// Shutdown closes the socket and waits for the receive loop to finish.
func (e *Endpoint) Shutdown() error {
	e.logger.Info("Endpoint shutdown")
	if err := e.connection.Close(); err != nil {
		return err
	}
	e.waitGroup.Wait()
	return nil
}

// LocalAddr returns the address the endpoint is bound to. Only valid after a successful Startup.
func (e *Endpoint) LocalAddr() net.Addr {
	return e.connection.LocalAddr()
}

func (e *Endpoint) receiveLoop() {
	e.logger.Info("Endpoint receive loop started")
	defer e.logger.Info("Endpoint receive loop finished")
	defer e.waitGroup.Done()

	buffer := make([]byte, MaxDatagramLength)
	for {
		n, source, err := e.connection.ReadFromUDP(buffer)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				e.logger.Error(err, "Reading UDP datagram.")
			}
			return
		}
		if n < 1 {
			continue
		}

		DatagramsReceivedTotal.Inc()
		BytesReceivedTotal.Add(float64(n))
		sourceAddr := addr.FromUDPAddr(source)

		// A read that exactly fills the buffer cannot be told apart from one that was truncated because the
		// sender's datagram was larger. Per spec.md §9 (open question b), both are treated as TOO_LARGE and left
		// for the protocol layer to reply to.
		if n >= MaxDatagramLength {
			DatagramsTruncatedTotal.Inc()
			e.logger.V(1).Info("Oversized datagram received", "source", sourceAddr)
			e.handler(Datagram{Source: sourceAddr, Truncated: true})
			continue
		}

		payload := make([]byte, n)
		copy(payload, buffer[:n])
		e.handler(Datagram{Payload: payload, Source: sourceAddr})
	}
}

// Send transmits one datagram to dest. Send errors are logged and swallowed, never propagated: one failing peer
// must not affect delivery to others (spec.md §4.A).
func (e *Endpoint) Send(dest addr.Addr, payload []byte) {
	if len(payload) > MaxDatagramLength {
		e.logger.Error(errors.New("payload exceeds maximum datagram length"), "Dropping outbound datagram", "dest", dest)
		return
	}

	udpAddr := &net.UDPAddr{IP: dest.IP(), Port: dest.Port()}
	n, err := e.connection.WriteToUDP(payload, udpAddr)
	if err != nil {
		e.logger.Error(err, "Sending UDP datagram.", "dest", dest)
		return
	}
	DatagramsSentTotal.Inc()
	BytesSentTotal.Add(float64(n))
}
