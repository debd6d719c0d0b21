package desk

import (
	"fmt"
	"time"

	"github.com/mark3labs/intake/internal/logger"
	inats "github.com/mark3labs/intake/internal/nats"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// Options configures an in-process desk.
type Options struct {
	Latency        time.Duration
	AlwaysFail     bool
	RequestTimeout time.Duration
	MaxRetries     int
}

// Desk runs an embedded NATS server with a responder and a client attached.
type Desk struct {
	ns        *server.Server
	serverNC  *nats.Conn
	clientNC  *nats.Conn
	responder *Responder
	client    *Client
}

// Start boots the embedded server and subscribes the responder.
func Start(opts Options) (*Desk, error) {
	ns, err := inats.StartEmbeddedNATS()
	if err != nil {
		return nil, fmt.Errorf("starting embedded NATS: %w", err)
	}

	d := &Desk{ns: ns}
	if d.serverNC, err = inats.ConnectInProcess(ns, "intake-desk"); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("connecting desk: %w", err)
	}
	if d.clientNC, err = inats.ConnectInProcess(ns, "intake-wizard"); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("connecting wizard: %w", err)
	}

	respOpts := []ResponderOption{WithLatency(opts.Latency)}
	if opts.AlwaysFail {
		respOpts = append(respOpts, WithUnavailable(-1))
	}
	d.responder = NewResponder(d.serverNC, respOpts...)
	if err := d.responder.Start(); err != nil {
		_ = d.Close()
		return nil, err
	}

	retry := DefaultRetryConfig()
	retry.MaxRetries = opts.MaxRetries
	clientOpts := []ClientOption{WithRetry(retry)}
	if opts.RequestTimeout > 0 {
		clientOpts = append(clientOpts, WithRequestTimeout(opts.RequestTimeout))
	}
	d.client = NewClient(d.clientNC, clientOpts...)

	logger.Debug("Intake desk started")
	return d, nil
}

// Client returns the submission backend bound to this desk.
func (d *Desk) Client() *Client {
	return d.client
}

// Responder returns the desk's responder.
func (d *Desk) Responder() *Responder {
	return d.responder
}

// Close drains both connections and stops the server.
func (d *Desk) Close() error {
	if d.responder != nil {
		_ = d.responder.Stop()
	}
	return inats.Shutdown(d.ns, d.clientNC, d.serverNC)
}
