package nats

import (
	"errors"
	"time"

	"github.com/mark3labs/intake/internal/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// StartEmbeddedNATS starts an in-process NATS server. Submissions are
// request/reply only and nothing is persisted, so JetStream stays off.
func StartEmbeddedNATS() (*server.Server, error) {
	logger.Debug("Starting embedded NATS server")

	opts := &server.Options{
		ServerName: "intake",
		DontListen: true, // No network ports - in-process only
		NoSigs:     true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		logger.Error("Failed to create NATS server: %v", err)
		return nil, err
	}

	go ns.Start()

	if !ns.ReadyForConnections(4 * time.Second) {
		logger.Error("NATS server failed to start within 4s timeout")
		ns.Shutdown()
		return nil, errors.New("nats server failed to start within timeout")
	}

	logger.Debug("NATS server ready for connections")
	return ns, nil
}

// ConnectInProcess creates an in-process connection to the embedded NATS server.
func ConnectInProcess(ns *server.Server, name string) (*nats.Conn, error) {
	logger.Debug("Connecting to NATS server in-process as %s", name)
	conn, err := nats.Connect("", nats.InProcessServer(ns), nats.Name(name))
	if err != nil {
		logger.Error("Failed to connect to NATS in-process: %v", err)
		return nil, err
	}
	return conn, nil
}

// Shutdown drains the given connections and then stops the server.
// Drains that fail or take longer than 2s fall back to a hard close.
func Shutdown(ns *server.Server, conns ...*nats.Conn) error {
	logger.Debug("Starting NATS shutdown")

	for _, nc := range conns {
		if nc == nil || nc.IsClosed() {
			continue
		}
		drainDone := make(chan error, 1)
		go func() {
			drainDone <- nc.Drain()
		}()

		select {
		case err := <-drainDone:
			if err != nil {
				logger.Warn("NATS drain failed, forcing close: %v", err)
				nc.Close()
			}
		case <-time.After(2 * time.Second):
			logger.Warn("NATS drain timed out after 2s, forcing close")
			nc.Close()
		}
	}

	if ns == nil {
		return nil
	}

	ns.Shutdown()
	shutdownDone := make(chan struct{})
	go func() {
		ns.WaitForShutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		logger.Debug("NATS server shut down cleanly")
		return nil
	case <-time.After(5 * time.Second):
		logger.Error("NATS server shutdown timed out after 5s")
		return errors.New("NATS server shutdown timed out")
	}
}
