// Package mcpserver exposes the intake wizard to agents as MCP tools over
// streamable HTTP. One controller backs the server for its whole lifetime;
// after a dismissal the controller is already reset, so the next agent call
// starts a fresh session.
package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/intake/internal/logger"
	"github.com/mark3labs/mcp-go/server"
)

// Server manages an embedded MCP HTTP server driving one wizard controller.
type Server struct {
	ctrl       *intake.Controller
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	stdServer  *http.Server
	port       int
	mu         sync.Mutex

	// events are written from controller callbacks, which can run while a
	// handler is inside a controller call, so they have their own lock.
	evMu        sync.Mutex
	changed     chan struct{}
	lastReceipt *intake.Receipt
	dismissals  []intake.DismissReason
}

// New creates a server and its controller. The server is not started until
// Start is called. Options are passed through to intake.New.
func New(backend intake.Backend, opts ...intake.Option) *Server {
	s := &Server{changed: make(chan struct{})}
	opts = append(opts,
		intake.WithOnChange(s.onChange),
		intake.WithOnDismiss(s.onDismiss),
	)
	s.ctrl = intake.New(backend, opts...)

	s.mcpServer = server.NewMCPServer(
		"intake-tools",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// Controller returns the controller behind the tools.
func (s *Server) Controller() *intake.Controller {
	return s.ctrl
}

// Start starts the MCP HTTP server on 127.0.0.1:port. A zero port picks a
// free one. Returns the bound port.
func (s *Server) Start(ctx context.Context, port int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return 0, fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mcpHandler := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	)
	mux.Handle("/mcp", mcpHandler)

	s.stdServer = &http.Server{Handler: mux}
	s.httpServer = mcpHandler

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Info("MCP server ready on port %d", s.port)
	return s.port, nil
}

// Stop stops the HTTP server and tears the controller down. Safe to call
// more than once.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctrl.Teardown()
	if s.stdServer == nil {
		return nil
	}

	logger.Debug("Stopping MCP server")
	if err := s.stdServer.Shutdown(context.Background()); err != nil {
		logger.Warn("Error stopping MCP server: %v", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}

	s.httpServer = nil
	s.stdServer = nil
	logger.Debug("MCP server stopped")
	return nil
}

// URL returns the HTTP URL for the MCP endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}

func (s *Server) onChange(st intake.State) {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	if st.Receipt != nil {
		r := *st.Receipt
		s.lastReceipt = &r
	}
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Server) onDismiss(reason intake.DismissReason) {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	s.dismissals = append(s.dismissals, reason)
	logger.Info("Wizard session %d dismissed (%s)", len(s.dismissals), reason)
}

// changes returns a channel closed on the next state change.
func (s *Server) changes() <-chan struct{} {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	return s.changed
}

// events returns the latest receipt and the number of dismissals so far.
func (s *Server) events() (*intake.Receipt, []intake.DismissReason) {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	return s.lastReceipt, append([]intake.DismissReason(nil), s.dismissals...)
}

// waitSettled blocks until no submission is in flight or ctx is done.
func (s *Server) waitSettled(ctx context.Context) intake.State {
	for {
		ch := s.changes()
		st := s.ctrl.State()
		if st.Status != intake.StatusSubmitting {
			return st
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return s.ctrl.State()
		}
	}
}
