package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/intake/internal/logger"
	"github.com/mark3labs/intake/internal/mcpserver"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	port    int
	backend string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the wizard to agents over MCP",
	Long: `Serve the intake wizard as MCP tools over streamable HTTP.

Agents call get-state, update-field, toggle-service, advance, retreat,
submit and close against a single wizard session. After the wizard is
closed or a submission completes, the session starts over empty.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&serveFlags.port, "port", "p", 0, "Port to listen on (default: mcp_port from config)")
	serveCmd.Flags().StringVarP(&serveFlags.backend, "backend", "b", "", "Submission backend: simulated or nats")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.MCPPort = serveFlags.port
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = serveFlags.backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	backend, cleanup, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcpserver.New(backend, intake.WithDismissDelay(cfg.DismissDelay))
	if _, err := srv.Start(ctx, cfg.MCPPort); err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			logger.Warn("Error during shutdown: %v", err)
		}
	}()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving intake tools at %s\n", srv.URL())
	<-ctx.Done()
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down gracefully...")
	return nil
}
