package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/intake/internal/config"
	"github.com/mark3labs/intake/internal/desk"
	"github.com/mark3labs/intake/internal/hooks"
	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/intake/internal/logger"
)

// loadConfig loads the layered config and applies its logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, nil
}

// openBackend builds the submission backend named by cfg, wrapped with any
// on_submit hooks from the working directory. The returned cleanup func must
// be called once the wizard is done.
func openBackend(cfg *config.Config) (intake.Backend, func(), error) {
	backend, cleanup, err := newBackend(cfg)
	if err != nil {
		return nil, nil, err
	}

	workDir, err := os.Getwd()
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	hookCfg, err := hooks.LoadConfig(workDir)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return hooks.WrapBackend(backend, hookCfg, workDir), cleanup, nil
}

func newBackend(cfg *config.Config) (intake.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendSimulated:
		logger.Debug("Using simulated backend (latency=%s, fail=%v)", cfg.SubmitLatency, cfg.SimulateFailure)
		return intake.SimulatedBackend{Latency: cfg.SubmitLatency, Fail: cfg.SimulateFailure}, func() {}, nil

	case config.BackendNATS:
		d, err := desk.Start(desk.Options{
			Latency:        cfg.SubmitLatency,
			AlwaysFail:     cfg.SimulateFailure,
			RequestTimeout: cfg.RequestTimeout,
			MaxRetries:     cfg.MaxRetries,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start submission desk: %w", err)
		}
		cleanup := func() {
			if err := d.Close(); err != nil {
				logger.Warn("Error closing submission desk: %v", err)
			}
		}
		return d.Client(), cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
