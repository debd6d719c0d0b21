package main

import (
	"fmt"

	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/intake/internal/tui/theme"
	"github.com/mark3labs/intake/internal/tui/wizard"
	"github.com/spf13/cobra"
)

var startFlags struct {
	backend         string
	simulateFailure bool
	theme           string
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Open the project intake wizard",
	Long: `Open the project intake wizard in the terminal.

Configuration is loaded from multiple sources with the following precedence:
  CLI flags > Environment variables > Project config > Global config > Defaults

Project config: ./intake.yml
Global config: ~/.config/intake/intake.yml`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVarP(&startFlags.backend, "backend", "b", "", "Submission backend: simulated or nats")
	startCmd.Flags().BoolVar(&startFlags.simulateFailure, "simulate-failure", false, "Make every submission fail")
	startCmd.Flags().StringVar(&startFlags.theme, "theme", "catppuccin-mocha", "Color theme (catppuccin-mocha, catppuccin-latte)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = startFlags.backend
	}
	if cmd.Flags().Changed("simulate-failure") {
		cfg.SimulateFailure = startFlags.simulateFailure
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := theme.SetCurrent(startFlags.theme); err != nil {
		return err
	}

	backend, cleanup, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := wizard.Run(cmd.Context(), backend, intake.WithDismissDelay(cfg.DismissDelay))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case res.Cancelled:
		_, _ = fmt.Fprintln(out, "Wizard cancelled.")
	case res.Receipt != nil:
		_, _ = fmt.Fprintf(out, "Project submitted. Reference: %s\n", res.Receipt.Reference)
	default:
		_, _ = fmt.Fprintln(out, "Wizard closed without submitting.")
	}
	return nil
}
