package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/intake/internal/logger"
	"github.com/mark3labs/intake/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "▀ █▄ █ ▀█▀ ▄▀█ █▄▀ █▀▀"
	logoText2 = "█ █ ▀█  █  █▀█ █ █ ██▄"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Guided project intake wizard",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

intake walks a prospective client through a three step project request:
project details, services, then budget and timeline. Each step is validated
before the next one opens, and the finished request is submitted to a desk
that answers with a reference number.

The wizard runs in the terminal (intake start) or is driven by an agent over
MCP (intake serve).`

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(setupCmd)
}
