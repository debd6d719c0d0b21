package testfixtures

import (
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/x/ansi"
)

// Initialize test environment
func init() {
	// Set Ascii profile to disable color output for consistent output across CI/platforms
	lipgloss.Writer.Profile = colorprofile.Ascii
}

// Canonical terminal size for all tests
const (
	TestTermWidth  = 120
	TestTermHeight = 40
)

// Conservative timeouts for Eventually-style waits (CI compatibility)
const (
	DefaultWaitDuration  = 5 * time.Second
	DefaultCheckInterval = 10 * time.Millisecond
)

// Plain strips ANSI escape sequences so rendered output can be matched
// against plain text.
func Plain(s string) string {
	return ansi.Strip(s)
}

// Contains reports whether the plain-text rendering of s contains substr.
func Contains(s, substr string) bool {
	return strings.Contains(Plain(s), substr)
}
