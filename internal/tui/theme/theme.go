package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // lipgloss.Color is a string type
	Secondary string
	Tertiary  string

	// Background hierarchy (dark→light)
	BgBase     string
	BgMantle   string
	BgSurface0 string
	BgSurface1 string
	BgSurface2 string
	BgOverlay  string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string
	FgBright string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Lazy-built styles
	styles     *Styles
	stylesOnce sync.Once
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	c := lipgloss.Color
	button := lipgloss.NewStyle().Padding(0, 2).MarginLeft(1).MarginRight(1)

	return &Styles{
		ModalContainer: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.Secondary)).
			Background(c(t.BgBase)).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Foreground(c(t.Primary)).
			Bold(true),
		StepDesc: lipgloss.NewStyle().Foreground(c(t.FgSubtle)),
		Label:    lipgloss.NewStyle().Foreground(c(t.FgSubtle)),
		Error:    lipgloss.NewStyle().Foreground(c(t.Error)),
		Success:  lipgloss.NewStyle().Foreground(c(t.Success)).Bold(true),

		ProgressDone:    lipgloss.NewStyle().Foreground(c(t.Success)).Bold(true),
		ProgressCurrent: lipgloss.NewStyle().Foreground(c(t.BgBase)).Background(c(t.Primary)).Bold(true),
		ProgressPending: lipgloss.NewStyle().Foreground(c(t.FgMuted)),

		OptionSelected: lipgloss.NewStyle().Foreground(c(t.Primary)).Bold(true),
		OptionCursor:   lipgloss.NewStyle().Foreground(c(t.FgBase)).Background(c(t.BgSurface0)),
		OptionNormal:   lipgloss.NewStyle().Foreground(c(t.FgBase)),

		ButtonNormal:   button.Foreground(c(t.FgBase)).Background(c(t.BgSurface0)),
		ButtonDisabled: button.Foreground(c(t.FgMuted)).Background(c(t.BgMantle)),
		ButtonFocused:  button.Foreground(c(t.BgBase)).Background(c(t.Secondary)).Bold(true),

		HintKey:       lipgloss.NewStyle().Foreground(c(t.FgBright)).Bold(true),
		HintDesc:      lipgloss.NewStyle().Foreground(c(t.FgSubtle)),
		HintSeparator: lipgloss.NewStyle().Foreground(c(t.BgSurface2)),
	}
}
