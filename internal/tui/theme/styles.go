package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	ModalContainer lipgloss.Style
	ModalTitle     lipgloss.Style
	StepDesc       lipgloss.Style
	Label          lipgloss.Style
	Error          lipgloss.Style
	Success        lipgloss.Style

	ProgressDone    lipgloss.Style
	ProgressCurrent lipgloss.Style
	ProgressPending lipgloss.Style

	OptionSelected lipgloss.Style
	OptionCursor   lipgloss.Style
	OptionNormal   lipgloss.Style

	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style

	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style
}
