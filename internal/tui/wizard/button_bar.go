package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/intake/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// ButtonID identifies what a button does.
type ButtonID int

const (
	ButtonNone ButtonID = iota
	ButtonBack
	ButtonClose
	ButtonNext
	ButtonSubmit
)

// Button represents a single button in the button bar.
type Button struct {
	ID    ButtonID
	Label string
	State ButtonState
}

// ButtonBar manages a set of buttons with consistent styling and keyboard
// focus. focusIdx is -1 when the bar does not have focus.
type ButtonBar struct {
	buttons  []Button
	focusIdx int
	width    int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons:  buttons,
		focusIdx: -1,
		width:    60,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// SetButtons replaces the buttons, keeping focus on the same button ID when
// it is still present and enabled.
func (b *ButtonBar) SetButtons(buttons []Button) {
	focused := b.FocusedButton()
	b.buttons = buttons
	if b.focusIdx < 0 {
		return
	}
	b.focusIdx = -1
	for i, btn := range buttons {
		if btn.ID == focused && btn.State != ButtonDisabled {
			b.focusIdx = i
			return
		}
	}
	b.Focus()
}

// Focus focuses the first enabled button. Returns false if none is enabled.
func (b *ButtonBar) Focus() bool {
	b.focusIdx = -1
	return b.FocusNext()
}

// FocusLast focuses the last enabled button.
func (b *ButtonBar) FocusLast() bool {
	b.focusIdx = len(b.buttons)
	return b.FocusPrev()
}

// Blur removes focus from the bar.
func (b *ButtonBar) Blur() {
	b.focusIdx = -1
}

// IsFocused reports whether a button has focus.
func (b *ButtonBar) IsFocused() bool {
	return b.focusIdx >= 0
}

// FocusNext moves focus to the next enabled button. Returns false when
// there is none, leaving the bar blurred.
func (b *ButtonBar) FocusNext() bool {
	for i := b.focusIdx + 1; i < len(b.buttons); i++ {
		if b.buttons[i].State != ButtonDisabled {
			b.focusIdx = i
			return true
		}
	}
	b.focusIdx = -1
	return false
}

// FocusPrev moves focus to the previous enabled button. Returns false when
// there is none, leaving the bar blurred.
func (b *ButtonBar) FocusPrev() bool {
	start := b.focusIdx - 1
	if start >= len(b.buttons) {
		start = len(b.buttons) - 1
	}
	for i := start; i >= 0; i-- {
		if b.buttons[i].State != ButtonDisabled {
			b.focusIdx = i
			return true
		}
	}
	b.focusIdx = -1
	return false
}

// FocusedButton returns the ID of the focused button, or ButtonNone.
func (b *ButtonBar) FocusedButton() ButtonID {
	if b.focusIdx < 0 || b.focusIdx >= len(b.buttons) {
		return ButtonNone
	}
	return b.buttons[b.focusIdx].ID
}

// Render renders the button bar with proper spacing and styling.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	s := theme.Current().S()
	rendered := make([]string, 0, len(b.buttons))
	for i, btn := range b.buttons {
		state := btn.State
		if i == b.focusIdx && state != ButtonDisabled {
			state = ButtonFocused
		}
		switch state {
		case ButtonDisabled:
			rendered = append(rendered, s.ButtonDisabled.Render(btn.Label))
		case ButtonFocused:
			rendered = append(rendered, s.ButtonFocused.Render(btn.Label))
		default:
			rendered = append(rendered, s.ButtonNormal.Render(btn.Label))
		}
	}

	return lipgloss.PlaceHorizontal(b.width, lipgloss.Center, strings.Join(rendered, ""))
}

// buttonsFor builds the navigation buttons for a wizard state. Back is
// omitted on the first step and every control is disabled while a
// submission is in flight.
func buttonsFor(s intake.State) []Button {
	submitting := s.Status == intake.StatusSubmitting
	enabled := func(ok bool) ButtonState {
		if ok {
			return ButtonNormal
		}
		return ButtonDisabled
	}

	buttons := make([]Button, 0, 3)
	if s.StepIndex > 0 {
		buttons = append(buttons, Button{ID: ButtonBack, Label: "← Back", State: enabled(!submitting)})
	}
	buttons = append(buttons, Button{ID: ButtonClose, Label: "Close", State: enabled(!submitting)})

	if !s.IsLastStep() {
		buttons = append(buttons, Button{ID: ButtonNext, Label: "Next →", State: enabled(s.CanAdvance)})
		return buttons
	}

	label := "Submit"
	switch s.Status {
	case intake.StatusSubmitting:
		label = "Submitting..."
	case intake.StatusFailed:
		label = "Retry"
	}
	return append(buttons, Button{ID: ButtonSubmit, Label: label, State: enabled(s.CanSubmit)})
}
