package wizard

import "github.com/mark3labs/intake/internal/intake"

// StateChangedMsg carries a controller snapshot into the program. It is
// sent from the controller's change callback, which may run on the
// submission goroutine or the dismiss timer.
type StateChangedMsg struct {
	State intake.State
}

// DismissMsg asks the wizard to close.
type DismissMsg struct {
	Reason intake.DismissReason
}

// AdvanceRequestedMsg is sent by a step that wants the wizard to move on,
// as if Next (or Submit) had been pressed.
type AdvanceRequestedMsg struct{}

// DescriptionEditedMsg is sent when the external editor returns.
type DescriptionEditedMsg struct {
	Content string
	Err     error
}

// TabExitForwardMsg is sent when Tab is pressed on the last input.
// Parent should move focus to buttons.
type TabExitForwardMsg struct{}

// TabExitBackwardMsg is sent when Shift+Tab is pressed on the first input.
// Parent should move focus to buttons (from end).
type TabExitBackwardMsg struct{}
