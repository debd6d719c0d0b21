package wizard

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/intake/internal/tui/theme"
)

// renderProgress renders the step indicator. Steps before the current one
// show a check mark; once the form is submitted every step is checked.
func renderProgress(steps []intake.Step, s intake.State) string {
	t := theme.Current()
	st := t.S()

	parts := make([]string, 0, len(steps)*2)
	for i, step := range steps {
		done := i < s.StepIndex || s.Status == intake.StatusSucceeded
		var marker string
		switch {
		case done:
			marker = st.ProgressDone.Render("✓ " + step.Title)
		case i == s.StepIndex:
			marker = st.ProgressCurrent.Render(fmt.Sprintf(" %d %s ", step.ID, step.Title))
		default:
			marker = st.ProgressPending.Render(fmt.Sprintf("%d %s", step.ID, step.Title))
		}
		parts = append(parts, marker)

		if i < len(steps)-1 {
			// Connectors behind completed steps blend success into primary.
			color := t.FgMuted
			if done {
				color = theme.InterpolateColor(t.Success, t.Primary, 0.5)
			}
			parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(" ── "))
		}
	}
	return strings.Join(parts, "")
}

// renderStepHeader renders "Step n of m" with the step's title and
// description.
func renderStepHeader(step intake.Step, s intake.State) string {
	st := theme.Current().S()
	title := fmt.Sprintf("Step %d of %d: %s", s.Step(), s.StepCount, step.Title)
	return st.ModalTitle.Render(title) + "\n" + st.StepDesc.Render(step.Description)
}
