package wizard

import (
	"fmt"
	"strings"

	"charm.land/glamour/v2"
	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/intake/internal/tui/theme"
)

const (
	successHeadline = "Project Submitted!"
	successMessage  = "We'll review your project details and get back to you within 24 hours."
)

// receiptMarkdown builds the markdown summary shown after a successful
// submission.
func receiptMarkdown(form intake.FormData, receipt *intake.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n%s\n\n", successHeadline, successMessage)
	if receipt != nil {
		fmt.Fprintf(&b, "**Reference:** `%s`\n\n", receipt.Reference)
	}
	fmt.Fprintf(&b, "- **Project:** %s\n", form.ProjectName)
	fmt.Fprintf(&b, "- **Services:** %s\n", strings.Join(form.Services.List(), ", "))
	fmt.Fprintf(&b, "- **Budget:** %s\n", form.Budget.Label())
	fmt.Fprintf(&b, "- **Timeline:** %s\n", form.Timeline.Label())
	return b.String()
}

// renderMarkdown renders markdown with glamour. Falls back to the raw text
// if rendering fails.
func renderMarkdown(content string, width int) string {
	if width > 100 {
		width = 100
	}

	style := "dark"
	if !theme.Current().IsDark {
		style = "light"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}

// renderSuccess renders the success screen.
func renderSuccess(s intake.State, width int) string {
	st := theme.Current().S()
	check := st.Success.Render("✓")
	return check + "\n\n" + renderMarkdown(receiptMarkdown(s.Form, s.Receipt), width) + "\n\n" +
		renderHintBar("esc", "close now")
}

// renderFailure renders the error banner shown under the last step.
func renderFailure(err error) string {
	st := theme.Current().S()
	msg := "submission failed"
	if err != nil {
		msg = err.Error()
	}
	return st.Error.Render("✗ Submission failed: "+msg) + "\n" +
		st.StepDesc.Render("Edit the form or press Retry to submit again.")
}
