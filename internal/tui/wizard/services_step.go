package wizard

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/intake/internal/logger"
	"github.com/mark3labs/intake/internal/tui/theme"
)

// ServicesStep is a checkbox list over the service catalog.
type ServicesStep struct {
	editor   FormEditor
	services []string
	selected intake.ServiceSet
	cursor   int
	focused  bool
}

// NewServicesStep creates the services selection step.
func NewServicesStep(ed FormEditor) *ServicesStep {
	return &ServicesStep{
		editor:   ed,
		services: intake.ServiceCatalog,
		selected: intake.NewServiceSet(),
	}
}

// Init focuses the list.
func (s *ServicesStep) Init() tea.Cmd { return s.FocusFirst() }

// FocusFirst focuses the list.
func (s *ServicesStep) FocusFirst() tea.Cmd {
	s.focused = true
	return nil
}

// FocusLast focuses the list.
func (s *ServicesStep) FocusLast() tea.Cmd { return s.FocusFirst() }

// Blur removes focus from the list.
func (s *ServicesStep) Blur() { s.focused = false }

// SetSize is a no-op; the list is as tall as the catalog.
func (s *ServicesStep) SetSize(width, height int) {}

// Sync mirrors the form's selection.
func (s *ServicesStep) Sync(form intake.FormData) {
	s.selected = form.Services.Clone()
}

// Update handles messages for the services step.
func (s *ServicesStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.services)-1 {
			s.cursor++
		}
	case " ", "space", "x":
		name := s.services[s.cursor]
		if err := s.editor.ToggleService(name); err != nil {
			logger.Debug("Ignoring toggle of %s: %v", name, err)
		}
	case "enter":
		return func() tea.Msg { return AdvanceRequestedMsg{} }
	case "tab":
		return func() tea.Msg { return TabExitForwardMsg{} }
	case "shift+tab":
		return func() tea.Msg { return TabExitBackwardMsg{} }
	}
	return nil
}

// View renders the services step.
func (s *ServicesStep) View() string {
	st := theme.Current().S()
	var b strings.Builder

	b.WriteString(st.Label.Render("Select Services *"))
	b.WriteString("\n\n")
	for i, name := range s.services {
		checked := s.selected.Has(name)
		line := checkbox(checked) + " " + name
		switch {
		case s.focused && i == s.cursor:
			line = st.OptionCursor.Render("› " + line)
		case checked:
			line = st.OptionSelected.Render("  " + line)
		default:
			line = st.OptionNormal.Render("  " + line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(renderHintBar("↑↓", "navigate", "space", "toggle", "enter", "next", "esc", "close"))
	return b.String()
}
