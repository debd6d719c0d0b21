package wizard

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/intake/internal/logger"
	"github.com/mark3labs/intake/internal/tui/theme"
)

// option is one choice in a radio group.
type option struct {
	value string
	label string
}

// radioGroup is a single-select list bound to one form field.
type radioGroup struct {
	field   intake.Field
	title   string
	options []option
	cursor  int
	value   string
}

func (g *radioGroup) view(focused bool) string {
	st := theme.Current().S()
	var b strings.Builder
	b.WriteString(st.Label.Render(g.title))
	b.WriteString("\n")
	for i, o := range g.options {
		selected := o.value == g.value
		line := radio(selected) + " " + o.label
		switch {
		case focused && i == g.cursor:
			line = st.OptionCursor.Render("› " + line)
		case selected:
			line = st.OptionSelected.Render("  " + line)
		default:
			line = st.OptionNormal.Render("  " + line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// BudgetTimelineStep picks a budget range and a timeline.
type BudgetTimelineStep struct {
	editor     FormEditor
	groups     [2]*radioGroup
	focusIndex int // 0=budget, 1=timeline, -1=blurred
}

// NewBudgetTimelineStep creates the budget and timeline step.
func NewBudgetTimelineStep(ed FormEditor) *BudgetTimelineStep {
	budget := &radioGroup{field: intake.FieldBudget, title: "Budget Range *"}
	for _, v := range intake.Budgets {
		budget.options = append(budget.options, option{value: string(v), label: v.Label()})
	}
	timeline := &radioGroup{field: intake.FieldTimeline, title: "Timeline *"}
	for _, v := range intake.Timelines {
		timeline.options = append(timeline.options, option{value: string(v), label: v.Label()})
	}

	return &BudgetTimelineStep{
		editor:     ed,
		groups:     [2]*radioGroup{budget, timeline},
		focusIndex: -1,
	}
}

// Init focuses the budget group.
func (s *BudgetTimelineStep) Init() tea.Cmd { return s.FocusFirst() }

// FocusFirst focuses the budget group.
func (s *BudgetTimelineStep) FocusFirst() tea.Cmd {
	s.focusIndex = 0
	return nil
}

// FocusLast focuses the timeline group.
func (s *BudgetTimelineStep) FocusLast() tea.Cmd {
	s.focusIndex = 1
	return nil
}

// Blur removes focus from both groups.
func (s *BudgetTimelineStep) Blur() { s.focusIndex = -1 }

// SetSize is a no-op; both groups have a fixed height.
func (s *BudgetTimelineStep) SetSize(width, height int) {}

// Sync mirrors the form's budget and timeline.
func (s *BudgetTimelineStep) Sync(form intake.FormData) {
	s.groups[0].value = string(form.Budget)
	s.groups[1].value = string(form.Timeline)
}

// Update handles messages for the budget and timeline step.
func (s *BudgetTimelineStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok || s.focusIndex < 0 {
		return nil
	}
	g := s.groups[s.focusIndex]

	switch keyMsg.String() {
	case "up", "k":
		if g.cursor > 0 {
			g.cursor--
		}
	case "down", "j":
		if g.cursor < len(g.options)-1 {
			g.cursor++
		}
	case " ", "space", "x":
		s.choose(g)
	case "enter":
		s.choose(g)
		if s.focusIndex == 0 {
			return s.FocusLast()
		}
		return func() tea.Msg { return AdvanceRequestedMsg{} }
	case "tab":
		if s.focusIndex == 1 {
			return func() tea.Msg { return TabExitForwardMsg{} }
		}
		return s.FocusLast()
	case "shift+tab":
		if s.focusIndex == 0 {
			return func() tea.Msg { return TabExitBackwardMsg{} }
		}
		return s.FocusFirst()
	}
	return nil
}

func (s *BudgetTimelineStep) choose(g *radioGroup) {
	value := g.options[g.cursor].value
	if err := s.editor.UpdateField(g.field, value); err != nil {
		logger.Debug("Ignoring %s selection: %v", g.field, err)
	}
}

// View renders the step with both groups side by side.
func (s *BudgetTimelineStep) View() string {
	left := s.groups[0].view(s.focusIndex == 0)
	right := s.groups[1].view(s.focusIndex == 1)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right))
	b.WriteString("\n")
	b.WriteString(renderHintBar("↑↓", "navigate", "space", "select", "tab", "switch", "ctrl+n", "submit", "esc", "close"))
	return b.String()
}
