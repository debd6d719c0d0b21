package wizard

import (
	"os"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/intake/internal/logger"
	"github.com/mark3labs/intake/internal/tui/theme"
)

// FormEditor is the part of the controller the step components write to.
type FormEditor interface {
	UpdateField(field intake.Field, value any) error
	ToggleService(name string) error
}

// DetailsStep collects the project name and description.
type DetailsStep struct {
	editor     FormEditor
	nameInput  textinput.Model
	descInput  textarea.Model
	focusIndex int // 0=name, 1=description
	width      int
	tmpFile    string
}

// NewDetailsStep creates the project details step.
func NewDetailsStep(ed FormEditor) *DetailsStep {
	t := theme.Current()

	nameInput := textinput.New()
	nameInput.Placeholder = "Enter project name"
	nameInput.Prompt = ""
	nameInput.CharLimit = 120
	nameInput.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(t.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	})
	nameInput.SetWidth(50)

	descInput := textarea.New()
	descInput.Placeholder = "Describe your project"
	descInput.ShowLineNumbers = false
	descInput.Prompt = ""
	descInput.CharLimit = 2000
	descInput.SetWidth(50)
	descInput.SetHeight(5)

	return &DetailsStep{
		editor:    ed,
		nameInput: nameInput,
		descInput: descInput,
		width:     60,
	}
}

// Init focuses the name input.
func (d *DetailsStep) Init() tea.Cmd {
	return d.FocusFirst()
}

// FocusFirst focuses the name input.
func (d *DetailsStep) FocusFirst() tea.Cmd {
	d.focusIndex = 0
	d.descInput.Blur()
	return d.nameInput.Focus()
}

// FocusLast focuses the description.
func (d *DetailsStep) FocusLast() tea.Cmd {
	d.focusIndex = 1
	d.nameInput.Blur()
	return d.descInput.Focus()
}

// Blur removes focus from both inputs.
func (d *DetailsStep) Blur() {
	d.nameInput.Blur()
	d.descInput.Blur()
}

// SetSize updates the dimensions for the step.
func (d *DetailsStep) SetSize(width, height int) {
	d.width = width
	d.nameInput.SetWidth(width - 4)
	d.descInput.SetWidth(width - 4)
	h := height - 8
	if h < 3 {
		h = 3
	}
	if h > 8 {
		h = 8
	}
	d.descInput.SetHeight(h)
}

// Sync copies form values into the inputs when they differ, e.g. after a
// reset.
func (d *DetailsStep) Sync(form intake.FormData) {
	if d.nameInput.Value() != form.ProjectName {
		d.nameInput.SetValue(form.ProjectName)
	}
	if d.descInput.Value() != form.Description {
		d.descInput.SetValue(form.Description)
	}
}

// Update handles messages for the details step.
func (d *DetailsStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case DescriptionEditedMsg:
		d.cleanupTmpFile()
		if msg.Err != nil {
			logger.Warn("Editor failed: %v", msg.Err)
			return nil
		}
		content := strings.TrimRight(msg.Content, "\n")
		d.descInput.SetValue(content)
		d.push(intake.FieldDescription, content)
		return nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab":
			if d.focusIndex == 1 {
				return func() tea.Msg { return TabExitForwardMsg{} }
			}
			return d.FocusLast()
		case "shift+tab":
			if d.focusIndex == 0 {
				return func() tea.Msg { return TabExitBackwardMsg{} }
			}
			return d.FocusFirst()
		case "enter":
			if d.focusIndex == 0 {
				return d.FocusLast()
			}
		case "ctrl+e":
			return d.openEditor()
		}
	}

	var cmd tea.Cmd
	if d.focusIndex == 0 {
		before := d.nameInput.Value()
		d.nameInput, cmd = d.nameInput.Update(msg)
		if v := d.nameInput.Value(); v != before {
			d.push(intake.FieldProjectName, v)
		}
	} else {
		before := d.descInput.Value()
		d.descInput, cmd = d.descInput.Update(msg)
		if v := d.descInput.Value(); v != before {
			d.push(intake.FieldDescription, v)
		}
	}
	return cmd
}

func (d *DetailsStep) push(field intake.Field, value string) {
	if err := d.editor.UpdateField(field, value); err != nil {
		logger.Debug("Ignoring %s edit: %v", field, err)
	}
}

// openEditor launches $EDITOR with the current description.
func (d *DetailsStep) openEditor() tea.Cmd {
	tmpfile, err := os.CreateTemp("", "intake_description_*.md")
	if err != nil {
		return nil
	}
	if _, err := tmpfile.WriteString(d.descInput.Value()); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()
	d.tmpFile = tmpfile.Name()

	cmd, err := editor.Command("intake", tmpfile.Name())
	if err != nil {
		d.cleanupTmpFile()
		return nil
	}

	path := tmpfile.Name()
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			return DescriptionEditedMsg{Err: err}
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return DescriptionEditedMsg{Err: err}
		}
		return DescriptionEditedMsg{Content: string(content)}
	})
}

func (d *DetailsStep) cleanupTmpFile() {
	if d.tmpFile != "" {
		_ = os.Remove(d.tmpFile)
		d.tmpFile = ""
	}
}

// View renders the details step.
func (d *DetailsStep) View() string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.Label.Render("Project Name *"))
	b.WriteString("\n")
	b.WriteString(d.nameInput.View())
	b.WriteString("\n\n")
	b.WriteString(s.Label.Render("Project Description *"))
	b.WriteString("\n")
	b.WriteString(d.descInput.View())
	b.WriteString("\n\n")

	pairs := []string{"tab", "next field"}
	if os.Getenv("EDITOR") != "" {
		pairs = append(pairs, "ctrl+e", "edit in $EDITOR")
	}
	pairs = append(pairs, "ctrl+n", "next", "esc", "close")
	b.WriteString(renderHintBar(pairs...))

	return b.String()
}
