// Package wizard is the terminal front end of the project-intake wizard.
// It renders controller snapshots and turns key presses into intents.
package wizard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/intake/internal/logger"
	"github.com/mark3labs/intake/internal/tui/theme"
)

const dialogTitle = "Start Your Project"

// ProgramSender is an interface for sending messages to the Bubbletea program.
// This allows for easier testing by mocking the Send method.
type ProgramSender interface {
	Send(tea.Msg)
}

// senderProxy forwards controller callbacks into the program once it exists.
// Sends happen on their own goroutine because callbacks can fire from inside
// Update, and Program.Send blocks until the event loop receives the message.
type senderProxy struct {
	mu sync.Mutex
	p  ProgramSender
}

func (s *senderProxy) set(p ProgramSender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
}

func (s *senderProxy) send(msg tea.Msg) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		go p.Send(msg)
	}
}

// Result describes how the wizard ended.
type Result struct {
	Reason    intake.DismissReason
	Receipt   *intake.Receipt
	Cancelled bool // ctrl+c, possibly mid-submission
}

// stepView is implemented by each step's component.
type stepView interface {
	Init() tea.Cmd
	FocusFirst() tea.Cmd
	FocusLast() tea.Cmd
	Blur()
	SetSize(width, height int)
	Sync(form intake.FormData)
	Update(msg tea.Msg) tea.Cmd
	View() string
}

// WizardModel is the main BubbleTea model for the intake wizard.
type WizardModel struct {
	ctrl      *intake.Controller
	proxy     *senderProxy
	state     intake.State
	steps     []stepView
	buttonBar *ButtonBar
	spinner   spinner.Model
	width     int
	height    int

	lastReceipt *intake.Receipt
	result      Result
	done        bool
}

// New creates the wizard model and its controller session. The step
// components follow intake.DefaultSteps, so opts must not replace the steps.
func New(backend intake.Backend, opts ...intake.Option) *WizardModel {
	proxy := &senderProxy{}
	opts = append(opts,
		intake.WithOnChange(func(s intake.State) { proxy.send(StateChangedMsg{State: s}) }),
		intake.WithOnDismiss(func(r intake.DismissReason) { proxy.send(DismissMsg{Reason: r}) }),
	)
	ctrl := intake.New(backend, opts...)

	t := theme.Current()
	s := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary))),
	)

	m := &WizardModel{
		ctrl:    ctrl,
		proxy:   proxy,
		spinner: s,
		width:   80,
		height:  24,
		steps: []stepView{
			NewDetailsStep(ctrl),
			NewServicesStep(ctrl),
			NewBudgetTimelineStep(ctrl),
		},
	}
	m.state = ctrl.State()
	m.buttonBar = NewButtonBar(buttonsFor(m.state))
	return m
}

// SetProgram wires controller callbacks to a running program.
func (m *WizardModel) SetProgram(p ProgramSender) {
	m.proxy.set(p)
}

// Controller returns the wizard's controller.
func (m *WizardModel) Controller() *intake.Controller {
	return m.ctrl
}

// Result returns how the wizard ended. Only meaningful after it quit.
func (m *WizardModel) Result() Result {
	return m.result
}

// Run is the entry point for the wizard. It runs a standalone BubbleTea
// program and tears the controller session down on exit.
func Run(ctx context.Context, backend intake.Backend, opts ...intake.Option) (*Result, error) {
	m := New(backend, append(opts, intake.WithContext(ctx))...)
	defer m.ctrl.Teardown()

	p := tea.NewProgram(m, tea.WithContext(ctx))
	m.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	wizModel, ok := finalModel.(*WizardModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}

	res := wizModel.Result()
	return &res, nil
}

// Init initializes the wizard model.
func (m *WizardModel) Init() tea.Cmd {
	return m.steps[m.state.StepIndex].Init()
}

// Update handles messages for the wizard.
func (m *WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case StateChangedMsg:
		if msg.State.Receipt != nil {
			r := *msg.State.Receipt
			m.lastReceipt = &r
		}
		// The controller is re-read so that out-of-order deliveries cannot
		// regress the view.
		return m, m.refresh()

	case DismissMsg:
		return m, m.finish(msg.Reason)

	case spinner.TickMsg:
		if m.state.Status != intake.StatusSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case AdvanceRequestedMsg:
		return m, m.advance()

	case TabExitForwardMsg:
		m.focusButtons(true)
		return m, nil

	case TabExitBackwardMsg:
		m.focusButtons(false)
		return m, nil

	case DescriptionEditedMsg:
		cmd := m.steps[0].Update(msg)
		return m, tea.Batch(cmd, m.refresh())

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}

	// Forward everything else (cursor blink etc.) to the current step.
	return m, m.steps[m.state.StepIndex].Update(msg)
}

func (m *WizardModel) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.result.Cancelled = true
		m.ctrl.Teardown()
		m.done = true
		return tea.Quit
	case "esc":
		return m.close()
	}

	if m.state.Status == intake.StatusSubmitting || m.state.Status == intake.StatusSucceeded {
		return nil
	}

	switch msg.String() {
	case "ctrl+n":
		return m.advance()
	case "ctrl+p":
		return m.back()
	}

	if m.buttonBar.IsFocused() {
		switch msg.String() {
		case "tab", "right":
			if !m.buttonBar.FocusNext() {
				return m.steps[m.state.StepIndex].FocusFirst()
			}
			return nil
		case "shift+tab", "left":
			if !m.buttonBar.FocusPrev() {
				return m.steps[m.state.StepIndex].FocusLast()
			}
			return nil
		case "enter", "space", " ":
			return m.activate(m.buttonBar.FocusedButton())
		}
		return nil
	}

	cmd := m.steps[m.state.StepIndex].Update(msg)
	return tea.Batch(cmd, m.refresh())
}

// focusButtons moves keyboard focus from the step content to the button
// bar. If no button is enabled, focus wraps back into the step.
func (m *WizardModel) focusButtons(first bool) {
	step := m.steps[m.state.StepIndex]
	step.Blur()
	ok := m.buttonBar.FocusLast()
	if first {
		ok = m.buttonBar.Focus()
	}
	if !ok {
		if first {
			step.FocusFirst()
		} else {
			step.FocusLast()
		}
	}
}

func (m *WizardModel) activate(id ButtonID) tea.Cmd {
	switch id {
	case ButtonBack:
		return m.back()
	case ButtonClose:
		return m.close()
	case ButtonNext, ButtonSubmit:
		return m.advance()
	}
	return nil
}

// advance moves to the next step, or submits on the last one.
func (m *WizardModel) advance() tea.Cmd {
	if m.state.IsLastStep() {
		if !m.ctrl.Submit() {
			return nil
		}
		return tea.Batch(m.refresh(), m.spinner.Tick)
	}
	if !m.ctrl.Advance() {
		return nil
	}
	return m.refresh()
}

func (m *WizardModel) back() tea.Cmd {
	if !m.ctrl.Retreat() {
		return nil
	}
	return m.refresh()
}

func (m *WizardModel) close() tea.Cmd {
	if !m.ctrl.Close() {
		return nil
	}
	return m.finish(intake.DismissClosed)
}

func (m *WizardModel) finish(reason intake.DismissReason) tea.Cmd {
	if m.done {
		return nil
	}
	m.done = true
	m.result.Reason = reason
	if reason == intake.DismissCompleted {
		m.result.Receipt = m.lastReceipt
	}
	logger.Debug("Wizard finished (%s)", reason)
	return tea.Quit
}

// refresh re-reads the controller and brings the components in line with it.
func (m *WizardModel) refresh() tea.Cmd {
	prev := m.state
	m.state = m.ctrl.State()
	if m.state.Receipt != nil {
		r := *m.state.Receipt
		m.lastReceipt = &r
	}

	for _, step := range m.steps {
		step.Sync(m.state.Form)
	}
	m.buttonBar.SetButtons(buttonsFor(m.state))

	if prev.StepIndex == m.state.StepIndex {
		return nil
	}
	m.steps[prev.StepIndex].Blur()
	m.buttonBar.Blur()
	m.updateSizes()
	return m.steps[m.state.StepIndex].Init()
}

// contentWidth is the usable width inside the modal.
func (m *WizardModel) contentWidth() int {
	w := m.width - 10
	if w < 60 {
		w = 60
	}
	if w > 100 {
		w = 100
	}
	return w - 6 // border and padding
}

func (m *WizardModel) updateSizes() {
	w := m.contentWidth()
	h := m.height - 14
	if h < 6 {
		h = 6
	}
	m.buttonBar.SetWidth(w)
	for _, step := range m.steps {
		step.SetSize(w, h)
	}
}

// View renders the wizard UI.
func (m *WizardModel) View() tea.View {
	var view tea.View
	view.AltScreen = true

	content := m.renderModal()

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// renderModal renders the dialog body centered on screen.
func (m *WizardModel) renderModal() string {
	st := theme.Current().S()
	width := m.contentWidth()
	steps := m.ctrl.Steps()

	sections := []string{
		st.ModalTitle.Render(dialogTitle),
		"",
		renderProgress(steps, m.state),
		"",
	}

	switch m.state.Status {
	case intake.StatusSucceeded:
		sections = append(sections, renderSuccess(m.state, width))
	default:
		sections = append(sections,
			renderStepHeader(steps[m.state.StepIndex], m.state),
			directionHint(m.state.Direction),
			m.steps[m.state.StepIndex].View(),
		)
		if m.state.Status == intake.StatusFailed {
			sections = append(sections, "", renderFailure(m.state.Err))
		}
		if m.state.Status == intake.StatusSubmitting {
			sections = append(sections, "", m.spinner.View()+" "+st.StepDesc.Render("Submitting your project..."))
		}
		sections = append(sections, "", m.buttonBar.Render())
	}

	modal := st.ModalContainer.Width(width + 6).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

// directionHint renders a faint arrow showing which way the last transition
// went, standing in for a slide animation.
func directionHint(d intake.Direction) string {
	st := theme.Current().S()
	switch d {
	case intake.DirectionForward:
		return st.ProgressPending.Render("→")
	case intake.DirectionBackward:
		return st.ProgressPending.Render("←")
	default:
		return ""
	}
}
