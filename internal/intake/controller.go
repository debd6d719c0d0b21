// Package intake implements the project-intake wizard: the step sequence,
// per-step validation, the single-flight submission lifecycle and the
// post-success auto-dismiss timer. It holds no rendering logic; hosts (the
// TUI and the MCP server) dispatch intents and render State snapshots.
package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/intake/internal/logger"
)

// DefaultDismissDelay is how long the success screen stays up before the
// wizard resets and asks the host to dismiss it.
const DefaultDismissDelay = 2 * time.Second

var (
	// ErrFrozen is returned by field updates once a submission has started.
	ErrFrozen = errors.New("form is frozen while submitting")
	// ErrTornDown is returned by field updates after Teardown.
	ErrTornDown = errors.New("wizard session has been torn down")
)

// Direction records which way the last step transition moved. It is a
// rendering hint only.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionForward
	DirectionBackward
)

// String returns the string representation of a direction
func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionBackward:
		return "backward"
	default:
		return "none"
	}
}

// Status is the submission lifecycle status.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSucceeded
	// StatusFailed means the backend rejected the last attempt. The wizard
	// stays on the last step and the form may be edited or re-submitted.
	StatusFailed
)

// String returns the string representation of a status
func (s Status) String() string {
	switch s {
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// DismissReason tells the host why the wizard asked to be dismissed.
type DismissReason int

const (
	// DismissClosed follows an explicit Close.
	DismissClosed DismissReason = iota
	// DismissCompleted follows the auto-reset after a successful submission.
	DismissCompleted
)

// String returns the string representation of a dismiss reason
func (r DismissReason) String() string {
	if r == DismissCompleted {
		return "completed"
	}
	return "closed"
}

// State is a read-only snapshot of the wizard.
type State struct {
	StepIndex  int // 0-based
	StepCount  int
	Direction  Direction
	Status     Status
	Form       FormData
	Receipt    *Receipt // set while Status is StatusSucceeded
	Err        error    // set while Status is StatusFailed
	CanAdvance bool
	CanSubmit  bool
}

// Step returns the 1-based step number.
func (s State) Step() int {
	return s.StepIndex + 1
}

// IsLastStep reports whether the wizard is on its final step.
func (s State) IsLastStep() bool {
	return s.StepIndex == s.StepCount-1
}

// Editable reports whether field updates are currently accepted.
func (s State) Editable() bool {
	return s.Status == StatusIdle || s.Status == StatusFailed
}

// Option configures a Controller.
type Option func(*Controller)

// WithSteps replaces the default step sequence.
func WithSteps(steps []Step) Option {
	return func(c *Controller) {
		if len(steps) > 0 {
			c.steps = append([]Step(nil), steps...)
		}
	}
}

// WithScheduler replaces the wall-clock scheduler used for the dismiss delay.
// The scheduler must not invoke f synchronously from AfterFunc.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

// WithDismissDelay sets how long the success state is held before reset.
func WithDismissDelay(d time.Duration) Option {
	return func(c *Controller) { c.dismissDelay = d }
}

// WithOnChange registers a callback invoked with every new state.
// Callbacks run outside the controller lock and may call back into it.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithOnDismiss registers a callback invoked when the host should dismiss
// the wizard.
func WithOnDismiss(fn func(DismissReason)) Option {
	return func(c *Controller) { c.onDismiss = fn }
}

// WithContext sets the parent context of submission calls.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) { c.baseCtx = ctx }
}

// Controller owns the wizard state and is the only place it is mutated.
// Intents are expected to come from one host goroutine; the mutex exists
// because backend completions and the dismiss timer arrive on their own.
type Controller struct {
	mu sync.Mutex

	steps        []Step
	backend      Backend
	scheduler    Scheduler
	dismissDelay time.Duration
	onChange     func(State)
	onDismiss    func(DismissReason)
	baseCtx      context.Context

	step      int
	direction Direction
	status    Status
	form      FormData
	receipt   *Receipt
	err       error

	// generation is bumped on every reset; async completions carry the
	// generation they were started in and are dropped when it has moved on.
	generation   uint64
	cancelSubmit context.CancelFunc
	timer        Timer
	tornDown     bool
}

// New opens a wizard session backed by backend.
func New(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		steps:        DefaultSteps(),
		backend:      backend,
		scheduler:    ClockScheduler{},
		dismissDelay: DefaultDismissDelay,
		baseCtx:      context.Background(),
		form:         EmptyForm(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Steps returns the step sequence.
func (c *Controller) Steps() []Step {
	return append([]Step(nil), c.steps...)
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// CanAdvance reports whether Advance would move forward right now.
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canAdvanceLocked()
}

// CanSubmit reports whether Submit would start a submission right now.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmitLocked()
}

// Advance moves to the next step if the current one validates.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	if !c.canAdvanceLocked() {
		logger.Debug("Advance rejected on step %d (status=%s)", c.step+1, c.status)
		c.mu.Unlock()
		return false
	}
	c.step++
	c.direction = DirectionForward
	logger.Debug("Advanced to step %d", c.step+1)
	s := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(s)
	return true
}

// Retreat moves to the previous step. It needs no validation.
func (c *Controller) Retreat() bool {
	c.mu.Lock()
	if !c.editableLocked() || c.step == 0 {
		logger.Debug("Retreat rejected on step %d (status=%s)", c.step+1, c.status)
		c.mu.Unlock()
		return false
	}
	c.step--
	c.direction = DirectionBackward
	c.clearFailureLocked()
	logger.Debug("Retreated to step %d", c.step+1)
	s := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(s)
	return true
}

// UpdateField merges value into the form without moving between steps.
// See FormData for the value types each field accepts.
func (c *Controller) UpdateField(field Field, value any) error {
	return c.edit(func(f *FormData) error {
		return f.apply(field, value)
	})
}

// ToggleService selects or deselects a catalog service.
func (c *Controller) ToggleService(name string) error {
	return c.edit(func(f *FormData) error {
		if !IsService(name) {
			return fmt.Errorf("%w: unknown service %q", ErrInvalidValue, name)
		}
		if f.Services.Has(name) {
			delete(f.Services, name)
		} else {
			f.Services[name] = struct{}{}
		}
		return nil
	})
}

func (c *Controller) edit(mutate func(*FormData) error) error {
	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return ErrTornDown
	}
	if !c.editableLocked() {
		c.mu.Unlock()
		return ErrFrozen
	}
	next := c.form.Clone()
	if err := mutate(&next); err != nil {
		c.mu.Unlock()
		return err
	}
	c.form = next
	c.clearFailureLocked()
	s := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(s)
	return nil
}

// Submit starts the single asynchronous backend call for this session.
// It is a no-op unless the wizard is on the last step with valid data and
// no submission is outstanding.
func (c *Controller) Submit() bool {
	c.mu.Lock()
	if !c.canSubmitLocked() {
		logger.Debug("Submit rejected on step %d (status=%s)", c.step+1, c.status)
		c.mu.Unlock()
		return false
	}
	c.status = StatusSubmitting
	c.err = nil
	c.receipt = nil
	ctx, cancel := context.WithCancel(c.baseCtx)
	c.cancelSubmit = cancel
	gen := c.generation
	form := c.form.Clone()
	logger.Info("Submitting project %q", form.ProjectName)
	s := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(s)
	go c.runSubmission(ctx, gen, form)
	return true
}

func (c *Controller) runSubmission(ctx context.Context, gen uint64, form FormData) {
	receipt, err := c.backend.Submit(ctx, form)
	c.finishSubmission(gen, receipt, err)
}

func (c *Controller) finishSubmission(gen uint64, receipt Receipt, err error) {
	c.mu.Lock()
	if gen != c.generation || c.tornDown || c.status != StatusSubmitting {
		c.mu.Unlock()
		logger.Debug("Dropping stale submission result (generation %d)", gen)
		return
	}
	if c.cancelSubmit != nil {
		c.cancelSubmit()
		c.cancelSubmit = nil
	}

	if err != nil {
		c.status = StatusFailed
		c.err = err
		logger.Warn("Submission failed: %v", err)
		s := c.snapshotLocked()
		c.mu.Unlock()
		c.emit(s)
		return
	}

	c.status = StatusSucceeded
	c.receipt = &receipt
	c.timer = c.scheduler.AfterFunc(c.dismissDelay, func() {
		c.completeAndClose(gen)
	})
	logger.Info("Submission accepted: %s", receipt.Reference)
	s := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(s)
}

// completeAndClose runs when the dismiss delay after a success elapses.
func (c *Controller) completeAndClose(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.tornDown || c.status != StatusSucceeded {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.resetLocked()
	s := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(s)
	c.dismiss(DismissCompleted)
}

// Close discards the form and asks the host to dismiss the wizard. It is
// rejected while a submission is in flight.
func (c *Controller) Close() bool {
	c.mu.Lock()
	if c.tornDown || c.status == StatusSubmitting {
		logger.Debug("Close rejected (status=%s)", c.status)
		c.mu.Unlock()
		return false
	}
	c.stopTimerLocked()
	c.resetLocked()
	s := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(s)
	c.dismiss(DismissClosed)
	return true
}

// Teardown is called when the host destroys the session. It cancels any
// in-flight submission and the pending dismiss timer; every later intent
// is a no-op and late completions are discarded.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return
	}
	if c.cancelSubmit != nil {
		c.cancelSubmit()
	}
	c.stopTimerLocked()
	c.resetLocked()
	c.tornDown = true
	logger.Debug("Wizard session torn down")
}

func (c *Controller) editableLocked() bool {
	return !c.tornDown && (c.status == StatusIdle || c.status == StatusFailed)
}

func (c *Controller) stepValidLocked() bool {
	v := c.steps[c.step].Validate
	return v != nil && v(c.form)
}

func (c *Controller) canAdvanceLocked() bool {
	return c.editableLocked() && c.step < len(c.steps)-1 && c.stepValidLocked()
}

func (c *Controller) canSubmitLocked() bool {
	return c.editableLocked() && c.step == len(c.steps)-1 && c.stepValidLocked()
}

func (c *Controller) clearFailureLocked() {
	if c.status == StatusFailed {
		c.status = StatusIdle
		c.err = nil
	}
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) resetLocked() {
	c.generation++
	c.cancelSubmit = nil
	c.step = 0
	c.direction = DirectionNone
	c.status = StatusIdle
	c.form = EmptyForm()
	c.receipt = nil
	c.err = nil
}

func (c *Controller) snapshotLocked() State {
	s := State{
		StepIndex:  c.step,
		StepCount:  len(c.steps),
		Direction:  c.direction,
		Status:     c.status,
		Form:       c.form.Clone(),
		Err:        c.err,
		CanAdvance: c.canAdvanceLocked(),
		CanSubmit:  c.canSubmitLocked(),
	}
	if c.receipt != nil {
		r := *c.receipt
		s.Receipt = &r
	}
	return s
}

func (c *Controller) emit(s State) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

func (c *Controller) dismiss(reason DismissReason) {
	logger.Debug("Wizard dismissed (%s)", reason)
	if c.onDismiss != nil {
		c.onDismiss(reason)
	}
}
