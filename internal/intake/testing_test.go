package intake

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testWait = 2 * time.Second
	testTick = 5 * time.Millisecond
)

// manualScheduler records scheduled calls and fires them on demand.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	delay   time.Duration
	fn      func()
	done    bool
	stopped bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, delay: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.stopped = true
	return true
}

// pending returns the timers that have neither fired nor been stopped.
func (s *manualScheduler) pending() []*manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*manualTimer
	for _, t := range s.timers {
		if !t.done {
			out = append(out, t)
		}
	}
	return out
}

// fireAll runs every pending timer, like the delay elapsing.
func (s *manualScheduler) fireAll() {
	for _, t := range s.pending() {
		s.mu.Lock()
		t.done = true
		s.mu.Unlock()
		t.fn()
	}
}

type submitResult struct {
	receipt Receipt
	err     error
}

// gatedBackend blocks every submission until the test releases it.
type gatedBackend struct {
	mu      sync.Mutex
	calls   int
	forms   []FormData
	release chan submitResult
}

func newGatedBackend() *gatedBackend {
	return &gatedBackend{release: make(chan submitResult, 4)}
}

func (b *gatedBackend) Submit(ctx context.Context, form FormData) (Receipt, error) {
	b.mu.Lock()
	b.calls++
	b.forms = append(b.forms, form)
	b.mu.Unlock()

	select {
	case r := <-b.release:
		return r.receipt, r.err
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	}
}

func (b *gatedBackend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *gatedBackend) succeed(ref string) {
	b.release <- submitResult{receipt: Receipt{Reference: ref, ReceivedAt: time.Now()}}
}

func (b *gatedBackend) fail(err error) {
	b.release <- submitResult{err: err}
}

// dismissRecorder collects dismiss callbacks.
type dismissRecorder struct {
	mu      sync.Mutex
	reasons []DismissReason
}

func (r *dismissRecorder) record(reason DismissReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

func (r *dismissRecorder) all() []DismissReason {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DismissReason(nil), r.reasons...)
}

type fixture struct {
	ctrl      *Controller
	backend   *gatedBackend
	scheduler *manualScheduler
	dismissed *dismissRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		backend:   newGatedBackend(),
		scheduler: &manualScheduler{},
		dismissed: &dismissRecorder{},
	}
	f.ctrl = New(f.backend,
		WithScheduler(f.scheduler),
		WithOnDismiss(f.dismissed.record),
	)
	return f
}

// fillToLastStep completes steps 1 and 2 with valid data.
func (f *fixture) fillToLastStep(t *testing.T) {
	t.Helper()
	require.NoError(t, f.ctrl.UpdateField(FieldProjectName, "Acme"))
	require.NoError(t, f.ctrl.UpdateField(FieldDescription, "Build site"))
	require.True(t, f.ctrl.Advance())
	require.NoError(t, f.ctrl.ToggleService(ServiceMarketing))
	require.True(t, f.ctrl.Advance())
}

// fillAll completes every step and leaves the wizard ready to submit.
func (f *fixture) fillAll(t *testing.T) {
	t.Helper()
	f.fillToLastStep(t)
	require.NoError(t, f.ctrl.UpdateField(FieldBudget, "5000-10000"))
	require.NoError(t, f.ctrl.UpdateField(FieldTimeline, "1-2"))
	require.True(t, f.ctrl.CanSubmit())
}

func (f *fixture) waitForStatus(t *testing.T, want Status) {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.ctrl.State().Status == want
	}, testWait, testTick, "status never became %s", want)
}
