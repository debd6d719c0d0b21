// Package testfixtures provides mock implementations and test utilities for TUI testing.
//
//   - MockBackend: a submission backend that blocks until the test decides the outcome
//   - MockSender: records messages a model would send to its program
//
// All mocks are thread-safe and provide verification methods for assertions in tests.
//
// Example usage:
//
//	func TestMyComponent(t *testing.T) {
//	    backend := testfixtures.NewMockBackend()
//	    m := wizard.New(backend)
//	    // ... drive m to the submit step ...
//	    backend.Succeed()
//	    require.Equal(t, 1, backend.Calls())
//	}
package testfixtures

import (
	"context"
	"sync"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/intake/internal/intake"
)

type submitResult struct {
	receipt intake.Receipt
	err     error
}

// MockBackend implements intake.Backend. Each Submit call blocks until
// Succeed or Fail releases it, or its context is cancelled.
type MockBackend struct {
	mu      sync.Mutex
	calls   int
	forms   []intake.FormData
	release chan submitResult
}

// NewMockBackend creates a MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{release: make(chan submitResult, 8)}
}

// Submit records the form and waits for the outcome.
func (m *MockBackend) Submit(ctx context.Context, form intake.FormData) (intake.Receipt, error) {
	m.mu.Lock()
	m.calls++
	m.forms = append(m.forms, form)
	m.mu.Unlock()

	select {
	case r := <-m.release:
		return r.receipt, r.err
	case <-ctx.Done():
		return intake.Receipt{}, ctx.Err()
	}
}

// Succeed releases one submission with FixedReceipt.
func (m *MockBackend) Succeed() {
	m.release <- submitResult{receipt: FixedReceipt()}
}

// Fail releases one submission with err.
func (m *MockBackend) Fail(err error) {
	m.release <- submitResult{err: err}
}

// Calls returns the number of Submit calls.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Forms returns the submitted forms in order.
func (m *MockBackend) Forms() []intake.FormData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]intake.FormData(nil), m.forms...)
}

// MockSender records messages sent to a program.
type MockSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

// Send records msg.
func (s *MockSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

// Messages returns everything sent so far.
func (s *MockSender) Messages() []tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tea.Msg(nil), s.msgs...)
}

// Find returns the first recorded message matching pred.
func (s *MockSender) Find(pred func(tea.Msg) bool) (tea.Msg, bool) {
	for _, msg := range s.Messages() {
		if pred(msg) {
			return msg, true
		}
	}
	return nil, false
}
