package desk

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/intake/internal/logger"
	inats "github.com/mark3labs/intake/internal/nats"
	"github.com/nats-io/nats.go"
)

// ResponderOption configures a Responder.
type ResponderOption func(*Responder)

// WithSubject sets the subject the responder listens on.
func WithSubject(subject string) ResponderOption {
	return func(r *Responder) { r.subject = subject }
}

// WithSteps sets the step sequence submissions are validated against.
func WithSteps(steps []intake.Step) ResponderOption {
	return func(r *Responder) { r.steps = steps }
}

// WithLatency delays every reply, like a slow upstream would.
func WithLatency(d time.Duration) ResponderOption {
	return func(r *Responder) { r.latency = d }
}

// WithUnavailable makes the first n requests answer "unavailable".
// A negative n makes every request unavailable.
func WithUnavailable(n int) ResponderOption {
	return func(r *Responder) { r.unavailable = n }
}

// Responder answers submission requests on a NATS subject.
type Responder struct {
	nc          *nats.Conn
	subject     string
	steps       []intake.Step
	latency     time.Duration
	unavailable int

	mu  sync.Mutex
	sub *nats.Subscription

	handled  atomic.Int64
	accepted atomic.Int64
}

// NewResponder creates a responder on nc. Call Start to subscribe.
func NewResponder(nc *nats.Conn, opts ...ResponderOption) *Responder {
	r := &Responder{
		nc:      nc,
		subject: inats.SubjectSubmissions,
		steps:   intake.DefaultSteps(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start subscribes to the submission subject and flushes so that requests
// sent right after Start find a responder.
func (r *Responder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub != nil {
		return nil
	}

	sub, err := r.nc.Subscribe(r.subject, r.handle)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", r.subject, err)
	}
	if err := r.nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return fmt.Errorf("flushing subscription: %w", err)
	}
	r.sub = sub
	logger.Info("Intake desk listening on %s", r.subject)
	return nil
}

// Stop unsubscribes. Requests that arrive afterwards get no responder.
func (r *Responder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub == nil {
		return nil
	}
	err := r.sub.Unsubscribe()
	r.sub = nil
	return err
}

// Handled returns the number of requests answered so far.
func (r *Responder) Handled() int {
	return int(r.handled.Load())
}

// Accepted returns the number of submissions acknowledged so far.
func (r *Responder) Accepted() int {
	return int(r.accepted.Load())
}

func (r *Responder) handle(m *nats.Msg) {
	n := r.handled.Add(1)

	if r.latency > 0 {
		time.Sleep(r.latency)
	}

	res := r.evaluate(n, m.Data)
	data, err := json.Marshal(res)
	if err != nil {
		logger.Error("Failed to encode desk reply: %v", err)
		return
	}
	if err := m.Respond(data); err != nil {
		logger.Warn("Failed to respond to submission: %v", err)
	}
}

func (r *Responder) evaluate(n int64, data []byte) reply {
	if r.unavailable < 0 || n <= int64(r.unavailable) {
		logger.Debug("Desk answering request %d as unavailable", n)
		return reply{Code: codeUnavailable, Error: "desk is busy, try again"}
	}

	var form intake.FormData
	if err := json.Unmarshal(data, &form); err != nil {
		logger.Warn("Malformed submission: %v", err)
		return reply{Code: codeInvalid, Error: fmt.Sprintf("malformed form: %v", err)}
	}

	if failed, ok := intake.ValidateAll(r.steps, form); !ok {
		title := fmt.Sprintf("step %d", failed)
		for _, s := range r.steps {
			if s.ID == failed {
				title = s.Title
			}
		}
		logger.Info("Rejected submission %q: %s incomplete", form.ProjectName, title)
		return reply{Code: codeInvalid, Error: fmt.Sprintf("%s is incomplete", title)}
	}

	receipt := intake.Receipt{
		Reference:  intake.NewReference(form.ProjectName),
		ReceivedAt: time.Now().UTC(),
	}
	r.accepted.Add(1)
	logger.Info("Accepted submission %q as %s", form.ProjectName, receipt.Reference)
	return reply{Code: codeAccepted, Receipt: &receipt}
}
