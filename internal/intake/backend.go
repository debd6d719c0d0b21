package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/mark3labs/intake/internal/logger"
)

// Backend receives completed forms. Submit blocks until the submission is
// accepted or fails, and must honour ctx cancellation.
type Backend interface {
	Submit(ctx context.Context, form FormData) (Receipt, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, form FormData) (Receipt, error)

// Submit implements Backend.
func (f BackendFunc) Submit(ctx context.Context, form FormData) (Receipt, error) {
	return f(ctx, form)
}

// Receipt acknowledges an accepted submission.
type Receipt struct {
	Reference  string    `json:"reference"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// NewReference builds a human-friendly submission reference from the project
// name, e.g. "acme-site-3f9c2a1b".
func NewReference(projectName string) string {
	base := slug.Make(projectName)
	if base == "" {
		base = "project"
	}
	id := uuid.New().String()
	return fmt.Sprintf("%s-%s", base, id[:8])
}

// ErrSimulatedFailure is returned by SimulatedBackend when configured to fail.
var ErrSimulatedFailure = errors.New("simulated submission failure")

// SimulatedBackend pretends to call a remote API by waiting Latency before
// accepting the form.
type SimulatedBackend struct {
	Latency time.Duration
	// Fail makes every submission fail after the latency has elapsed.
	Fail bool
}

// Submit implements Backend.
func (b SimulatedBackend) Submit(ctx context.Context, form FormData) (Receipt, error) {
	logger.Debug("Simulated submission for %q (latency %s)", form.ProjectName, b.Latency)

	timer := time.NewTimer(b.Latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	case <-timer.C:
	}

	if b.Fail {
		return Receipt{}, ErrSimulatedFailure
	}

	return Receipt{
		Reference:  NewReference(form.ProjectName),
		ReceivedAt: time.Now(),
	}, nil
}
