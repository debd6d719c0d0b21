package desk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/intake/internal/logger"
	inats "github.com/mark3labs/intake/internal/nats"
	"github.com/nats-io/nats.go"
)

// RetryConfig controls how transient desk failures are retried.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryConfig returns the retry policy used when none is given.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
	}
}

func (rc RetryConfig) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = rc.InitialDelay
	b.MaxInterval = rc.MaxDelay
	b.MaxElapsedTime = 0 // bounded by MaxRetries and ctx instead
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(rc.MaxRetries)), ctx)
}

// Client submits forms to the desk over NATS. It implements intake.Backend.
type Client struct {
	nc      *nats.Conn
	subject string
	timeout time.Duration
	retry   RetryConfig
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientSubject sets the subject requests are sent to.
func WithClientSubject(subject string) ClientOption {
	return func(c *Client) { c.subject = subject }
}

// WithRequestTimeout bounds each individual request attempt.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithRetry sets the retry policy.
func WithRetry(rc RetryConfig) ClientOption {
	return func(c *Client) { c.retry = rc }
}

// NewClient creates a desk client on nc.
func NewClient(nc *nats.Conn, opts ...ClientOption) *Client {
	c := &Client{
		nc:      nc,
		subject: inats.SubjectSubmissions,
		timeout: 5 * time.Second,
		retry:   DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ intake.Backend = (*Client)(nil)

// Submit sends the form and waits for the desk's verdict. Timeouts, missing
// responders and "unavailable" replies are retried with exponential backoff;
// rejections and ctx cancellation end the call immediately.
func (c *Client) Submit(ctx context.Context, form intake.FormData) (intake.Receipt, error) {
	data, err := json.Marshal(form)
	if err != nil {
		return intake.Receipt{}, fmt.Errorf("encoding form: %w", err)
	}

	var receipt intake.Receipt
	attempt := 0
	operation := func() error {
		attempt++
		r, err := c.request(ctx, data)
		if err != nil {
			return err
		}
		receipt = r
		return nil
	}

	notify := func(err error, next time.Duration) {
		logger.Warn("Submission attempt %d failed, retrying in %s: %v", attempt, next, err)
	}

	if err := backoff.RetryNotify(operation, c.retry.newBackOff(ctx), notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return intake.Receipt{}, ctxErr
		}
		if errors.Is(err, ErrRejected) {
			return intake.Receipt{}, err
		}
		return intake.Receipt{}, fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, attempt, err)
	}
	return receipt, nil
}

// request performs one attempt. Errors that should not be retried are
// wrapped with backoff.Permanent.
func (c *Client) request(ctx context.Context, data []byte) (intake.Receipt, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.nc.RequestWithContext(reqCtx, c.subject, data)
	if err != nil {
		if ctx.Err() != nil {
			return intake.Receipt{}, backoff.Permanent(ctx.Err())
		}
		if errors.Is(err, nats.ErrConnectionClosed) {
			return intake.Receipt{}, backoff.Permanent(err)
		}
		// No responders, per-attempt timeouts and the like are transient.
		return intake.Receipt{}, err
	}

	var res reply
	if err := json.Unmarshal(msg.Data, &res); err != nil {
		return intake.Receipt{}, backoff.Permanent(fmt.Errorf("decoding desk reply: %w", err))
	}

	switch res.Code {
	case codeAccepted:
		if res.Receipt == nil {
			return intake.Receipt{}, backoff.Permanent(errors.New("desk accepted without a receipt"))
		}
		return *res.Receipt, nil
	case codeInvalid:
		return intake.Receipt{}, backoff.Permanent(fmt.Errorf("%w: %s", ErrRejected, res.Error))
	case codeUnavailable:
		return intake.Receipt{}, errors.New(res.Error)
	default:
		return intake.Receipt{}, backoff.Permanent(fmt.Errorf("unknown desk reply code %q", res.Code))
	}
}
