// Package desk is the intake desk: a NATS request/reply responder that
// validates and acknowledges submitted forms, and the client that the
// wizard uses as its submission backend.
package desk

import (
	"errors"

	"github.com/mark3labs/intake/internal/intake"
)

var (
	// ErrRejected means the desk refused the form. It is not retried.
	ErrRejected = errors.New("submission rejected")
	// ErrUnavailable means the desk could not be reached or asked the
	// client to try again later, and the retry budget ran out.
	ErrUnavailable = errors.New("intake desk unavailable")
)

// Reply codes.
const (
	codeAccepted    = "accepted"
	codeInvalid     = "invalid"
	codeUnavailable = "unavailable"
)

// reply is the JSON body the responder answers each request with.
type reply struct {
	Code    string          `json:"code"`
	Receipt *intake.Receipt `json:"receipt,omitempty"`
	Error   string          `json:"error,omitempty"`
}
