package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInsufficientInput is returned by synthesis when the transcript holds
	// no successful agent utterance.
	ErrInsufficientInput = errors.New("insufficient input: no successful agent utterances to synthesize")

	// ErrGatewayUnreachable is returned when the inference backend cannot be
	// reached at session start.
	ErrGatewayUnreachable = errors.New("inference gateway unreachable")

	// ErrUnknownAgent is returned when a name does not match any roster agent.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrRoundMismatch is returned when utterances are appended to a round that
	// is not the current one, or carry a different round number.
	ErrRoundMismatch = errors.New("round mismatch")

	// ErrExchangeLimit is returned when a debate pair exceeds its exchange budget.
	ErrExchangeLimit = errors.New("exchange limit reached")
)

// TimeoutError reports a backend call that missed its deadline.
type TimeoutError struct {
	Agent   string
	Model   string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("agent %s: model %s: no response within %s", e.Agent, e.Model, e.Timeout)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// BackendError reports a failed backend call.
type BackendError struct {
	Agent string
	Model string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("agent %s: model %s: %v", e.Agent, e.Model, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Classify maps an error to the utterance status it produces. A nil error is
// StatusOK; deadline failures are StatusTimeout; everything else is
// StatusError.
func Classify(err error) Status {
	if err == nil {
		return StatusOK
	}

	var te *TimeoutError
	if errors.As(err, &te) || errors.Is(err, context.DeadlineExceeded) {
		return StatusTimeout
	}

	return StatusError
}
