package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Hrishikeshgupta2002/AI-Council/core"
)

// ErrEmptyResponse is wrapped in a core.BackendError when the backend returns
// no text.
var ErrEmptyResponse = errors.New("empty response from backend")

// Request captures one generation call.
type Request struct {
	// Agent names the caller for attribution in errors and logs.
	Agent string `json:"agent,omitempty"`
	// Model is the backend model identifier. Empty selects the adapter default.
	Model string `json:"model,omitempty"`
	// Provider selects the route when the request goes through a Router.
	Provider string `json:"provider,omitempty"`
	// Instructions is the system prompt.
	Instructions string `json:"instructions,omitempty"`
	// Prompt is the user message.
	Prompt string `json:"prompt"`
	// Temperature overrides the adapter default when set.
	Temperature *float64 `json:"temperature,omitempty"`
	// Timeout bounds the call when driven through Complete.
	Timeout time.Duration `json:"timeout,omitempty"`
	// Stream asks the adapter to emit partial chunks.
	Stream bool `json:"stream,omitempty"`
}

// Temperature returns a pointer suitable for Request.Temperature.
func Temperature(t float64) *float64 { return &t }

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string      `json:"id"`
	Partial      bool        `json:"partial"`
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Model is the minimal interface required to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Pinger is implemented by models that can verify backend reachability
// without generating text.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Complete drives one generation to completion and returns the final text.
// Partial chunks are concatenated when the model never emits a final chunk.
// Deadline failures are reported as *core.TimeoutError, every other failure
// (including an empty reply) as *core.BackendError.
func Complete(ctx context.Context, m Model, req Request) (string, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)

		defer cancel()
	}

	respCh, errCh := m.Generate(ctx, req)

	var (
		partial  strings.Builder
		final    string
		hasFinal bool
	)

	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return "", classify(req, ctx.Err())
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}

			if resp.Partial {
				partial.WriteString(resp.Text)
				continue
			}

			final, hasFinal = resp.Text, true
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}

			if err != nil {
				return "", classify(req, err)
			}
		}
	}

	if !hasFinal {
		final = partial.String()
	}

	if strings.TrimSpace(final) == "" {
		return "", &core.BackendError{Agent: req.Agent, Model: req.Model, Err: ErrEmptyResponse}
	}

	return final, nil
}

func classify(req Request, err error) error {
	var (
		te *core.TimeoutError
		be *core.BackendError
	)

	if errors.As(err, &te) || errors.As(err, &be) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &core.TimeoutError{Agent: req.Agent, Model: req.Model, Timeout: req.Timeout, Err: err}
	}

	return &core.BackendError{Agent: req.Agent, Model: req.Model, Err: err}
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Replies are keyed by agent name; unknown agents get a generic reply.
type MockModel struct {
	info      Info
	mu        sync.Mutex
	responses map[string]string
	requests  []Request
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an agent.
func (m *MockModel) AddResponse(agent, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses[agent] = response
}

// Requests returns a copy of every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, len(m.requests))
	copy(out, m.requests)

	return out
}

// Generate implements Model; emits optional streaming word chunks then the final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	full := m.responses[req.Agent]
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if req.Prompt == "" {
			errCh <- fmt.Errorf("no prompt provided")
			return
		}

		if full == "" {
			full = fmt.Sprintf("Mock response from %s", req.Agent)
		}

		if req.Stream {
			for _, word := range strings.SplitAfter(full, " ") {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Text: word}:
				}
			}
		}

		respCh <- Response{Text: full, FinishReason: "stop"}
	}()

	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

// Ping implements Pinger; a mock is always reachable.
func (m *MockModel) Ping(context.Context) error { return nil }
