package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Hrishikeshgupta2002/AI-Council/core"
	"github.com/Hrishikeshgupta2002/AI-Council/logging"
	"github.com/Hrishikeshgupta2002/AI-Council/model"
)

// ErrDeclined is returned by a Responder that passes on a continuation round.
var ErrDeclined = errors.New("agent declined to respond")

// Input is everything an agent sees for one call.
type Input struct {
	// Round is the round being dispatched.
	Round core.Round
	// Exchange is the 1-based debate exchange, 0 outside debates.
	Exchange int
	// Message is the user's turn text; empty for continuation rounds.
	Message string
	// Context is the rendered recent conversation.
	Context string
}

// Responder produces one reply for one round. Implementations must honor
// context cancellation.
type Responder interface {
	Agent() core.Agent
	Respond(ctx context.Context, in Input) (string, error)
}

// HandleOptions configures a Handle.
type HandleOptions struct {
	// Instruction overrides the persona instructions carried by the agent.
	Instruction *Instruction
	Prompts     Prompts
	// Timeout is forwarded to the gateway request. Zero leaves the deadline
	// to the caller's context.
	Timeout time.Duration
	Logger  logging.Logger
}

// Handle binds a persona to the inference gateway.
type Handle struct {
	agent       core.Agent
	gateway     model.Model
	instruction Instruction
	prompts     Prompts
	timeout     time.Duration
	logger      logging.Logger
}

// NewHandle creates a Handle for a using gateway.
func NewHandle(a core.Agent, gateway model.Model, optFns ...func(o *HandleOptions)) *Handle {
	opts := HandleOptions{
		Prompts: DefaultPrompts(),
		Logger:  logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	instruction := NewInstructionFromText(a.Instructions())
	if opts.Instruction != nil {
		instruction = *opts.Instruction
	}

	return &Handle{
		agent:       a,
		gateway:     gateway,
		instruction: instruction,
		prompts:     opts.Prompts,
		timeout:     opts.Timeout,
		logger:      logging.OrNoOp(opts.Logger),
	}
}

// Agent returns the persona behind the handle.
func (h *Handle) Agent() core.Agent { return h.agent }

type gatewayCallLogger interface {
	LogGatewayCall(agent, model string, dur time.Duration, err error)
}

// Respond renders the prompt for in and performs one gateway call. A
// continuation reply starting with DeclineMarker yields ErrDeclined.
func (h *Handle) Respond(ctx context.Context, in Input) (string, error) {
	prompt, err := h.prompts.Render(h.agent, in)
	if err != nil {
		return "", &core.BackendError{Agent: h.agent.Name(), Model: h.agent.Model(), Err: err}
	}

	instructions, err := h.instruction.Resolve(in)
	if err != nil {
		return "", &core.BackendError{Agent: h.agent.Name(), Model: h.agent.Model(), Err: err}
	}

	start := time.Now()
	text, err := model.Complete(ctx, h.gateway, model.Request{
		Agent:        h.agent.Name(),
		Model:        h.agent.Model(),
		Provider:     h.agent.Provider(),
		Instructions: instructions,
		Prompt:       prompt,
		Temperature:  model.Temperature(h.agent.Temperature()),
		Timeout:      h.timeout,
	})

	if gl, ok := h.logger.(gatewayCallLogger); ok {
		gl.LogGatewayCall(h.agent.Name(), h.agent.Model(), time.Since(start), err)
	} else if err != nil {
		h.logger.Warn("gateway call failed", "agent", h.agent.Name(), "model", h.agent.Model(), "error", err)
	}

	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if in.Round.Mode == core.ModeContinuation && IsDecline(text) {
		return "", ErrDeclined
	}

	return stripSpeakerPrefix(h.agent.Name(), text), nil
}

// stripSpeakerPrefix removes a leading "Name:" the model sometimes echoes
// from the transcript format.
func stripSpeakerPrefix(name, text string) string {
	prefix := name + ":"
	if len(text) > len(prefix) && strings.EqualFold(text[:len(prefix)], prefix) {
		if rest := strings.TrimSpace(text[len(prefix):]); rest != "" {
			return rest
		}
	}

	return text
}
