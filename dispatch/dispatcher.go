package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Hrishikeshgupta2002/AI-Council/agent"
	"github.com/Hrishikeshgupta2002/AI-Council/core"
	"github.com/Hrishikeshgupta2002/AI-Council/logging"
)

const (
	// DefaultMaxWorkers bounds concurrent agent calls.
	DefaultMaxWorkers = 4
	// DefaultAgentTimeout is the per-call deadline.
	DefaultAgentTimeout = 60 * time.Second
)

// Observer receives the outcome of every agent call.
type Observer interface {
	ObserveCall(agent string, status core.Status, d time.Duration)
}

// Options configures a Dispatcher.
type Options struct {
	MaxWorkers   int
	AgentTimeout time.Duration
	Observer     Observer
	Logger       logging.Logger
}

// Dispatcher issues one call per participant with bounded concurrency.
type Dispatcher struct {
	sem      *semaphore.Weighted
	timeout  time.Duration
	observer Observer
	logger   logging.Logger
}

// New creates a Dispatcher.
func New(optFns ...func(o *Options)) *Dispatcher {
	opts := Options{
		MaxWorkers:   DefaultMaxWorkers,
		AgentTimeout: DefaultAgentTimeout,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}

	if opts.AgentTimeout <= 0 {
		opts.AgentTimeout = DefaultAgentTimeout
	}

	return &Dispatcher{
		sem:      semaphore.NewWeighted(int64(opts.MaxWorkers)),
		timeout:  opts.AgentTimeout,
		observer: opts.Observer,
		logger:   logging.OrNoOp(opts.Logger),
	}
}

// Dispatch calls every participant with in and returns exactly one utterance
// per participant in completion order. Failures never propagate: they become
// timeout or error utterances. Continuation declines become declined
// utterances, which callers must drop before appending to the transcript.
func (d *Dispatcher) Dispatch(ctx context.Context, participants []agent.Responder, in agent.Input) []core.Utterance {
	results := make(chan core.Utterance, len(participants))

	for _, p := range participants {
		go func() {
			results <- d.call(ctx, p, in)
		}()
	}

	out := make([]core.Utterance, 0, len(participants))
	for range participants {
		out = append(out, <-results)
	}

	d.logger.Debug("dispatch completed",
		"round", in.Round.Number,
		"exchange", in.Exchange,
		"participants", len(participants),
		"succeeded", countOK(out),
	)

	return out
}

type reply struct {
	text string
	err  error
}

func (d *Dispatcher) call(ctx context.Context, p agent.Responder, in agent.Input) core.Utterance {
	name := p.Agent().Name()

	if err := d.sem.Acquire(ctx, 1); err != nil {
		return d.finish(name, in, 0, "", fmt.Errorf("waiting for worker: %w", err))
	}
	defer d.sem.Release(1)

	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	// Buffered so an abandoned call can still deliver and exit.
	done := make(chan reply, 1)

	go func() {
		text, err := p.Respond(callCtx, in)
		done <- reply{text: text, err: err}
	}()

	select {
	case r := <-done:
		return d.finish(name, in, time.Since(start), r.text, r.err)
	case <-callCtx.Done():
		err := callCtx.Err()
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = &core.TimeoutError{Agent: name, Model: p.Agent().Model(), Timeout: d.timeout, Err: err}
		}

		return d.finish(name, in, time.Since(start), "", err)
	}
}

func (d *Dispatcher) finish(name string, in agent.Input, dur time.Duration, text string, err error) core.Utterance {
	var u core.Utterance

	switch {
	case errors.Is(err, agent.ErrDeclined):
		u = core.NewDeclinedUtterance(name, in.Round.Number)
	case err != nil:
		u = core.NewFailedUtterance(name, in.Round.Number, err)
		d.logger.Warn("agent call failed", "agent", name, "round", in.Round.Number, "status", u.Status, "error", err)
	case text == "":
		u = core.NewFailedUtterance(name, in.Round.Number, errors.New("empty reply"))
	default:
		u = core.NewUtterance(name, in.Round.Number, text)
	}

	u.Exchange = in.Exchange

	if d.observer != nil {
		d.observer.ObserveCall(name, u.Status, dur)
	}

	return u
}

func countOK(us []core.Utterance) int {
	n := 0

	for _, u := range us {
		if u.OK() {
			n++
		}
	}

	return n
}
