package council

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Hrishikeshgupta2002/AI-Council/agent"
	"github.com/Hrishikeshgupta2002/AI-Council/core"
	"github.com/Hrishikeshgupta2002/AI-Council/debate"
	"github.com/Hrishikeshgupta2002/AI-Council/dispatch"
	"github.com/Hrishikeshgupta2002/AI-Council/logging"
	"github.com/Hrishikeshgupta2002/AI-Council/model"
	"github.com/Hrishikeshgupta2002/AI-Council/session"
	"github.com/Hrishikeshgupta2002/AI-Council/synthesis"
)

var (
	// ErrEmptyProblem is returned by Start for a blank problem statement.
	ErrEmptyProblem = errors.New("council: problem statement is empty")
	// ErrNotStarted is returned by Turn before Start succeeded.
	ErrNotStarted = errors.New("council: session not started")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("council: session already started")
)

// Observer receives council activity. metrics.Collector implements it.
type Observer interface {
	dispatch.Observer
	synthesis.Observer
	ObserveRound(mode core.Mode)
	ObserveDebate(exchanges int)
}

// Options configures the Council.
type Options struct {
	// MaxWorkers bounds concurrent gateway calls per round.
	MaxWorkers int
	// AgentTimeout is the deadline of each agent call.
	AgentTimeout time.Duration
	// PingTimeout bounds the gateway health check in Start. Zero uses
	// AgentTimeout.
	PingTimeout time.Duration
	// MaxExchanges bounds each debate round.
	MaxExchanges int
	// ContextWindow is the number of transcript lines agents see.
	ContextWindow int

	// UseWeightedModel applies agent weights during synthesis; when false all
	// agents count equally.
	UseWeightedModel     bool
	SynthesisModel       string
	SynthesisProvider    string
	SynthesisTemperature float64
	SynthesisTimeout     time.Duration

	Prompts agent.Prompts
	// ClosingSignals overrides debate.DefaultClosingSignals when non-nil.
	ClosingSignals []string

	// SessionID overrides the generated session identifier.
	SessionID string

	// Observer is optional.
	Observer Observer
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// TurnResult describes one executed round.
type TurnResult struct {
	Round core.Round
	// Utterances are what was appended to the transcript, the user line
	// first when there is one.
	Utterances []core.Utterance
	// Declined lists agents that passed on a continuation round.
	Declined []string
	// UnknownTags are @names that matched no agent.
	UnknownTags []string
	// Exchanges and Stop are set for debate rounds.
	Exchanges int
	Stop      debate.StopReason
}

// Replies returns the agent utterances of the round.
func (r TurnResult) Replies() []core.Utterance {
	out := make([]core.Utterance, 0, len(r.Utterances))
	for _, u := range r.Utterances {
		if !u.IsUser() {
			out = append(out, u)
		}
	}

	return out
}

// Council owns one conversation with a fixed roster.
type Council struct {
	opts    Options
	gateway model.Model
	agents  []core.Agent
	handles map[string]agent.Responder

	session     *session.Session
	controller  *debate.Controller
	dispatcher  *dispatch.Dispatcher
	synthesizer *synthesis.Synthesizer
	logger      logging.Logger

	mu      sync.Mutex
	started bool
}

// New creates a Council for agents backed by gateway.
func New(gateway model.Model, agents []core.Agent, optFns ...func(o *Options)) (*Council, error) {
	opts := Options{
		MaxWorkers:           dispatch.DefaultMaxWorkers,
		AgentTimeout:         dispatch.DefaultAgentTimeout,
		MaxExchanges:         core.DefaultMaxExchanges,
		ContextWindow:        session.DefaultContextWindow,
		UseWeightedModel:     true,
		SynthesisModel:       synthesis.DefaultModel,
		SynthesisTemperature: synthesis.DefaultTemperature,
		SynthesisTimeout:     synthesis.DefaultTimeout,
		Prompts:              agent.DefaultPrompts(),
		Logger:               logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if gateway == nil {
		return nil, errors.New("council: gateway is required")
	}

	if len(agents) == 0 {
		return nil, errors.New("council: at least one agent is required")
	}

	names := make([]string, 0, len(agents))
	seen := make(map[string]bool, len(agents))

	for _, a := range agents {
		key := strings.ToLower(a.Name())
		if seen[key] {
			return nil, fmt.Errorf("council: duplicate agent %q", a.Name())
		}

		seen[key] = true
		names = append(names, a.Name())
	}

	sess := session.New(func(o *session.Options) {
		o.ID = opts.SessionID
		o.MaxExchanges = opts.MaxExchanges
	})

	logger := logging.OrNoOp(opts.Logger)
	component := func(name string) logging.Logger { return logger }

	if cl, ok := logger.(*logging.CouncilLogger); ok {
		cl = cl.WithSession(sess.ID)
		logger = cl
		component = func(name string) logging.Logger { return cl.WithComponent(name) }
	}

	handles := make(map[string]agent.Responder, len(agents))
	for _, a := range agents {
		handles[a.Name()] = agent.NewHandle(a, gateway, func(o *agent.HandleOptions) {
			o.Prompts = opts.Prompts
			o.Logger = component("agent")
		})
	}

	var (
		callObserver  dispatch.Observer
		synthObserver synthesis.Observer
	)

	if opts.Observer != nil {
		callObserver = opts.Observer
		synthObserver = opts.Observer
	}

	return &Council{
		opts:    opts,
		gateway: gateway,
		agents:  append([]core.Agent(nil), agents...),
		handles: handles,
		session: sess,
		controller: debate.NewController(names, func(o *debate.Options) {
			o.ClosingSignals = opts.ClosingSignals
			o.Logger = component("debate")
		}),
		dispatcher: dispatch.New(func(o *dispatch.Options) {
			o.MaxWorkers = opts.MaxWorkers
			o.AgentTimeout = opts.AgentTimeout
			o.Observer = callObserver
			o.Logger = component("dispatch")
		}),
		synthesizer: synthesis.New(gateway, func(o *synthesis.Options) {
			o.Model = opts.SynthesisModel
			o.Provider = opts.SynthesisProvider
			o.Temperature = opts.SynthesisTemperature
			o.Timeout = opts.SynthesisTimeout
			o.UseWeightedModel = opts.UseWeightedModel
			o.Observer = synthObserver
			o.Logger = component("synthesis")
		}),
		logger: logger,
	}, nil
}

// SessionID returns the identifier of the conversation.
func (c *Council) SessionID() string { return c.session.ID }

// Agents returns the roster in order.
func (c *Council) Agents() []core.Agent { return append([]core.Agent(nil), c.agents...) }

// Weights returns the declared weight of every agent.
func (c *Council) Weights() map[string]float64 { return core.Weights(c.agents) }

// Method returns the synthesis decision rule.
func (c *Council) Method() core.Method { return c.synthesizer.Method() }

// Transcript returns a copy of the conversation so far.
func (c *Council) Transcript() core.Transcript { return c.session.Transcript() }

// State returns the conversation state machine's current state.
func (c *Council) State() debate.State { return c.controller.State() }

// Start checks that the gateway is reachable and runs the opening broadcast
// round for problem. An unreachable gateway yields core.ErrGatewayUnreachable
// and leaves the council unstarted.
func (c *Council) Start(ctx context.Context, problem string) (TurnResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return TurnResult{}, ErrAlreadyStarted
	}

	problem = strings.TrimSpace(problem)
	if problem == "" {
		return TurnResult{}, ErrEmptyProblem
	}

	if p, ok := c.gateway.(model.Pinger); ok {
		if err := c.ping(ctx, p); err != nil {
			c.logger.Error("gateway health check failed", "error", err)
			return TurnResult{}, fmt.Errorf("%w: %w", core.ErrGatewayUnreachable, err)
		}
	}

	c.started = true

	c.logger.Info("council session started", "agents", len(c.agents), "method", c.synthesizer.Method())

	return c.broadcast(ctx, debate.Plan{
		Mode:         core.ModeBroadcast,
		Participants: c.controller.Roster(),
		Text:         problem,
	})
}

func (c *Council) ping(ctx context.Context, p model.Pinger) error {
	timeout := c.opts.PingTimeout
	if timeout <= 0 {
		timeout = c.opts.AgentTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return p.Ping(ctx)
}

// Turn executes one user turn. Blank text runs a continuation round, two or
// more @tags run a debate, anything else is broadcast. Agent failures are
// recorded, not returned; the error is non-nil only for misuse or when ctx
// ended during the round (the partial round is still recorded).
func (c *Council) Turn(ctx context.Context, text string) (TurnResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return TurnResult{}, ErrNotStarted
	}

	plan := c.controller.Classify(text)

	if len(plan.UnknownTags) > 0 {
		c.logger.Warn("unknown agents tagged", "tags", strings.Join(plan.UnknownTags, ","))
	}

	switch plan.Mode {
	case core.ModeDebate:
		return c.debate(ctx, plan)
	default:
		return c.broadcast(ctx, plan)
	}
}

// Synthesize reduces the transcript. It returns core.ErrInsufficientInput
// when no agent has answered successfully yet; the session stays usable.
func (c *Council) Synthesize(ctx context.Context) (core.SynthesisResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.synthesizer.Synthesize(ctx, c.session.Transcript(), c.Weights())
}

// broadcast runs a broadcast or continuation round. Must hold c.mu.
func (c *Council) broadcast(ctx context.Context, plan debate.Plan) (TurnResult, error) {
	start := time.Now()

	done := c.controller.Begin(plan.Mode)
	defer done()

	round := c.session.AdvanceRound(plan.Mode, plan.Participants)

	var lead []core.Utterance
	if plan.Mode != core.ModeContinuation {
		lead = append(lead, core.NewUserUtterance(round.Number, plan.Text))
	}

	replies := c.dispatcher.Dispatch(ctx, c.responders(round.Participants), agent.Input{
		Round:   round,
		Message: plan.Text,
		Context: c.session.Context(c.opts.ContextWindow, lead...),
	})

	kept, declined := dropDeclined(replies)

	res := TurnResult{Round: round, Declined: declined, UnknownTags: plan.UnknownTags}

	return c.commit(ctx, res, start, append(lead, kept...))
}

// debate runs a tagged debate round. Must hold c.mu.
func (c *Council) debate(ctx context.Context, plan debate.Plan) (TurnResult, error) {
	start := time.Now()

	round := c.session.AdvanceRound(plan.Mode, plan.Participants)
	user := core.NewUserUtterance(round.Number, plan.Text)
	responders := c.responders(round.Participants)

	outcome := c.controller.RunDebate(ctx, round, func(ctx context.Context, exchange int, pending []core.Utterance) []core.Utterance {
		lines := append([]core.Utterance{user}, pending...)

		return c.dispatcher.Dispatch(ctx, responders, agent.Input{
			Round:    round,
			Exchange: exchange,
			Message:  plan.Text,
			Context:  c.session.Context(c.opts.ContextWindow, lines...),
		})
	})

	kept, declined := dropDeclined(outcome.Utterances)

	if c.opts.Observer != nil {
		c.opts.Observer.ObserveDebate(outcome.Exchanges)
	}

	res := TurnResult{
		Round:       round,
		Declined:    declined,
		UnknownTags: plan.UnknownTags,
		Exchanges:   outcome.Exchanges,
		Stop:        outcome.Stop,
	}

	return c.commit(ctx, res, start, append([]core.Utterance{user}, kept...))
}

type roundLogger interface {
	LogRound(number int, mode string, participants, succeeded int, dur time.Duration)
}

// commit appends utts as res.Round and reports the round.
func (c *Council) commit(ctx context.Context, res TurnResult, start time.Time, utts []core.Utterance) (TurnResult, error) {
	if err := c.session.Append(res.Round, utts...); err != nil {
		return res, fmt.Errorf("council: append round %d: %w", res.Round.Number, err)
	}

	res.Utterances = utts

	if c.opts.Observer != nil {
		c.opts.Observer.ObserveRound(res.Round.Mode)
	}

	succeeded := 0
	for _, u := range utts {
		if !u.IsUser() && u.OK() {
			succeeded++
		}
	}

	if rl, ok := c.logger.(roundLogger); ok {
		rl.LogRound(res.Round.Number, string(res.Round.Mode), len(res.Round.Participants), succeeded, time.Since(start))
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	return res, nil
}

func (c *Council) responders(names []string) []agent.Responder {
	out := make([]agent.Responder, 0, len(names))
	for _, name := range names {
		if h, ok := c.handles[name]; ok {
			out = append(out, h)
		}
	}

	return out
}

func dropDeclined(utts []core.Utterance) (kept []core.Utterance, declined []string) {
	kept = make([]core.Utterance, 0, len(utts))

	for _, u := range utts {
		if u.Status == core.StatusDeclined {
			declined = append(declined, u.Agent)
			continue
		}

		kept = append(kept, u)
	}

	return kept, declined
}
