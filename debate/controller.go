package debate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/Hrishikeshgupta2002/AI-Council/core"
	"github.com/Hrishikeshgupta2002/AI-Council/logging"
)

// State is the controller's position in the conversation state machine.
type State string

const (
	StateIdle         State = "idle"
	StateBroadcast    State = "broadcast"
	StateContinuation State = "continuation"
	StateDebate       State = "debate"
)

// StopReason explains why a debate ended.
type StopReason string

const (
	// StopMaxExchanges means a pair reached its exchange budget.
	StopMaxExchanges StopReason = "max_exchanges"
	// StopAllFailed means every tagged agent failed in one exchange.
	StopAllFailed StopReason = "all_failed"
	// StopResolved means a reply carried a closing signal.
	StopResolved StopReason = "resolved"
	// StopCancelled means the context ended.
	StopCancelled StopReason = "cancelled"
)

// DefaultClosingSignals are phrases that end a debate early.
var DefaultClosingSignals = []string{"agree", "sounds good", "makes sense", "resolved", "i think we're done", "that works"}

// A tag starts the line or follows a non-word character, so addresses like
// ops@elon.com are not mentions.
var tagPattern = regexp.MustCompile(`(?:^|[^\w@])@(\w+)`)

// Plan is the classification of one user turn.
type Plan struct {
	Mode core.Mode
	// Participants are the agents the round is dispatched to.
	Participants []string
	// Text is the trimmed turn, tags left intact.
	Text string
	// Tags are the recognized roster names in first-mention order.
	Tags []string
	// UnknownTags are @names that match no roster agent.
	UnknownTags []string
}

// Options configures a Controller.
type Options struct {
	// ClosingSignals end a debate early when found as whole words in an ok
	// reply (case-insensitive). Nil uses DefaultClosingSignals; an empty non-nil
	// slice disables early stopping.
	ClosingSignals []string
	Logger         logging.Logger
}

// Controller classifies turns and runs debates. It holds the only mutable
// state of the conversation state machine.
type Controller struct {
	roster  []string
	lookup  map[string]string
	closing []*regexp.Regexp
	logger  logging.Logger

	mu    sync.Mutex
	state State
}

// NewController creates a controller for the given roster names.
func NewController(roster []string, optFns ...func(o *Options)) *Controller {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ClosingSignals == nil {
		opts.ClosingSignals = DefaultClosingSignals
	}

	lookup := make(map[string]string, len(roster))
	for _, name := range roster {
		lookup[strings.ToLower(name)] = name
	}

	closing := make([]*regexp.Regexp, 0, len(opts.ClosingSignals))
	for _, s := range opts.ClosingSignals {
		closing = append(closing, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(s)+`\b`))
	}

	return &Controller{
		roster:  append([]string(nil), roster...),
		lookup:  lookup,
		closing: closing,
		logger:  logging.OrNoOp(opts.Logger),
		state:   StateIdle,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = s
}

// Resolve maps a case-insensitive name to the roster name. Names outside the
// roster yield core.ErrUnknownAgent.
func (c *Controller) Resolve(name string) (string, error) {
	canonical, ok := c.lookup[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownAgent, name)
	}

	return canonical, nil
}

// Classify turns user text into a round plan.
func (c *Controller) Classify(turn string) Plan {
	text := strings.TrimSpace(turn)
	if text == "" {
		return Plan{Mode: core.ModeContinuation, Participants: c.Roster()}
	}

	plan := Plan{Text: text}

	for _, m := range tagPattern.FindAllStringSubmatch(text, -1) {
		name, err := c.Resolve(m[1])
		if err != nil {
			if !slices.Contains(plan.UnknownTags, m[1]) {
				plan.UnknownTags = append(plan.UnknownTags, m[1])
			}

			continue
		}

		if !slices.Contains(plan.Tags, name) {
			plan.Tags = append(plan.Tags, name)
		}
	}

	if len(plan.Tags) >= 2 {
		plan.Mode = core.ModeDebate
		plan.Participants = append([]string(nil), plan.Tags...)

		return plan
	}

	plan.Mode = core.ModeBroadcast
	plan.Participants = c.Roster()

	return plan
}

// Roster returns the roster names in order.
func (c *Controller) Roster() []string {
	return append([]string(nil), c.roster...)
}

// Begin moves the state machine into the state for mode. The returned func
// moves it back to Idle.
func (c *Controller) Begin(mode core.Mode) func() {
	switch mode {
	case core.ModeDebate:
		c.setState(StateDebate)
	case core.ModeContinuation:
		c.setState(StateContinuation)
	default:
		c.setState(StateBroadcast)
	}

	return func() { c.setState(StateIdle) }
}

// ExchangeFunc dispatches one debate exchange. pending holds the utterances
// of earlier exchanges in this round, which are not yet in the transcript.
type ExchangeFunc func(ctx context.Context, exchange int, pending []core.Utterance) []core.Utterance

// Outcome is the result of a debate round.
type Outcome struct {
	// Utterances are all exchange utterances in order, ready to append.
	Utterances []core.Utterance
	Exchanges  int
	Stop       StopReason
}

// RunDebate runs exchanges for round until the limiter stops it, every tagged
// agent fails in one exchange, a closing signal appears, or ctx ends. The
// controller is back in Idle when RunDebate returns.
func (c *Controller) RunDebate(ctx context.Context, round core.Round, run ExchangeFunc) Outcome {
	done := c.Begin(core.ModeDebate)
	defer done()

	maxExchanges := round.MaxExchanges
	if maxExchanges <= 0 {
		maxExchanges = core.DefaultMaxExchanges
	}

	limiter := NewExchangeLimiter(maxExchanges, round.Participants)

	var out Outcome

	for exchange := 1; ; exchange++ {
		if ctx.Err() != nil {
			out.Stop = StopCancelled
			break
		}

		if err := limiter.Increment(); err != nil {
			if errors.Is(err, core.ErrExchangeLimit) {
				out.Stop = StopMaxExchanges
			}

			break
		}

		utts := run(ctx, exchange, out.Utterances)
		out.Utterances = append(out.Utterances, utts...)
		out.Exchanges = exchange

		if !anyOK(utts) {
			out.Stop = StopAllFailed
			c.logger.Warn("debate aborted: no agent responded", "round", round.Number, "exchange", exchange)

			break
		}

		if c.closingSignal(utts) {
			out.Stop = StopResolved
			break
		}

		if limiter.Exhausted() {
			out.Stop = StopMaxExchanges
			break
		}
	}

	c.logger.Debug("debate finished",
		"round", round.Number,
		"participants", strings.Join(round.Participants, ","),
		"exchanges", out.Exchanges,
		"stop", out.Stop,
	)

	return out
}

func (c *Controller) closingSignal(utts []core.Utterance) bool {
	for _, u := range utts {
		if !u.OK() {
			continue
		}

		for _, re := range c.closing {
			if re.MatchString(u.Body) {
				return true
			}
		}
	}

	return false
}

func anyOK(utts []core.Utterance) bool {
	for _, u := range utts {
		if u.OK() {
			return true
		}
	}

	return false
}
