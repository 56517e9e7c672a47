package council

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hrishikeshgupta2002/AI-Council/core"
	"github.com/Hrishikeshgupta2002/AI-Council/debate"
	"github.com/Hrishikeshgupta2002/AI-Council/internal/testutil"
	"github.com/Hrishikeshgupta2002/AI-Council/logging"
)

const problem = "Should we launch the product in Europe first?"

type recordingObserver struct {
	mu        sync.Mutex
	calls     map[core.Status]int
	rounds    []core.Mode
	exchanges []int
	synthesis []string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{calls: map[core.Status]int{}}
}

func (o *recordingObserver) ObserveCall(_ string, status core.Status, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls[status]++
}

func (o *recordingObserver) ObserveRound(mode core.Mode) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rounds = append(o.rounds, mode)
}

func (o *recordingObserver) ObserveDebate(exchanges int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.exchanges = append(o.exchanges, exchanges)
}

func (o *recordingObserver) ObserveSynthesis(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.synthesis = append(o.synthesis, outcome)
}

func newCouncil(t *testing.T, gw *testutil.Gateway, optFns ...func(o *Options)) *Council {
	t.Helper()

	c, err := New(gw, testutil.Council(t), optFns...)
	require.NoError(t, err)

	return c
}

func started(t *testing.T, gw *testutil.Gateway, optFns ...func(o *Options)) *Council {
	t.Helper()

	c := newCouncil(t, gw, optFns...)
	_, err := c.Start(context.Background(), problem)
	require.NoError(t, err)

	return c
}

func TestNew(t *testing.T) {
	t.Run("requires gateway", func(t *testing.T) {
		_, err := New(nil, testutil.Council(t))
		require.Error(t, err)
	})

	t.Run("requires agents", func(t *testing.T) {
		_, err := New(testutil.NewGateway(), nil)
		require.Error(t, err)
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		agents := []core.Agent{testutil.Agent(t, "Elon", 0.5), testutil.Agent(t, "elon", 0.5)}
		_, err := New(testutil.NewGateway(), agents)
		require.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		c := newCouncil(t, testutil.NewGateway(), func(o *Options) { o.SessionID = "s-1" })
		assert.Equal(t, "s-1", c.SessionID())
		assert.Equal(t, core.MethodWeighted, c.Method())
		assert.Equal(t, debate.StateIdle, c.State())
		assert.Len(t, c.Agents(), 4)
		assert.InDelta(t, 0.35, c.Weights()["Elon"], 1e-9)
	})
}

func TestStart(t *testing.T) {
	gw := testutil.NewGateway().Reply("Elon", "Go big in Europe.")
	c := newCouncil(t, gw)

	res, err := c.Start(context.Background(), "  "+problem+"  ")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Round.Number)
	assert.Equal(t, core.ModeBroadcast, res.Round.Mode)
	assert.Equal(t, []string{"Elon", "Sam", "Sheryl", "Ray"}, res.Round.Participants)

	require.Len(t, res.Utterances, 5)
	assert.True(t, res.Utterances[0].IsUser())
	assert.Equal(t, problem, res.Utterances[0].Body)
	assert.Len(t, res.Replies(), 4)

	for _, u := range res.Replies() {
		assert.Equal(t, core.StatusOK, u.Status, u.Agent)
		assert.Equal(t, 1, u.Round)
	}

	transcript := c.Transcript()
	assert.Len(t, transcript, 5)
	assert.Equal(t, problem, transcript.Problem())

	calls := gw.CallsFor("Elon")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, problem)
	assert.Equal(t, "model-Elon", calls[0].Model)
	assert.Equal(t, "You are Elon.", calls[0].Instructions)
	assert.Equal(t, debate.StateIdle, c.State())
}

func TestStartErrors(t *testing.T) {
	t.Run("empty problem", func(t *testing.T) {
		c := newCouncil(t, testutil.NewGateway())
		_, err := c.Start(context.Background(), " \n ")
		require.ErrorIs(t, err, ErrEmptyProblem)
	})

	t.Run("gateway unreachable", func(t *testing.T) {
		gw := testutil.NewGateway().SetPingError(errors.New("connection refused"))
		c := newCouncil(t, gw)

		_, err := c.Start(context.Background(), problem)
		require.ErrorIs(t, err, core.ErrGatewayUnreachable)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Empty(t, gw.Calls(), "no agent is called")
		assert.Empty(t, c.Transcript())

		_, err = c.Turn(context.Background(), "hello")
		require.ErrorIs(t, err, ErrNotStarted)
	})

	t.Run("gateway silent", func(t *testing.T) {
		gw := testutil.NewGateway().HangPing()
		c := newCouncil(t, gw, func(o *Options) { o.PingTimeout = 20 * time.Millisecond })

		begin := time.Now()
		_, err := c.Start(context.Background(), problem)
		require.ErrorIs(t, err, core.ErrGatewayUnreachable)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(begin), time.Second)
		assert.Empty(t, gw.Calls())
	})

	t.Run("ping falls back to agent timeout", func(t *testing.T) {
		gw := testutil.NewGateway().HangPing()
		c := newCouncil(t, gw, func(o *Options) { o.AgentTimeout = 20 * time.Millisecond })

		_, err := c.Start(context.Background(), problem)
		require.ErrorIs(t, err, core.ErrGatewayUnreachable)
	})

	t.Run("started twice", func(t *testing.T) {
		c := started(t, testutil.NewGateway())
		_, err := c.Start(context.Background(), problem)
		require.ErrorIs(t, err, ErrAlreadyStarted)
	})
}

func TestTurnBroadcast(t *testing.T) {
	gw := testutil.NewGateway()
	c := started(t, gw)

	res, err := c.Turn(context.Background(), "What about @Ray's concerns? And @Bob?")
	require.NoError(t, err)

	assert.Equal(t, 2, res.Round.Number)
	assert.Equal(t, core.ModeBroadcast, res.Round.Mode, "a single tag is a broadcast")
	assert.Equal(t, []string{"Bob"}, res.UnknownTags)
	assert.Len(t, res.Replies(), 4)

	calls := gw.CallsFor("Sam")
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].Prompt, "Elon: Elon has an opinion.", "earlier rounds are in context")
}

func TestTurnDebate(t *testing.T) {
	gw := testutil.NewGateway().
		Replies("Elon", "Europe is too slow.", "Speed beats caution.", "Still pushing for speed.", "Last push.").
		Replies("Sam", "Europe is too small.", "Sequence the markets.", "Sequence still matters.", "Final word.")
	c := started(t, gw)

	res, err := c.Turn(context.Background(), "@Elon @sam debate the plan")
	require.NoError(t, err)

	assert.Equal(t, core.ModeDebate, res.Round.Mode)
	assert.Equal(t, []string{"Elon", "Sam"}, res.Round.Participants)
	assert.Equal(t, 3, res.Round.MaxExchanges)
	assert.Equal(t, 3, res.Exchanges)
	assert.Equal(t, debate.StopMaxExchanges, res.Stop)

	require.Len(t, res.Utterances, 7)
	assert.True(t, res.Utterances[0].IsUser())
	assert.Equal(t, "@Elon @sam debate the plan", res.Utterances[0].Body)

	perExchange := map[int]int{}
	for _, u := range res.Replies() {
		assert.Contains(t, []string{"Elon", "Sam"}, u.Agent)
		assert.Equal(t, 2, u.Round)
		perExchange[u.Exchange]++
	}
	assert.Equal(t, map[int]int{1: 2, 2: 2, 3: 2}, perExchange)

	assert.Len(t, gw.CallsFor("Sheryl"), 1, "untagged agents sit out")
	assert.Len(t, gw.CallsFor("Ray"), 1)

	sam := gw.CallsFor("Sam")
	require.Len(t, sam, 4)
	assert.Contains(t, sam[3].Prompt, "Elon: Speed beats caution.", "later exchanges see earlier ones")
	assert.Contains(t, sam[3].Prompt, "exchange 3 of 3")
	assert.Equal(t, debate.StateIdle, c.State())
}

func TestTurnDebateStopsEarly(t *testing.T) {
	t.Run("closing signal", func(t *testing.T) {
		gw := testutil.NewGateway().
			Replies("Elon", "opening", "Fine, I agree with Sam on sequencing.").
			Replies("Sam", "opening", "Sequencing first.")
		c := started(t, gw)

		res, err := c.Turn(context.Background(), "@Elon @Sam settle this")
		require.NoError(t, err)
		assert.Equal(t, debate.StopResolved, res.Stop)
		assert.Equal(t, 1, res.Exchanges)
	})

	t.Run("all failed", func(t *testing.T) {
		gw := testutil.NewGateway().
			Replies("Elon", "opening").
			Replies("Ray", "opening")
		c := started(t, gw)

		gw.Fail("Elon", errors.New("backend down")).Fail("Ray", errors.New("backend down"))

		res, err := c.Turn(context.Background(), "@Elon @Ray go")
		require.NoError(t, err, "agent failures do not fail the turn")
		assert.Equal(t, debate.StopAllFailed, res.Stop)
		assert.Equal(t, 1, res.Exchanges)

		for _, u := range res.Replies() {
			assert.Equal(t, core.StatusError, u.Status)
		}

		next, err := c.Turn(context.Background(), "ok, everyone")
		require.NoError(t, err)
		assert.Equal(t, 3, next.Round.Number, "session continues")
	})
}

func TestTurnContinuation(t *testing.T) {
	gw := testutil.NewGateway().
		Replies("Elon", "opening", "One more thing: hire locally.").
		Replies("Sam", "opening", "SKIP").
		Replies("Sheryl", "opening", "skip").
		Replies("Ray", "opening", "**SKIP**")
	c := started(t, gw)

	res, err := c.Turn(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, core.ModeContinuation, res.Round.Mode)
	assert.ElementsMatch(t, []string{"Sam", "Sheryl", "Ray"}, res.Declined)
	require.Len(t, res.Utterances, 1, "no user line and no declines")
	assert.Equal(t, "Elon", res.Utterances[0].Agent)
	assert.Equal(t, "One more thing: hire locally.", res.Utterances[0].Body)

	for _, u := range c.Transcript() {
		assert.NotEqual(t, core.StatusDeclined, u.Status)
	}
}

func TestTurnContinuationAllDecline(t *testing.T) {
	gw := testutil.NewGateway()
	for _, name := range []string{"Elon", "Sam", "Sheryl", "Ray"} {
		gw.Replies(name, "opening", "SKIP")
	}
	c := started(t, gw)

	res, err := c.Turn(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Round.Number)
	assert.Empty(t, res.Utterances)
	assert.Len(t, res.Declined, 4)
	assert.Len(t, c.Transcript(), 5)

	next, err := c.Turn(context.Background(), "Anything else?")
	require.NoError(t, err)
	assert.Equal(t, 3, next.Round.Number, "the empty round was committed")
}

func TestTurnPartialFailure(t *testing.T) {
	gw := testutil.NewGateway().
		Hang("Ray").
		Fail("Sam", errors.New("model not found"))
	obs := newRecordingObserver()

	c := newCouncil(t, gw, func(o *Options) {
		o.AgentTimeout = 50 * time.Millisecond
		o.Observer = obs
	})

	res, err := c.Start(context.Background(), problem)
	require.NoError(t, err)

	statuses := map[string]core.Status{}
	for _, u := range res.Replies() {
		statuses[u.Agent] = u.Status
	}

	assert.Equal(t, map[string]core.Status{
		"Elon":   core.StatusOK,
		"Sam":    core.StatusError,
		"Sheryl": core.StatusOK,
		"Ray":    core.StatusTimeout,
	}, statuses)

	assert.Equal(t, 2, obs.calls[core.StatusOK])
	assert.Equal(t, 1, obs.calls[core.StatusTimeout])
	assert.Equal(t, []core.Mode{core.ModeBroadcast}, obs.rounds)
}

func TestRoundNumbering(t *testing.T) {
	c := started(t, testutil.NewGateway())

	turns := []string{"next", "", "@Elon @Ray argue", "more", ""}
	for i, turn := range turns {
		res, err := c.Turn(context.Background(), turn)
		require.NoError(t, err)
		assert.Equal(t, i+2, res.Round.Number)
	}

	last := 0
	for _, u := range c.Transcript() {
		assert.GreaterOrEqual(t, u.Round, last)
		last = u.Round
	}
}

func TestSynthesize(t *testing.T) {
	gw := testutil.NewGateway().Reply("synthesis", strings.Join([]string{
		"SUMMARY: Launch in one EU market first.",
		"AGREEMENTS:",
		"- Start small",
		"CONFLICTS:",
		"- Timing",
		"BLIND SPOTS:",
		"- Regulation",
		"RECOMMENDATION:",
		"1. Launch in Germany in Q1",
		"2. Expand after six months",
	}, "\n"))
	obs := newRecordingObserver()
	c := started(t, gw, func(o *Options) {
		o.Observer = obs
		o.SynthesisModel = "judge"
	})

	result, err := c.Synthesize(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Structured)
	assert.Equal(t, core.MethodWeighted, result.Method)
	assert.Equal(t, []string{"Start small"}, result.Agreements)
	assert.Equal(t, []string{"Launch in Germany in Q1", "Expand after six months"}, result.Options)
	assert.Greater(t, result.Confidence, 0.0)
	assert.Equal(t, []string{"structured"}, obs.synthesis)

	calls := gw.CallsFor("synthesis")
	require.Len(t, calls, 1)
	assert.Equal(t, "judge", calls[0].Model)
	assert.Contains(t, calls[0].Prompt, problem)
}

func TestSynthesizeUnweighted(t *testing.T) {
	gw := testutil.NewGateway().Reply("synthesis", "Just do it.")
	c := started(t, gw, func(o *Options) { o.UseWeightedModel = false })

	result, err := c.Synthesize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.MethodMajority, result.Method)
	assert.False(t, result.Structured)
	assert.Equal(t, "Just do it.", result.Recommendation)
}

func TestSynthesizeInsufficientInput(t *testing.T) {
	gw := testutil.NewGateway()
	for _, name := range []string{"Elon", "Sam", "Sheryl", "Ray"} {
		gw.Fail(name, errors.New("backend down"))
	}
	c := started(t, gw)

	_, err := c.Synthesize(context.Background())
	require.ErrorIs(t, err, core.ErrInsufficientInput)
	assert.Empty(t, gw.CallsFor("synthesis"))

	_, err = c.Turn(context.Background(), "try again")
	require.NoError(t, err, "insufficient input is not fatal")
}

func TestCouncilLogger(t *testing.T) {
	var buf strings.Builder
	logger := logging.NewSlogLogger(logging.LogLevelDebug, "json", &buf)

	c := started(t, testutil.NewGateway(), func(o *Options) {
		o.Logger = logger
		o.SessionID = "sess-42"
	})
	_ = c

	out := buf.String()
	assert.Contains(t, out, "sess-42")
	assert.Contains(t, out, `"component":"dispatch"`)
}
