package debate

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Hrishikeshgupta2002/AI-Council/core"
	"github.com/Hrishikeshgupta2002/AI-Council/internal/testutil"
)

var roster = []string{"Elon", "Sam", "Sheryl", "Ray"}

func TestClassify(t *testing.T) {
	c := NewController(roster)

	tests := []struct {
		name         string
		turn         string
		mode         core.Mode
		participants []string
		unknown      []string
	}{
		{"plain text", "What about pricing?", core.ModeBroadcast, roster, nil},
		{"blank", "   ", core.ModeContinuation, roster, nil},
		{"single tag", "@Ray what could go wrong?", core.ModeBroadcast, roster, nil},
		{"two tags", "@Elon @Sam debate the plan", core.ModeDebate, []string{"Elon", "Sam"}, nil},
		{"case insensitive", "@elon and @SHERYL, go", core.ModeDebate, []string{"Elon", "Sheryl"}, nil},
		{"duplicate tag", "@Elon @elon again", core.ModeBroadcast, roster, nil},
		{"unknown tag", "@Elon @Bob argue", core.ModeBroadcast, roster, []string{"Bob"}},
		{"three tags", "@Ray @Sam @Elon weigh in", core.ModeDebate, []string{"Ray", "Sam", "Elon"}, nil},
		{"email address", "mail ops@elon.com and ask @Sam", core.ModeBroadcast, roster, nil},
		{"punctuated tags", "(@Elon,@Sam) go", core.ModeDebate, []string{"Elon", "Sam"}, nil},
		{"double at", "@@Elon @Sam", core.ModeBroadcast, roster, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := c.Classify(tt.turn)
			assert.Equal(t, tt.mode, p.Mode)
			assert.Equal(t, tt.participants, p.Participants)
			assert.Equal(t, tt.unknown, p.UnknownTags)
		})
	}
}

func TestResolve(t *testing.T) {
	c := NewController(roster)

	name, err := c.Resolve("sHeRyL")
	require.NoError(t, err)
	assert.Equal(t, "Sheryl", name)

	_, err = c.Resolve("Bob")
	require.ErrorIs(t, err, core.ErrUnknownAgent)
	assert.Contains(t, err.Error(), `"Bob"`)
}

func TestClassifyKeepsUnknownTagsInText(t *testing.T) {
	p := NewController(roster).Classify("  ask @Bob and @Elon  ")
	assert.Equal(t, "ask @Bob and @Elon", p.Text)
	assert.Equal(t, []string{"Elon"}, p.Tags)
}

// TestProperty_DebateIffTwoDistinctTags checks that a turn becomes a debate
// exactly when it tags at least two distinct roster agents, and that the
// debate is restricted to those agents.
func TestProperty_DebateIffTwoDistinctTags(t *testing.T) {
	c := NewController(roster)

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(rt, "tags")

		var (
			words    []string
			distinct = map[string]bool{}
		)

		for range n {
			name := rapid.SampledFrom(slices.Concat(roster, []string{"Bob", "Alice"})).Draw(rt, "name")
			if rapid.Bool().Draw(rt, "lower") {
				name = strings.ToLower(name)
			}

			words = append(words, "@"+name)

			if canonical, err := c.Resolve(name); err == nil {
				distinct[canonical] = true
			}
		}

		words = append(words, "discuss")
		p := c.Classify(strings.Join(words, " "))

		if len(distinct) >= 2 {
			require.Equal(rt, core.ModeDebate, p.Mode)
			assert.Len(rt, p.Participants, len(distinct))

			for _, name := range p.Participants {
				assert.True(rt, distinct[name])
			}
		} else {
			require.Equal(rt, core.ModeBroadcast, p.Mode)
			assert.Equal(rt, roster, p.Participants)
		}
	})
}

func debateRound() core.Round {
	return core.Round{Number: 2, Participants: []string{"Elon", "Sam"}, Mode: core.ModeDebate, MaxExchanges: 3}
}

func exchangeReplies(bodies map[string]string) ExchangeFunc {
	return func(_ context.Context, exchange int, _ []core.Utterance) []core.Utterance {
		var out []core.Utterance

		for _, name := range []string{"Elon", "Sam"} {
			b := testutil.NewUtteranceBuilder(name).Round(2).Exchange(exchange)
			if body, ok := bodies[name]; ok {
				b.Body(body)
			} else {
				b.Status(core.StatusError)
			}

			out = append(out, b.Build())
		}

		return out
	}
}

func TestRunDebateStopsAtMaxExchanges(t *testing.T) {
	c := NewController(roster)

	var pendingSizes []int

	run := func(ctx context.Context, exchange int, pending []core.Utterance) []core.Utterance {
		pendingSizes = append(pendingSizes, len(pending))
		return exchangeReplies(map[string]string{"Elon": "Mars first.", "Sam": "Revenue first."})(ctx, exchange, pending)
	}

	out := c.RunDebate(context.Background(), debateRound(), run)

	assert.Equal(t, 3, out.Exchanges)
	assert.Equal(t, StopMaxExchanges, out.Stop)
	assert.Len(t, out.Utterances, 6)
	assert.Equal(t, []int{0, 2, 4}, pendingSizes)
	assert.Equal(t, StateIdle, c.State())

	for i, u := range out.Utterances {
		assert.Equal(t, i/2+1, u.Exchange)
	}
}

func TestRunDebateAbortsWhenAllFail(t *testing.T) {
	c := NewController(roster)

	out := c.RunDebate(context.Background(), debateRound(), exchangeReplies(nil))

	assert.Equal(t, 1, out.Exchanges)
	assert.Equal(t, StopAllFailed, out.Stop)
	assert.Len(t, out.Utterances, 2)
	assert.Equal(t, StateIdle, c.State())
}

func TestRunDebateContinuesWithOneFailure(t *testing.T) {
	out := NewController(roster).RunDebate(context.Background(), debateRound(), exchangeReplies(map[string]string{"Elon": "Still Mars."}))

	assert.Equal(t, 3, out.Exchanges)
	assert.Equal(t, StopMaxExchanges, out.Stop)
}

func TestRunDebateStopsOnClosingSignal(t *testing.T) {
	out := NewController(roster).RunDebate(context.Background(), debateRound(),
		exchangeReplies(map[string]string{"Elon": "Fine, that works for me.", "Sam": "Good."}))

	assert.Equal(t, 1, out.Exchanges)
	assert.Equal(t, StopResolved, out.Stop)
}

func TestRunDebateIgnoresPartialWordSignals(t *testing.T) {
	out := NewController(roster).RunDebate(context.Background(), debateRound(),
		exchangeReplies(map[string]string{"Elon": "I strongly disagree.", "Sam": "Unresolved risks remain."}))

	assert.Equal(t, 3, out.Exchanges)
}

func TestRunDebateClosingSignalsDisabled(t *testing.T) {
	c := NewController(roster, func(o *Options) { o.ClosingSignals = []string{} })

	out := c.RunDebate(context.Background(), debateRound(),
		exchangeReplies(map[string]string{"Elon": "I agree.", "Sam": "Agree."}))

	assert.Equal(t, 3, out.Exchanges)
}

func TestRunDebateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewController(roster)

	out := c.RunDebate(ctx, debateRound(), func(ctx context.Context, exchange int, pending []core.Utterance) []core.Utterance {
		cancel()
		return exchangeReplies(map[string]string{"Elon": "a", "Sam": "b"})(ctx, exchange, pending)
	})

	assert.Equal(t, 1, out.Exchanges)
	assert.Equal(t, StopCancelled, out.Stop)
}

func TestBeginTracksState(t *testing.T) {
	c := NewController(roster)

	done := c.Begin(core.ModeContinuation)
	assert.Equal(t, StateContinuation, c.State())
	done()
	assert.Equal(t, StateIdle, c.State())

	done = c.Begin(core.ModeBroadcast)
	assert.Equal(t, StateBroadcast, c.State())
	done()
}
