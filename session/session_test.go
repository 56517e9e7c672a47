package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Hrishikeshgupta2002/AI-Council/core"
	"github.com/Hrishikeshgupta2002/AI-Council/internal/testutil"
)

var roster = []string{"Elon", "Sam", "Sheryl", "Ray"}

func TestAdvanceRound(t *testing.T) {
	s := New(func(o *Options) { o.MaxExchanges = 5 })

	assert.Equal(t, 0, s.Current().Number)

	r1 := s.AdvanceRound(core.ModeBroadcast, roster)
	assert.Equal(t, 1, r1.Number)
	assert.Zero(t, r1.MaxExchanges)

	r2 := s.AdvanceRound(core.ModeDebate, []string{"Elon", "Sam"})
	assert.Equal(t, 2, r2.Number)
	assert.Equal(t, 5, r2.MaxExchanges)
	assert.Equal(t, r2, s.Current())
}

func TestAppendCommitsRound(t *testing.T) {
	s := New()
	r := s.AdvanceRound(core.ModeBroadcast, roster)

	user := testutil.NewUtteranceBuilder("").User().Body("Should we launch?").Build()
	elon := testutil.NewUtteranceBuilder("Elon").Body("Ship it").Build()
	ray := testutil.NewUtteranceBuilder("Ray").Status(core.StatusTimeout).Build()

	require.NoError(t, s.Append(r, user, elon, ray))

	tr := s.Transcript()
	require.Len(t, tr, 3)
	assert.Equal(t, "Should we launch?", tr.Problem())
	assert.True(t, s.Participated(1, "Elon"))
	assert.False(t, s.Participated(1, "Ray"))
	assert.False(t, s.Participated(2, "Elon"))
}

func TestAppendRejectsMismatches(t *testing.T) {
	s := New()

	t.Run("no round opened", func(t *testing.T) {
		err := s.Append(core.Round{Number: 1}, testutil.NewUtteranceBuilder("Elon").Build())
		assert.ErrorIs(t, err, core.ErrRoundMismatch)
	})

	r1 := s.AdvanceRound(core.ModeBroadcast, roster)
	r2 := s.AdvanceRound(core.ModeDebate, []string{"Elon", "Sam"})

	tests := []struct {
		name  string
		round core.Round
		utts  []core.Utterance
	}{
		{"stale round", r1, []core.Utterance{testutil.NewUtteranceBuilder("Elon").Build()}},
		{"wrong utterance round", r2, []core.Utterance{
			testutil.NewUtteranceBuilder("Elon").Round(2).Build(),
			testutil.NewUtteranceBuilder("Sam").Round(1).Build(),
		}},
		{"declined status", r2, []core.Utterance{testutil.NewUtteranceBuilder("Elon").Round(2).Status(core.StatusDeclined).Build()}},
		{"unknown status", r2, []core.Utterance{testutil.NewUtteranceBuilder("Elon").Round(2).Status("maybe").Build()}},
		{"non participant", r2, []core.Utterance{testutil.NewUtteranceBuilder("Ray").Round(2).Build()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Append(tt.round, tt.utts...)
			assert.ErrorIs(t, err, core.ErrRoundMismatch)
			assert.Empty(t, s.Transcript(), "nothing may be appended on failure")
		})
	}
}

func TestAppendOncePerRound(t *testing.T) {
	s := New()
	r := s.AdvanceRound(core.ModeContinuation, roster)

	require.NoError(t, s.Append(r))
	assert.ErrorIs(t, s.Append(r, testutil.NewUtteranceBuilder("Elon").Build()), core.ErrRoundMismatch)
	assert.Empty(t, s.Transcript())
}

func TestTranscriptIsACopy(t *testing.T) {
	s := New()
	r := s.AdvanceRound(core.ModeBroadcast, roster)
	require.NoError(t, s.Append(r, testutil.NewUtteranceBuilder("Elon").Body("original").Build()))

	tr := s.Transcript()
	tr[0].Body = "mutated"

	assert.Equal(t, "original", s.Transcript()[0].Body)
}

func TestContextWindow(t *testing.T) {
	s := New()
	r := s.AdvanceRound(core.ModeBroadcast, roster)

	utts := []core.Utterance{testutil.NewUtteranceBuilder("").User().Body("Q").Build()}
	for i := range 11 {
		utts = append(utts, testutil.NewUtteranceBuilder("Elon").Body(strings.Repeat("x", i+1)).Build())
	}

	utts = append(utts, testutil.NewUtteranceBuilder("Sam").Status(core.StatusError).Build())
	require.NoError(t, s.Append(r, utts...))

	ctx := s.Context(0)
	lines := strings.Split(ctx, "\n")
	require.Len(t, lines, DefaultContextWindow)
	assert.Equal(t, "Sam: (no response)", lines[len(lines)-1])
	assert.NotContains(t, ctx, "You: Q")

	pending := testutil.NewUtteranceBuilder("Elon").Round(2).Body("pending line").Build()
	withPending := strings.Split(s.Context(3, pending), "\n")
	assert.Equal(t, []string{"Elon: " + strings.Repeat("x", 11), "Sam: (no response)", "Elon: pending line"}, withPending)
}

// TestProperty_RoundNumbersAreContiguous checks that round numbers grow by
// exactly one and the transcript stays ordered by round.
func TestProperty_RoundNumbersAreContiguous(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := New()
		rounds := rapid.IntRange(1, 20).Draw(rt, "rounds")

		for i := 1; i <= rounds; i++ {
			mode := rapid.SampledFrom([]core.Mode{core.ModeBroadcast, core.ModeContinuation, core.ModeDebate}).Draw(rt, "mode")
			r := s.AdvanceRound(mode, roster)
			require.Equal(rt, i, r.Number)

			if rapid.Bool().Draw(rt, "append") {
				speaker := rapid.SampledFrom(roster).Draw(rt, "speaker")
				require.NoError(rt, s.Append(r, testutil.NewUtteranceBuilder(speaker).Round(r.Number).Build()))
			}
		}

		prev := 0
		for _, u := range s.Transcript() {
			assert.GreaterOrEqual(rt, u.Round, prev)
			prev = u.Round
		}
	})
}
