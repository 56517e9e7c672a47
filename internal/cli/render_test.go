package cli

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	council "github.com/Hrishikeshgupta2002/AI-Council"
	"github.com/Hrishikeshgupta2002/AI-Council/core"
	"github.com/Hrishikeshgupta2002/AI-Council/debate"
	"github.com/Hrishikeshgupta2002/AI-Council/internal/testutil"
)

func newTestRenderer(t *testing.T) (*renderer, *bytes.Buffer) {
	t.Helper()

	buf := new(bytes.Buffer)
	return newRenderer(buf, testutil.Council(t), map[string]string{"Elon": "cyan"}), buf
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("6"), colorFor("Cyan"))
	assert.Equal(t, lipgloss.Color("#ff8800"), colorFor("#ff8800"))
}

func TestRenderRound(t *testing.T) {
	r, buf := newTestRenderer(t)

	failed := core.NewFailedUtterance("Ray", 2, &core.TimeoutError{Agent: "Ray"})
	r.round(council.TurnResult{
		Round: core.Round{Number: 2, Mode: core.ModeDebate, Participants: []string{"Elon", "Ray"}, MaxExchanges: 3},
		Utterances: []core.Utterance{
			core.NewUserUtterance(2, "@Elon @Ray go"),
			testutil.NewUtteranceBuilder("Elon").Round(2).Exchange(1).Body("Faster.").Build(),
			withExchange(failed, 1),
		},
		UnknownTags: []string{"Bob"},
		Exchanges:   1,
		Stop:        debate.StopAllFailed,
	}, false)

	out := buf.String()
	assert.Contains(t, out, "Round 2: debate between Elon, Ray")
	assert.Contains(t, out, "No agent named @Bob.")
	assert.Contains(t, out, "Exchange 1 of 3")
	assert.Contains(t, out, "Elon (Elon persona) Faster.")
	assert.Contains(t, out, "Ray (Ray persona) (no response, timeout")
	assert.Contains(t, out, "Debate stopped: no agent responded.")
	assert.NotContains(t, out, "You:", "user line is not echoed")
}

func withExchange(u core.Utterance, n int) core.Utterance {
	u.Exchange = n
	return u
}

func TestRenderContinuation(t *testing.T) {
	r, buf := newTestRenderer(t)

	r.round(council.TurnResult{
		Round:    core.Round{Number: 3, Mode: core.ModeContinuation},
		Declined: []string{"Sam", "Ray"},
	}, false)

	assert.Contains(t, buf.String(), "Sam, Ray had nothing to add.")
	assert.Contains(t, buf.String(), "No agents responded this round.")
}

func TestRenderSynthesis(t *testing.T) {
	r, buf := newTestRenderer(t)

	r.synthesis(core.SynthesisResult{
		Summary:    "Go, carefully.",
		Agreements: []string{"Demand exists"},
		BlindSpots: []string{"Hiring"},
		Options:    []string{"Pilot in Berlin", "Scale in Q3"},
		Confidence: 0.62,
		Method:     core.MethodWeighted,
		Weights:    map[string]float64{"Elon": 0.35, "Ray": 0.15},
		Structured: true,
	})

	out := buf.String()
	assert.Contains(t, out, "Go, carefully.")
	assert.Contains(t, out, "- Demand exists")
	assert.NotContains(t, out, "Conflicts", "empty sections are omitted")
	assert.Contains(t, out, "1. Pilot in Berlin")
	assert.Contains(t, out, "2. Scale in Q3")
	assert.Contains(t, out, "weighted model, confidence 62%")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("0.35")), bytes.Index(buf.Bytes(), []byte("0.15")))
}

func TestRenderFallbackSynthesis(t *testing.T) {
	r, buf := newTestRenderer(t)

	r.synthesis(core.SynthesisResult{
		Recommendation: "Just ship it.",
		Method:         core.MethodMajority,
	})

	assert.Contains(t, buf.String(), "Just ship it.")
	assert.Contains(t, buf.String(), "majority voting")
	assert.Contains(t, buf.String(), "did not follow the expected format")
}
