package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hrishikeshgupta2002/AI-Council/core"
	"github.com/Hrishikeshgupta2002/AI-Council/internal/testutil"
)

func TestRenderDebatePrompt(t *testing.T) {
	p := DefaultPrompts()
	in := Input{
		Round:    core.Round{Number: 3, Participants: []string{"Elon", "Sam"}, Mode: core.ModeDebate, MaxExchanges: 3},
		Exchange: 3,
		Message:  "@Elon @Sam debate the plan",
		Context:  "Elon: go\nSam: wait",
	}

	out, err := p.Render(testutil.Agent(t, "Elon", 0.35), in)
	require.NoError(t, err)
	assert.Contains(t, out, "debating Sam")
	assert.Contains(t, out, "exchange 3 of 3")
	assert.Contains(t, out, "last exchange")

	in.Exchange = 1
	out, err = p.Render(testutil.Agent(t, "Elon", 0.35), in)
	require.NoError(t, err)
	assert.NotContains(t, out, "last exchange")
}

func TestRenderContinuationPrompt(t *testing.T) {
	in := Input{Round: core.Round{Number: 2, Participants: []string{"Elon", "Ray"}, Mode: core.ModeContinuation}}

	out, err := DefaultPrompts().Render(testutil.Agent(t, "Ray", 0.15), in)
	require.NoError(t, err)
	assert.Contains(t, out, "reply with exactly SKIP")
	assert.Contains(t, out, "(nothing yet)")
}

func TestRenderUnknownMode(t *testing.T) {
	_, err := DefaultPrompts().Render(testutil.Agent(t, "Ray", 0.15), Input{Round: core.Round{Mode: "vote"}})
	assert.Error(t, err)
}

func TestIsDecline(t *testing.T) {
	for _, s := range []string{"SKIP", "skip", " Skip.", "**SKIP**", `"SKIP"`, "SKIP - nothing to add"} {
		assert.True(t, IsDecline(s), s)
	}

	for _, s := range []string{"", "Skipping ahead, I think we should", "I would SKIP", "SKIPPER"} {
		assert.False(t, IsDecline(s), s)
	}
}

func TestInstructionStatic(t *testing.T) {
	inst := NewInstructionFromText("static instruction")
	assert.True(t, inst.IsStatic())

	got, err := inst.Resolve(Input{})
	require.NoError(t, err)
	assert.Equal(t, "static instruction", got)
}

type fixedProvider string

func (p fixedProvider) Instruction(Input) (string, error) { return string(p), nil }

func TestInstructionProvider(t *testing.T) {
	inst := NewInstructionFromProvider(fixedProvider("dynamic"))
	assert.False(t, inst.IsStatic())

	got, err := inst.Resolve(Input{})
	require.NoError(t, err)
	assert.Equal(t, "dynamic", got)
}
