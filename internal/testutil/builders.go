package testutil

import (
	"testing"

	"github.com/Hrishikeshgupta2002/AI-Council/core"
)

// Agent builds a valid agent with the given weight, failing the test on error.
func Agent(t testing.TB, name string, weight float64) core.Agent {
	t.Helper()

	a, err := core.NewAgent(name, func(o *core.AgentOptions) {
		o.Persona = name + " persona"
		o.Weight = weight
		o.Model = "model-" + name
		o.Instructions = "You are " + name + "."
	})
	if err != nil {
		t.Fatalf("testutil: build agent %s: %v", name, err)
	}

	return a
}

// Council builds the four default personas with their default weights.
func Council(t testing.TB) []core.Agent {
	t.Helper()

	return []core.Agent{
		Agent(t, "Elon", 0.35),
		Agent(t, "Sam", 0.30),
		Agent(t, "Sheryl", 0.20),
		Agent(t, "Ray", 0.15),
	}
}

// UtteranceBuilder provides a fluent helper for constructing utterances.
//
//	u := NewUtteranceBuilder("Elon").Round(2).Body("Ship it").Build()
type UtteranceBuilder struct {
	u core.Utterance
}

// NewUtteranceBuilder starts an ok agent utterance in round 1.
func NewUtteranceBuilder(agent string) *UtteranceBuilder {
	return &UtteranceBuilder{u: core.NewUtterance(agent, 1, agent+" speaks")}
}

// Round sets the round number (chainable).
func (b *UtteranceBuilder) Round(n int) *UtteranceBuilder { b.u.Round = n; return b }

// Exchange sets the debate exchange (chainable).
func (b *UtteranceBuilder) Exchange(n int) *UtteranceBuilder { b.u.Exchange = n; return b }

// Body sets the text (chainable).
func (b *UtteranceBuilder) Body(s string) *UtteranceBuilder { b.u.Body = s; return b }

// User marks the utterance as a user turn (chainable).
func (b *UtteranceBuilder) User() *UtteranceBuilder {
	b.u.Role = core.RoleUser
	b.u.Agent = core.UserName

	return b
}

// Status sets the status; non-ok statuses clear the body (chainable).
func (b *UtteranceBuilder) Status(s core.Status) *UtteranceBuilder {
	b.u.Status = s
	if s != core.StatusOK {
		b.u.Body = ""
	}

	return b
}

// Build returns the utterance.
func (b *UtteranceBuilder) Build() core.Utterance { return b.u }
