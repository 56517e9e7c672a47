package agent

import (
	"fmt"
	"strings"

	"github.com/Hrishikeshgupta2002/AI-Council/core"
	"github.com/Hrishikeshgupta2002/AI-Council/internal/util"
)

// DeclineMarker is the reply an agent gives to pass on a continuation round.
const DeclineMarker = "SKIP"

// Prompts holds the text/template sources used to build the user message for
// each round mode. Templates receive Name, Persona, Others, Message, Context,
// Exchange, MaxExchanges and DeclineMarker.
type Prompts struct {
	Broadcast    string
	Continuation string
	Debate       string
}

// DefaultPrompts returns the group-chat templates.
func DefaultPrompts() Prompts {
	return Prompts{
		Broadcast: `You are {{.Name}}{{if .Persona}}, the {{.Persona}}{{end}}, in a group chat with {{join ", " .Others}} and the user.

Recent conversation:
{{default "(nothing yet)" .Context}}

The user just said: "{{.Message}}"

Reply in 2-4 sentences from your own perspective. Build on or push back against what the others said. Do not prefix your reply with your name.`,

		Continuation: `You are {{.Name}}{{if .Persona}}, the {{.Persona}}{{end}}, in a group chat with {{join ", " .Others}} and the user.

Recent conversation:
{{default "(nothing yet)" .Context}}

The user wants the discussion to keep going. If you have something new to add, reply in 2-3 sentences. If you have nothing new to add, reply with exactly {{.DeclineMarker}}.`,

		Debate: `You are {{.Name}}{{if .Persona}}, the {{.Persona}}{{end}}, debating {{join ", " .Others}} at the user's request.

The user said: "{{.Message}}"

Recent conversation:
{{default "(nothing yet)" .Context}}

This is exchange {{.Exchange}} of {{.MaxExchanges}}. Answer the other side directly in 2-3 sentences.{{if eq .Exchange .MaxExchanges}} This is the last exchange, so move toward a conclusion and say where you now agree.{{end}}`,
	}
}

// Render builds the prompt for agent a answering in.
func (p Prompts) Render(a core.Agent, in Input) (string, error) {
	var tmpl string

	switch in.Round.Mode {
	case core.ModeBroadcast:
		tmpl = p.Broadcast
	case core.ModeContinuation:
		tmpl = p.Continuation
	case core.ModeDebate:
		tmpl = p.Debate
	default:
		return "", fmt.Errorf("agent: no prompt for round mode %q", in.Round.Mode)
	}

	others := make([]string, 0, len(in.Round.Participants))
	for _, name := range in.Round.Participants {
		if name != a.Name() {
			others = append(others, name)
		}
	}

	maxExchanges := in.Round.MaxExchanges
	if maxExchanges == 0 {
		maxExchanges = core.DefaultMaxExchanges
	}

	return util.RenderTemplate(tmpl, map[string]any{
		"Name":          a.Name(),
		"Persona":       a.Persona(),
		"Others":        others,
		"Message":       in.Message,
		"Context":       in.Context,
		"Exchange":      in.Exchange,
		"MaxExchanges":  maxExchanges,
		"DeclineMarker": DeclineMarker,
	})
}

// IsDecline reports whether a continuation reply passes on the round. The
// marker is matched case-insensitively at the start, ignoring markdown
// decoration and quotes.
func IsDecline(reply string) bool {
	s := strings.TrimLeft(strings.TrimSpace(reply), "*_`\"'")
	if len(s) < len(DeclineMarker) || !strings.EqualFold(s[:len(DeclineMarker)], DeclineMarker) {
		return false
	}

	rest := s[len(DeclineMarker):]

	return rest == "" || !isWordByte(rest[0])
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
