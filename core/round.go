package core

import "slices"

// Mode is the kind of conversation step a round represents.
type Mode string

const (
	// ModeBroadcast asks every agent to respond to the user's turn.
	ModeBroadcast Mode = "broadcast"
	// ModeContinuation is the broadcast variant for a blank user turn. Agents
	// may decline.
	ModeContinuation Mode = "continuation"
	// ModeDebate restricts the round to the tagged agents, which exchange
	// replies for up to MaxExchanges turns.
	ModeDebate Mode = "debate"
)

// DefaultMaxExchanges bounds a debate round when no other value is configured.
const DefaultMaxExchanges = 3

// Round is one step of the conversation. Numbers start at 1 and increase by
// exactly one per round.
type Round struct {
	Number       int      `json:"number"`
	Participants []string `json:"participants"`
	Mode         Mode     `json:"mode"`
	MaxExchanges int      `json:"max_exchanges,omitempty"`
}

// Includes reports whether the named agent participates in the round.
func (r Round) Includes(name string) bool {
	return slices.Contains(r.Participants, name)
}
