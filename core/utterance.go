package core

import (
	"time"
)

// Status describes the outcome of one agent call.
type Status string

const (
	// StatusOK marks a successful reply with a non-empty body.
	StatusOK Status = "ok"
	// StatusTimeout marks a call that missed its deadline. The body is empty.
	StatusTimeout Status = "timeout"
	// StatusError marks a backend failure. Reason carries the cause.
	StatusError Status = "error"
	// StatusDeclined marks an agent that passed on a continuation round.
	// Declined utterances are produced by the dispatcher and never enter the
	// transcript.
	StatusDeclined Status = "declined"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusTimeout, StatusError, StatusDeclined:
		return true
	default:
		return false
	}
}

// Role distinguishes agent output from the user's own turns.
type Role string

const (
	RoleAgent Role = "agent"
	RoleUser  Role = "user"
)

// UserName is the speaker name recorded on user utterances.
const UserName = "You"

// Utterance is one message in the transcript. After construction it should be
// treated as immutable.
type Utterance struct {
	ID        string    `json:"id"`
	Agent     string    `json:"agent"`
	Role      Role      `json:"role"`
	Round     int       `json:"round"`
	Exchange  int       `json:"exchange,omitempty"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
}

// NewUtterance creates a successful agent utterance.
func NewUtterance(agent string, round int, body string) Utterance {
	return Utterance{
		ID:        NewID(),
		Agent:     agent,
		Role:      RoleAgent,
		Round:     round,
		Body:      body,
		Timestamp: time.Now().UTC(),
		Status:    StatusOK,
	}
}

// NewUserUtterance records a user turn as the opening line of a round.
func NewUserUtterance(round int, text string) Utterance {
	u := NewUtterance(UserName, round, text)
	u.Role = RoleUser

	return u
}

// NewFailedUtterance creates an agent utterance for a failed call. The status
// is derived from err with Classify; the body is always empty.
func NewFailedUtterance(agent string, round int, err error) Utterance {
	u := NewUtterance(agent, round, "")
	u.Status = Classify(err)

	if err != nil {
		u.Reason = err.Error()
	}

	return u
}

// NewDeclinedUtterance marks an agent that chose not to add anything.
func NewDeclinedUtterance(agent string, round int) Utterance {
	u := NewUtterance(agent, round, "")
	u.Status = StatusDeclined

	return u
}

// OK reports whether u is a successful agent contribution.
func (u Utterance) OK() bool {
	return u.Role == RoleAgent && u.Status == StatusOK
}

// IsUser reports whether u records a user turn.
func (u Utterance) IsUser() bool {
	return u.Role == RoleUser
}

// Transcript is the ordered, append-only record of a session. Round numbers
// are non-decreasing; within a round, utterances appear in completion order.
type Transcript []Utterance

// Successful returns the agent utterances with status ok.
func (t Transcript) Successful() []Utterance {
	var out []Utterance

	for _, u := range t {
		if u.OK() {
			out = append(out, u)
		}
	}

	return out
}

// HasAgentOutput reports whether at least one agent produced a successful
// utterance.
func (t Transcript) HasAgentOutput() bool {
	for _, u := range t {
		if u.OK() {
			return true
		}
	}

	return false
}

// Problem returns the body of the first user utterance, which is the problem
// statement that opened the session.
func (t Transcript) Problem() string {
	for _, u := range t {
		if u.IsUser() {
			return u.Body
		}
	}

	return ""
}

// Round returns the utterances recorded for round n.
func (t Transcript) Round(n int) []Utterance {
	var out []Utterance

	for _, u := range t {
		if u.Round == n {
			out = append(out, u)
		}
	}

	return out
}

// Contributors returns the set of agents with at least one ok utterance.
func (t Transcript) Contributors() map[string]bool {
	out := map[string]bool{}

	for _, u := range t {
		if u.OK() {
			out[u.Agent] = true
		}
	}

	return out
}
