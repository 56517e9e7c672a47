package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Hrishikeshgupta2002/AI-Council/core"
)

// DefaultContextWindow is the number of transcript lines shown to agents.
const DefaultContextWindow = 10

// Options configures a Session.
type Options struct {
	// ID overrides the generated session identifier.
	ID string
	// MaxExchanges is recorded on debate rounds.
	MaxExchanges int
}

// Session tracks the transcript and the current round. It is safe for
// concurrent access.
//
// Contract:
//   - AdvanceRound numbers rounds 1, 2, 3, ... with no gaps
//   - Append accepts utterances for the current round only, all or nothing
//   - each round is appended at most once
//   - Transcript returns a copy
type Session struct {
	ID      string
	Created time.Time

	mu           sync.RWMutex
	transcript   core.Transcript
	current      core.Round
	committed    bool
	participated map[int]map[string]bool
	maxExchanges int
}

// New creates an empty session.
func New(optFns ...func(o *Options)) *Session {
	opts := Options{MaxExchanges: core.DefaultMaxExchanges}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ID == "" {
		opts.ID = core.NewID()
	}

	if opts.MaxExchanges < 1 {
		opts.MaxExchanges = core.DefaultMaxExchanges
	}

	return &Session{
		ID:           opts.ID,
		Created:      time.Now(),
		participated: map[int]map[string]bool{},
		maxExchanges: opts.MaxExchanges,
	}
}

// AdvanceRound opens the next round. The returned round carries a copy of
// participants.
func (s *Session) AdvanceRound(mode core.Mode, participants []string) core.Round {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := core.Round{
		Number:       s.current.Number + 1,
		Participants: append([]string(nil), participants...),
		Mode:         mode,
	}

	if mode == core.ModeDebate {
		r.MaxExchanges = s.maxExchanges
	}

	s.current = r
	s.committed = false

	return r
}

// Current returns the most recently opened round. The zero Round means no
// round has been opened yet.
func (s *Session) Current() core.Round {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.current
	r.Participants = append([]string(nil), s.current.Participants...)

	return r
}

// Append records the utterances of round. It fails with core.ErrRoundMismatch
// and appends nothing when round is not the current round, the round was
// already appended, or any utterance carries another round number, an unknown
// or declined status, or an agent outside the round. User utterances are
// exempt from the participant check. An empty call commits an empty round.
func (s *Session) Append(round core.Round, utterances ...core.Utterance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if round.Number == 0 || round.Number != s.current.Number {
		return fmt.Errorf("%w: round %d is not the current round %d", core.ErrRoundMismatch, round.Number, s.current.Number)
	}

	if s.committed {
		return fmt.Errorf("%w: round %d already appended", core.ErrRoundMismatch, round.Number)
	}

	for _, u := range utterances {
		if u.Round != round.Number {
			return fmt.Errorf("%w: utterance from %s carries round %d, want %d", core.ErrRoundMismatch, u.Agent, u.Round, round.Number)
		}

		if !u.Status.Valid() || u.Status == core.StatusDeclined {
			return fmt.Errorf("%w: utterance from %s has status %q", core.ErrRoundMismatch, u.Agent, u.Status)
		}

		if !u.IsUser() && !s.current.Includes(u.Agent) {
			return fmt.Errorf("%w: %s does not participate in round %d", core.ErrRoundMismatch, u.Agent, round.Number)
		}
	}

	flags := map[string]bool{}

	for _, u := range utterances {
		if u.OK() {
			flags[u.Agent] = true
		}
	}

	s.transcript = append(s.transcript, utterances...)
	s.participated[round.Number] = flags
	s.committed = true

	return nil
}

// Transcript returns a copy of the transcript.
func (s *Session) Transcript() core.Transcript {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(core.Transcript, len(s.transcript))
	copy(out, s.transcript)

	return out
}

// Participated reports whether agent produced an ok utterance in round.
func (s *Session) Participated(round int, agent string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.participated[round][agent]
}

// Context renders the last window lines of the transcript followed by
// pending, one "Name: body" line per utterance. Failed utterances render as
// "Name: (no response)".
func (s *Session) Context(window int, pending ...core.Utterance) string {
	if window <= 0 {
		window = DefaultContextWindow
	}

	s.mu.RLock()
	lines := make([]string, 0, len(s.transcript)+len(pending))

	for _, u := range s.transcript {
		lines = append(lines, Line(u))
	}
	s.mu.RUnlock()

	for _, u := range pending {
		lines = append(lines, Line(u))
	}

	if len(lines) > window {
		lines = lines[len(lines)-window:]
	}

	return strings.Join(lines, "\n")
}

// Line renders one utterance as a transcript line.
func Line(u core.Utterance) string {
	if u.IsUser() || u.Status == core.StatusOK {
		return u.Agent + ": " + u.Body
	}

	return u.Agent + ": (no response)"
}
