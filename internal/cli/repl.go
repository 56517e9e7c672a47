package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"

	council "github.com/Hrishikeshgupta2002/AI-Council"
	"github.com/Hrishikeshgupta2002/AI-Council/core"
	"github.com/Hrishikeshgupta2002/AI-Council/logging"
)

// synthCommand requests a synthesis without ending the session.
const synthCommand = "/synth"

// conversation is the part of council.Council the loop drives.
type conversation interface {
	Start(ctx context.Context, problem string) (council.TurnResult, error)
	Turn(ctx context.Context, text string) (council.TurnResult, error)
	Synthesize(ctx context.Context) (core.SynthesisResult, error)
	Transcript() core.Transcript
}

type replSession struct {
	council conversation
	render  *renderer
	lines   *bufio.Scanner
	logger  *logging.CouncilLogger
	debug   bool
	names   []string
}

func (s *replSession) start(ctx context.Context, problem string) error {
	s.render.notice("Agents are typing...")

	res, err := s.council.Start(ctx, problem)
	if err != nil {
		return err
	}

	s.render.round(res, true)

	return nil
}

// loop reads user turns until exit or EOF, then synthesizes when at least
// one agent answered.
func (s *replSession) loop(ctx context.Context) error {
	s.render.printf("\n")
	s.render.help(s.names)

	for {
		s.render.prompt()

		if !s.lines.Scan() {
			s.render.printf("\n")
			break
		}

		input := strings.TrimSpace(s.lines.Text())

		if isExit(input) {
			break
		}

		if strings.EqualFold(input, synthCommand) {
			if err := s.synthesize(ctx); err != nil {
				return err
			}
			continue
		}

		res, err := s.council.Turn(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				s.render.warning("Interrupted.")
				return ctx.Err()
			}
			s.report(err, "turn failed")
			continue
		}

		s.render.round(res, false)
	}

	if err := s.lines.Err(); err != nil {
		return err
	}

	if !s.council.Transcript().HasAgentOutput() {
		s.render.notice("No agent responded during this session; nothing to synthesize.")
		return nil
	}

	return s.synthesize(ctx)
}

// synthesize renders a synthesis. Insufficient input and backend failures
// are reported and do not end the session; only cancellation is returned.
func (s *replSession) synthesize(ctx context.Context) error {
	s.render.notice("Synthesizing the discussion...")

	result, err := s.council.Synthesize(ctx)

	switch {
	case err == nil:
		s.render.synthesis(result)
		return nil
	case errors.Is(err, core.ErrInsufficientInput):
		s.render.warning("Nothing to synthesize yet: no agent has answered successfully.")
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		s.report(err, "synthesis failed")
		return nil
	}
}

func (s *replSession) report(err error, msg string) {
	s.render.failure(err)

	if s.debug && s.logger != nil {
		s.logger.ErrorWithStack(err, msg)
		return
	}

	s.render.notice("Run with --debug (or DEBUG=true) for details.")
}
