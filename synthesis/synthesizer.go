package synthesis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Hrishikeshgupta2002/AI-Council/core"
	"github.com/Hrishikeshgupta2002/AI-Council/internal/util"
	"github.com/Hrishikeshgupta2002/AI-Council/logging"
	"github.com/Hrishikeshgupta2002/AI-Council/model"
)

const (
	// DefaultModel is the synthesis model used when none is configured.
	DefaultModel = "gpt-oss:120b-cloud"
	// DefaultTemperature is the synthesis sampling temperature.
	DefaultTemperature = 0.6
	// DefaultTimeout bounds the synthesis call.
	DefaultTimeout = 120 * time.Second

	// caller is the agent name reported on synthesis requests.
	caller = "synthesis"
)

// Outcome labels reported to an Observer.
const (
	OutcomeStructured        = "structured"
	OutcomeFallback          = "fallback"
	OutcomeInsufficientInput = "insufficient_input"
	OutcomeError             = "error"
)

// Observer receives the outcome of every Synthesize call.
type Observer interface {
	ObserveSynthesis(outcome string, d time.Duration)
}

// Options configures a Synthesizer.
type Options struct {
	Model       string
	Provider    string
	Temperature float64
	Timeout     time.Duration
	// UseWeightedModel applies each agent's weight; when false every agent
	// counts 1.0 and the result reports majority voting.
	UseWeightedModel bool
	// Instructions is the system prompt for the synthesis model.
	Instructions string
	// Template is the text/template source of the meta-prompt.
	Template string
	Observer Observer
	Logger   logging.Logger
}

// Synthesizer reduces transcripts into a SynthesisResult.
type Synthesizer struct {
	gateway model.Model
	opts    Options
	logger  logging.Logger
}

// New creates a Synthesizer using gateway.
func New(gateway model.Model, optFns ...func(o *Options)) *Synthesizer {
	opts := Options{
		Model:            DefaultModel,
		Temperature:      DefaultTemperature,
		Timeout:          DefaultTimeout,
		UseWeightedModel: true,
		Instructions:     DefaultInstructions,
		Template:         DefaultTemplate,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Synthesizer{gateway: gateway, opts: opts, logger: logging.OrNoOp(opts.Logger)}
}

// Method returns the decision rule this synthesizer applies.
func (s *Synthesizer) Method() core.Method {
	if s.opts.UseWeightedModel {
		return core.MethodWeighted
	}

	return core.MethodMajority
}

// Synthesize reduces transcript into one recommendation. It returns
// core.ErrInsufficientInput without calling the gateway when no agent
// produced a successful utterance.
func (s *Synthesizer) Synthesize(ctx context.Context, transcript core.Transcript, weights map[string]float64) (core.SynthesisResult, error) {
	start := time.Now()

	if !transcript.HasAgentOutput() {
		s.observe(OutcomeInsufficientInput, start)
		return core.SynthesisResult{}, core.ErrInsufficientInput
	}

	effective := s.effectiveWeights(weights, transcript)

	prompt, err := BuildPrompt(s.opts.Template, transcript, effective, s.opts.UseWeightedModel)
	if err != nil {
		s.observe(OutcomeError, start)
		return core.SynthesisResult{}, fmt.Errorf("synthesis: build prompt: %w", err)
	}

	raw, err := model.Complete(ctx, s.gateway, model.Request{
		Agent:        caller,
		Model:        s.opts.Model,
		Provider:     s.opts.Provider,
		Instructions: s.opts.Instructions,
		Prompt:       prompt,
		Temperature:  model.Temperature(s.opts.Temperature),
		Timeout:      s.opts.Timeout,
	})
	if err != nil {
		s.observe(OutcomeError, start)
		return core.SynthesisResult{}, fmt.Errorf("synthesis: %w", err)
	}

	sections := Parse(raw)
	if !sections.Structured {
		s.logger.Warn("synthesis response has no recommendation section, using raw text", "raw", raw)
		s.observe(OutcomeFallback, start)
	} else {
		s.observe(OutcomeStructured, start)
	}

	return core.SynthesisResult{
		Summary:        sections.Summary,
		Recommendation: sections.Recommendation,
		Options:        sections.Options,
		Agreements:     sections.Agreements,
		Conflicts:      sections.Conflicts,
		BlindSpots:     sections.BlindSpots,
		Confidence:     Confidence(effective, transcript.Contributors(), len(sections.Agreements), len(sections.Conflicts)),
		Method:         s.Method(),
		Weights:        effective,
		Structured:     sections.Structured,
		Raw:            raw,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func (s *Synthesizer) observe(outcome string, start time.Time) {
	if s.opts.Observer != nil {
		s.opts.Observer.ObserveSynthesis(outcome, time.Since(start))
	}
}

// effectiveWeights copies the declared weights (or 1.0 for everyone when
// weighting is off) and adds speakers missing from the map with weight 0.
func (s *Synthesizer) effectiveWeights(weights map[string]float64, transcript core.Transcript) map[string]float64 {
	out := make(map[string]float64, len(weights))

	for name, w := range weights {
		if s.opts.UseWeightedModel {
			out[name] = w
		} else {
			out[name] = 1
		}
	}

	for name := range transcript.Contributors() {
		if _, ok := out[name]; !ok {
			if s.opts.UseWeightedModel {
				out[name] = 0
			} else {
				out[name] = 1
			}
		}
	}

	return out
}

// Confidence combines the weight share of agents that contributed with the
// balance of agreements over conflicts:
//
//	participation * (agreements+1) / (agreements+conflicts+2)
//
// rounded to two decimals, so the value is always within [0,1].
func Confidence(weights map[string]float64, contributors map[string]bool, agreements, conflicts int) float64 {
	var total, contributed float64

	for name, w := range weights {
		total += w
		if contributors[name] {
			contributed += w
		}
	}

	participation := 0.0

	switch {
	case total > 0:
		participation = contributed / total
	case len(weights) > 0:
		n := 0

		for name := range weights {
			if contributors[name] {
				n++
			}
		}

		participation = float64(n) / float64(len(weights))
	}

	ratio := float64(agreements+1) / float64(agreements+conflicts+2)

	return math.Round(participation*ratio*100) / 100
}

// WeightLine is one row of the weights table in the meta-prompt.
type WeightLine struct {
	Name   string
	Weight float64
}

// RankedWeights orders weights from highest to lowest, ties by name.
func RankedWeights(weights map[string]float64) []WeightLine {
	out := make([]WeightLine, 0, len(weights))
	for name, w := range weights {
		out = append(out, WeightLine{Name: name, Weight: w})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}

		return out[i].Name < out[j].Name
	})

	return out
}

// BuildPrompt renders the meta-prompt for transcript. Failed utterances are
// left out.
func BuildPrompt(tmpl string, transcript core.Transcript, weights map[string]float64, weighted bool) (string, error) {
	var lines []string

	for _, u := range transcript {
		if u.IsUser() || u.OK() {
			lines = append(lines, fmt.Sprintf("[Round %d] %s: %s", u.Round, u.Agent, u.Body))
		}
	}

	ranked := RankedWeights(weights)

	rows := make([]string, 0, len(ranked))
	for _, wl := range ranked {
		rows = append(rows, fmt.Sprintf("- %s (weight %.2f)", wl.Name, wl.Weight))
	}

	return util.RenderTemplate(tmpl, map[string]any{
		"Problem":    transcript.Problem(),
		"Weights":    strings.Join(rows, "\n"),
		"Transcript": strings.Join(lines, "\n"),
		"Weighted":   weighted,
	})
}

// DefaultInstructions is the synthesis model's system prompt.
const DefaultInstructions = `You are the council's synthesis analyst. You read a group discussion between advisors and reduce it to one clear recommendation. You never invent positions nobody took.`

// DefaultTemplate is the meta-prompt. It receives Problem, Weights,
// Transcript and Weighted.
const DefaultTemplate = `PROBLEM:
{{default "(not stated)" .Problem}}

ADVISOR WEIGHTS:
{{.Weights}}
{{if .Weighted}}Higher weight means more influence: when advisors conflict, favor the position of the higher weighted advisor.{{else}}Every advisor counts equally: favor the position most advisors hold.{{end}}

DISCUSSION:
{{.Transcript}}

Answer using exactly these section markers, each on its own line:

SUMMARY:
Two or three sentences on where the discussion landed.

AGREEMENTS:
- one bullet per point the advisors share

CONFLICTS:
- one bullet per unresolved disagreement, naming who holds which side

BLIND SPOTS:
- one bullet per important consideration nobody raised

RECOMMENDATION:
1. the best option first
2. then the alternatives, ranked`
