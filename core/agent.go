package core

import (
	"errors"
	"fmt"
	"regexp"
)

// ProviderOllama is the gateway route used when an agent does not name one.
const ProviderOllama = "ollama"

var agentNamePattern = regexp.MustCompile(`^\w+$`)

// AgentOptions configures a new Agent.
type AgentOptions struct {
	// Persona is a short role label such as "Visionary".
	Persona string
	// Weight is the agent's influence on weighted synthesis, in [0,1].
	Weight float64
	// Instructions is the persona system prompt.
	Instructions string
	// Model is the backend model identifier.
	Model string
	// Provider selects the gateway route (ollama, openai, anthropic).
	Provider string
	// Temperature is the sampling temperature passed to the backend.
	Temperature float64
}

// Agent is an immutable persona record. Persona distinctiveness lives
// entirely in its instructions and model; every agent shares the same call
// path through the inference gateway.
type Agent struct {
	name         string
	persona      string
	weight       float64
	instructions string
	model        string
	provider     string
	temperature  float64
}

// NewAgent validates the options and returns an Agent. Names must be a single
// word so they can be addressed with @mentions.
func NewAgent(name string, optFns ...func(o *AgentOptions)) (Agent, error) {
	opts := AgentOptions{
		Weight:      1,
		Provider:    ProviderOllama,
		Temperature: 0.7,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if !agentNamePattern.MatchString(name) {
		return Agent{}, fmt.Errorf("core: invalid agent name %q: must be a single word", name)
	}

	if opts.Weight < 0 || opts.Weight > 1 {
		return Agent{}, fmt.Errorf("core: agent %s: weight %.2f outside [0,1]", name, opts.Weight)
	}

	if opts.Model == "" {
		return Agent{}, errors.New("core: agent " + name + ": model is required")
	}

	if opts.Provider == "" {
		opts.Provider = ProviderOllama
	}

	return Agent{
		name:         name,
		persona:      opts.Persona,
		weight:       opts.Weight,
		instructions: opts.Instructions,
		model:        opts.Model,
		provider:     opts.Provider,
		temperature:  opts.Temperature,
	}, nil
}

// Name returns the unique agent name.
func (a Agent) Name() string { return a.name }

// Persona returns the role label.
func (a Agent) Persona() string { return a.persona }

// Weight returns the synthesis weight in [0,1].
func (a Agent) Weight() float64 { return a.weight }

// Instructions returns the persona system prompt.
func (a Agent) Instructions() string { return a.instructions }

// Model returns the backend model identifier.
func (a Agent) Model() string { return a.model }

// Provider returns the gateway route.
func (a Agent) Provider() string { return a.provider }

// Temperature returns the sampling temperature.
func (a Agent) Temperature() float64 { return a.temperature }

// Weights maps each agent name to its declared weight.
func Weights(agents []Agent) map[string]float64 {
	out := make(map[string]float64, len(agents))
	for _, a := range agents {
		out[a.name] = a.weight
	}

	return out
}

// Names returns the agent names in roster order.
func Names(agents []Agent) []string {
	out := make([]string, 0, len(agents))
	for _, a := range agents {
		out = append(out, a.name)
	}

	return out
}
