package core

import "time"

// Method names the decision rule used by a synthesis.
type Method string

const (
	// MethodWeighted applies each agent's declared weight.
	MethodWeighted Method = "weighted_model"
	// MethodMajority treats every agent equally.
	MethodMajority Method = "majority_voting"
)

// SynthesisResult is the reduced outcome of a session. It is created once
// and never mutated.
type SynthesisResult struct {
	Summary        string             `json:"summary,omitempty"`
	Recommendation string             `json:"recommendation"`
	Options        []string           `json:"options,omitempty"`
	Agreements     []string           `json:"agreements,omitempty"`
	Conflicts      []string           `json:"conflicts,omitempty"`
	BlindSpots     []string           `json:"blind_spots,omitempty"`
	Confidence     float64            `json:"confidence"`
	Method         Method             `json:"method"`
	Weights        map[string]float64 `json:"weights"`
	Structured     bool               `json:"structured"`
	Raw            string             `json:"raw,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}
