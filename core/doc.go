// Package core provides the foundational domain types shared by every part of
// the council. It defines:
//
//   - Agent (an immutable persona record: name, weight, instructions, model)
//   - Utterance and Transcript (the append-only conversation record)
//   - Round (one broadcast, continuation or debate step of the conversation)
//   - SynthesisResult (the reduced, weighted recommendation)
//   - Sentinel and typed errors plus Classify for mapping failures to a Status
//
// The package holds no orchestration logic. Dispatch, conversation state,
// debate control and synthesis live in their own packages and exchange these
// values.
package core
