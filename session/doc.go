// Package session holds the conversation state of one council run: the
// append-only transcript and the current round.
//
// Session is owned by the orchestrator. Dispatch workers never write to it;
// they return utterances that the orchestrator appends once per round with
// Append, the only mutator. Everything lives in memory for the life of the
// process.
package session
