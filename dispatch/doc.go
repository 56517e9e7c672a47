// Package dispatch fans one round out to its participants concurrently.
//
// A Dispatcher runs at most MaxWorkers calls at a time. Each call gets its own
// deadline measured from the moment a worker starts it; a call that misses
// the deadline becomes a timeout utterance and its goroutine is abandoned
// rather than awaited. Dispatch always returns exactly one utterance per
// participant, in completion order, and never touches the transcript.
package dispatch
