// Package debate classifies user turns and drives targeted debates.
//
// The Controller is a small state machine:
//
//	Idle -> Broadcast -> Idle
//	Idle -> Continuation -> Idle
//	Idle -> Debate (exchange 1..MaxExchanges) -> Idle
//
// Classify scans a turn for @Name tags. Two or more distinct roster names
// start a debate restricted to exactly those agents; zero or one tag keeps the
// turn a broadcast to everyone; a blank turn asks everyone whether they want
// to continue. RunDebate repeats exchanges until an ExchangeLimiter pair
// reaches its budget, every tagged agent fails in one exchange, or a reply
// carries a closing signal.
package debate
