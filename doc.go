// Package council coordinates a panel of persona agents around one problem
// statement. Most applications interact with this package by:
//  1. Building a roster of core.Agent values (see the config package)
//  2. Creating a Council via New() with a model.Model gateway
//  3. Calling Start with the problem, then Turn for every user line
//  4. Calling Synthesize to reduce the transcript into one recommendation
//
// Each user turn becomes exactly one round. Plain text is broadcast to every
// agent, a blank turn asks agents whether they want to add something, and a
// turn tagging two or more agents (@Elon @Ray ...) starts a bounded debate
// between them. Individual agent failures never abort a round; they are
// recorded in the transcript as timeout or error utterances.
//
// A Council is driven by one goroutine at a time. Concurrent calls are
// serialized.
package council
