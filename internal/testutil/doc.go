// Package testutil contains helper builders and fakes used across tests to
// reduce boilerplate when constructing agents, utterances and transcripts, and
// to script inference gateway behavior (replies, failures, hangs) per agent.
// They are not intended for production usage.
package testutil
