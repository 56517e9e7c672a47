// Package synthesis reduces a council transcript into one weighted
// recommendation with a single call to a distinguished synthesis model.
//
// The meta-prompt carries the problem statement, every successful utterance
// and each agent's weight, and asks for a response split into SUMMARY,
// AGREEMENTS, CONFLICTS, BLIND SPOTS and RECOMMENDATION sections. Parse reads
// those sections tolerantly; when the markers are missing the whole response
// becomes the recommendation.
package synthesis
