package core

import "github.com/google/uuid"

// NewID returns a random unique identifier used for utterances and sessions.
func NewID() string {
	return uuid.NewString()
}
