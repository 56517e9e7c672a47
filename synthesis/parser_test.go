package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStructured(t *testing.T) {
	text := `## Summary
The council leans toward a staged launch.

**AGREEMENTS:**
- Demand is real
* The team is ready

Conflicts: Elon wants speed; Ray wants a pilot

BLIND SPOTS:
n/a

RECOMMENDATION: Run a two week pilot.
1. Pilot with 5% of users
2) Full launch next quarter
Keep the rollback plan ready.`

	s := Parse(text)

	assert.True(t, s.Structured)
	assert.Equal(t, "The council leans toward a staged launch.", s.Summary)
	assert.Equal(t, []string{"Demand is real", "The team is ready"}, s.Agreements)
	assert.Equal(t, []string{"Elon wants speed; Ray wants a pilot"}, s.Conflicts)
	assert.Empty(t, s.BlindSpots)
	assert.Equal(t, []string{"Pilot with 5% of users", "Full launch next quarter"}, s.Options)
	assert.Contains(t, s.Recommendation, "Run a two week pilot.")
	assert.Contains(t, s.Recommendation, "Keep the rollback plan ready.")
}

func TestParseIgnoresMarkerWordsInsideLines(t *testing.T) {
	s := Parse("SUMMARY:\n- Agreements were hard to reach\nRECOMMENDATION:\nWait.")

	assert.True(t, s.Structured)
	assert.Equal(t, "- Agreements were hard to reach", s.Summary)
	assert.Empty(t, s.Agreements)
	assert.Equal(t, "Wait.", s.Recommendation)
	assert.Empty(t, s.Options)
}

func TestParseBareMarkerWordIsBodyText(t *testing.T) {
	s := Parse("SUMMARY:\nSplit.\nRECOMMENDATION:\n1. Ship a pilot\nSummary\nThe pilot limits risk.")

	assert.True(t, s.Structured)
	assert.Equal(t, "Split.", s.Summary)
	assert.Equal(t, "1. Ship a pilot\nSummary\nThe pilot limits risk.", s.Recommendation)
	assert.Equal(t, []string{"Ship a pilot"}, s.Options)
}

func TestParseHeadingMarkersWithoutColon(t *testing.T) {
	s := Parse("# Summary\nSplit.\n**Conflicts**\n- Speed vs safety\n__Recommendation__\nWait.")

	assert.True(t, s.Structured)
	assert.Equal(t, "Split.", s.Summary)
	assert.Equal(t, []string{"Speed vs safety"}, s.Conflicts)
	assert.Equal(t, "Wait.", s.Recommendation)
}

func TestParseFallback(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no markers", "Launch now, but watch churn."},
		{"missing recommendation", "SUMMARY:\nSplit.\nAGREEMENTS:\n- none"},
		{"empty recommendation", "SUMMARY:\nSplit.\nRECOMMENDATION:\n   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Parse(tt.text)
			assert.False(t, s.Structured)
			assert.NotEmpty(t, s.Recommendation)
			assert.Empty(t, s.Summary)
			assert.Empty(t, s.Agreements)
			assert.Empty(t, s.Options)
		})
	}
}

func TestParseWindowsLineEndings(t *testing.T) {
	s := Parse("SUMMARY:\r\nOk.\r\nRECOMMENDATION:\r\n- Go\r\n")

	assert.True(t, s.Structured)
	assert.Equal(t, "Ok.", s.Summary)
	assert.Equal(t, []string{"Go"}, s.Options)
}
