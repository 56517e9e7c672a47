package synthesis

import (
	"regexp"
	"strings"
)

type section int

const markerNames = `(summary|agreements?|conflicts?|blind[\s_-]*spots?|recommendations?)`

const (
	sectionNone section = iota
	sectionSummary
	sectionAgreements
	sectionConflicts
	sectionBlindSpots
	sectionRecommendation
)

var (
	// A marker needs a colon unless the line is a markdown heading, so a
	// plain "Summary" line inside a section stays body text.
	colonMarker   = regexp.MustCompile(`(?i)^[\s#>*_-]*` + markerNames + `[\s*_]*:[\s*_]*(.*)$`)
	headingMarker = regexp.MustCompile(`(?i)^\s*(?:#+|\*\*|__)\s*` + markerNames + `[\s*_]*$`)
	bulletPattern = regexp.MustCompile(`^\s*(?:[-*•+]|\d+[.)])\s+`)
)

// Sections is the parsed form of a synthesis response.
type Sections struct {
	Summary        string
	Agreements     []string
	Conflicts      []string
	BlindSpots     []string
	Recommendation string
	// Options are the bulleted or numbered lines of the recommendation, in order.
	Options []string
	// Structured is false when the response lacked a usable RECOMMENDATION
	// section and Recommendation holds the whole text.
	Structured bool
}

// Parse splits a synthesis response into sections. Markers are matched
// case-insensitively at line start and may carry markdown decoration such
// as "## Summary" or "**CONFLICTS:**".
func Parse(text string) Sections {
	var (
		current section
		found   = map[section]bool{}
		bodies  = map[section][]string{}
	)

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if name, rest, ok := matchMarker(line); ok {
			current = sectionFor(name)
			found[current] = true

			if rest = strings.TrimSpace(rest); rest != "" {
				bodies[current] = append(bodies[current], rest)
			}

			continue
		}

		if current != sectionNone {
			bodies[current] = append(bodies[current], line)
		}
	}

	recommendation := strings.TrimSpace(strings.Join(bodies[sectionRecommendation], "\n"))
	if !found[sectionRecommendation] || recommendation == "" {
		return Sections{Recommendation: strings.TrimSpace(text)}
	}

	return Sections{
		Summary:        strings.TrimSpace(strings.Join(bodies[sectionSummary], "\n")),
		Agreements:     items(bodies[sectionAgreements]),
		Conflicts:      items(bodies[sectionConflicts]),
		BlindSpots:     items(bodies[sectionBlindSpots]),
		Recommendation: recommendation,
		Options:        bullets(bodies[sectionRecommendation]),
		Structured:     true,
	}
}

// matchMarker reports whether line opens a section, returning the marker
// name and any text that follows it on the same line.
func matchMarker(line string) (name, rest string, ok bool) {
	if m := colonMarker.FindStringSubmatch(line); m != nil {
		return m[1], m[2], true
	}

	if m := headingMarker.FindStringSubmatch(line); m != nil {
		return m[1], "", true
	}

	return "", "", false
}

func sectionFor(name string) section {
	name = strings.ToLower(name)

	switch {
	case strings.HasPrefix(name, "summary"):
		return sectionSummary
	case strings.HasPrefix(name, "agreement"):
		return sectionAgreements
	case strings.HasPrefix(name, "conflict"):
		return sectionConflicts
	case strings.HasPrefix(name, "blind"):
		return sectionBlindSpots
	default:
		return sectionRecommendation
	}
}

// items turns section lines into list entries. Bullets and numbering are
// stripped; blank lines and placeholder entries like "None" are skipped.
func items(lines []string) []string {
	var out []string

	for _, line := range lines {
		item := strings.TrimSpace(bulletPattern.ReplaceAllString(line, ""))
		if item == "" || isPlaceholder(item) {
			continue
		}

		out = append(out, item)
	}

	return out
}

// bullets returns only the lines that carry a bullet or number.
func bullets(lines []string) []string {
	var out []string

	for _, line := range lines {
		if !bulletPattern.MatchString(line) {
			continue
		}

		if item := strings.TrimSpace(bulletPattern.ReplaceAllString(line, "")); item != "" {
			out = append(out, item)
		}
	}

	return out
}

func isPlaceholder(s string) bool {
	switch strings.ToLower(strings.Trim(s, ".*_ ")) {
	case "none", "n/a", "na", "nothing":
		return true
	default:
		return false
	}
}
