// Package unitref extracts equipment unit references and cross-reference
// intent from free-form chat messages.
//
// Detection is deliberately heuristic. The pattern and keyword sets are
// package-level data so they can be extended without touching the merge
// logic that consumes them.
package unitref

import (
	"regexp"
	"strings"
)

// unitPatterns match candidate unit mentions. Applied in order; ids are
// accumulated with first-occurrence dedup, so an id captured by an
// earlier pattern is not re-added by a later one.
var unitPatterns = []*regexp.Regexp{
	// "unit #A12", "Unit 102" - alphanumeric ids. The id must contain a
	// digit so that ordinary prose after the word "unit" is not captured.
	regexp.MustCompile(`(?i)\bunit\s*#?\s*(\w*\d\w*)\b`),
	// "#102" - bare shorthand, digits only
	regexp.MustCompile(`#\s*(\d+)\b`),
	// "unit 102" - numeric-only fallback, redundant with the first
	// pattern for pure-numeric ids but kept for symmetry
	regexp.MustCompile(`(?i)\bunit\s+(\d+)\b`),
}

// CrossRefKeywords is the vocabulary that signals a parts/spec question
// likely to need information from other units' manuals.
var CrossRefKeywords = []string{
	"part", "parts", "hose", "hoses", "fitting", "fittings",
	"filter", "filters", "spec", "specs", "specification",
	"compatible", "replacement", "manual", "manuals",
	"diagram", "schematics", "oil", "fluid",
	"belt", "belts", "seal", "seals",
}

var crossRefPattern = regexp.MustCompile(
	`(?i)\b(` + strings.Join(CrossRefKeywords, "|") + `)\b`)

// Detect returns the distinct unit ids mentioned in text, in
// first-occurrence order across the pattern list. Returns an empty slice
// when nothing matches; callers fall back to cross-manual search.
func Detect(text string) []string {
	seen := make(map[string]struct{})
	var units []string
	for _, pat := range unitPatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			id := strings.TrimSpace(m[1])
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			units = append(units, id)
		}
	}
	return units
}

// MentionsCrossRef reports whether text contains any cross-reference
// keyword as a whole word, case-insensitively.
func MentionsCrossRef(text string) bool {
	return crossRefPattern.MatchString(text)
}
