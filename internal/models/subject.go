package models

import (
	"sort"
	"strings"
)

// Canonical subject keys.
const (
	SubjectMath    = "math"
	SubjectEnglish = "english"
	SubjectAll     = "all"
)

var subjectAliases = map[string]string{
	"math":    SubjectMath,
	"수학":      SubjectMath,
	"english": SubjectEnglish,
	"영어":      SubjectEnglish,
	"all":     SubjectAll,
}

// NormalizeSubject maps a stored or requested subject token onto its canonical key.
// Display-language aliases share a bucket with their canonical token; unknown subjects are
// lower-cased and trimmed so free-form values still group consistently.
func NormalizeSubject(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := subjectAliases[key]; ok {
		return canonical
	}
	return key
}

// SubjectTokens returns every lower-cased token that normalizes to the same key as raw, sorted.
// Unknown subjects yield just their normalized form.
func SubjectTokens(raw string) []string {
	key := NormalizeSubject(raw)
	if key == "" {
		return nil
	}
	tokens := []string{key}
	for alias, canonical := range subjectAliases {
		if canonical == key && alias != key {
			tokens = append(tokens, alias)
		}
	}
	sort.Strings(tokens)
	return tokens
}
