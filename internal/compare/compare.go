package compare

import (
	"fmt"
	"math"
	"strings"

	"github.com/tastingroom/winescore/internal/lexicon"
	"github.com/tastingroom/winescore/internal/models"
)

// Sub-score constants. These are fixed: callers choose a comparator per
// dimension, never its thresholds.
const (
	Full      = 100
	Substring = 70
	None      = 0

	bandNear    = 2
	bandNearHit = 75
	bandFar     = 5
	bandFarHit  = 50
)

// Match methods.
const (
	MethodExact           = "exact"
	MethodSubstring       = "substring"
	MethodOverlap         = "overlap"
	MethodBand            = "band"
	MethodNoMatch         = "no_match"
	MethodBothMissing     = "both_missing"
	MethodExpectedMissing = "expected_missing"
	MethodActualMissing   = "actual_missing"
)

// Match is the result of comparing one attribute. Expected is the ground
// truth side and Actual the guessed or extracted side.
type Match struct {
	Expected string `json:"expected" yaml:"expected"`
	Actual   string `json:"actual" yaml:"actual"`
	Score    int    `json:"score" yaml:"score"` // 0 to 100
	Method   string `json:"method" yaml:"method"`
	Notes    string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Exact scores 100 for a case-insensitive match and 0 otherwise.
func Exact(expected, actual string) Match {
	match, done := absence(expected, actual)
	if done {
		return match
	}

	if lexicon.Fold(expected) == lexicon.Fold(actual) {
		match.Score = Full
		match.Method = MethodExact
		match.Notes = "Exact match"
		return match
	}

	match.Score = None
	match.Method = MethodNoMatch
	match.Notes = "Values differ"
	return match
}

// Fuzzy is Exact with partial credit when one value contains the other.
func Fuzzy(expected, actual string) Match {
	match, done := absence(expected, actual)
	if done {
		return match
	}

	expNorm := lexicon.Fold(expected)
	actNorm := lexicon.Fold(actual)

	if expNorm == actNorm {
		match.Score = Full
		match.Method = MethodExact
		match.Notes = "Exact match"
		return match
	}

	if strings.Contains(actNorm, expNorm) || strings.Contains(expNorm, actNorm) {
		match.Score = Substring
		match.Method = MethodSubstring
		match.Notes = "Partial match (substring found)"
		return match
	}

	match.Score = None
	match.Method = MethodNoMatch
	match.Notes = "No overlap"
	return match
}

// SetOverlap counts the expected entries that some actual entry contains or
// is contained by, and divides by the larger set size.
func SetOverlap(expected, actual []string) Match {
	exp := models.NonBlank(expected)
	act := models.NonBlank(actual)

	match := Match{
		Expected: strings.Join(exp, ", "),
		Actual:   strings.Join(act, ", "),
	}

	switch {
	case len(exp) == 0 && len(act) == 0:
		return bothMissing(match)
	case len(exp) == 0:
		return expectedMissing(match)
	case len(act) == 0:
		return actualMissing(match)
	}

	matches := 0
	for _, e := range exp {
		for _, a := range act {
			if Overlaps(e, a) {
				matches++
				break
			}
		}
	}

	denominator := max(len(exp), len(act))
	match.Score = int(math.Round(float64(Full) * float64(matches) / float64(denominator)))
	if match.Score == Full {
		match.Method = MethodExact
	} else if matches > 0 {
		match.Method = MethodOverlap
	} else {
		match.Method = MethodNoMatch
	}
	match.Notes = fmt.Sprintf("%d of %d matched", matches, denominator)
	return match
}

// Banded scores the absolute distance between two numbers into fixed bands:
// 0 scores 100, up to 2 scores 75, up to 5 scores 50, beyond that 0.
func Banded(expected, actual *float64) Match {
	match := Match{
		Expected: formatNumber(expected),
		Actual:   formatNumber(actual),
	}

	switch {
	case expected == nil && actual == nil:
		return bothMissing(match)
	case expected == nil:
		return expectedMissing(match)
	case actual == nil:
		return actualMissing(match)
	}

	d := math.Abs(*expected - *actual)
	match.Method = MethodBand
	switch {
	case d == 0:
		match.Score = Full
		match.Method = MethodExact
	case d <= bandNear:
		match.Score = bandNearHit
	case d <= bandFar:
		match.Score = bandFarHit
	default:
		match.Score = None
		match.Method = MethodNoMatch
	}
	match.Notes = fmt.Sprintf("Difference %s", strings.TrimSuffix(fmt.Sprintf("%.1f", d), ".0"))
	return match
}

// Overlaps reports whether either string contains the other, ignoring case.
// Blank strings never overlap.
func Overlaps(a, b string) bool {
	a = lexicon.Fold(a)
	b = lexicon.Fold(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Float returns a pointer to v as float64, or nil for a nil v.
func Float(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func absence(expected, actual string) (Match, bool) {
	match := Match{
		Expected: strings.TrimSpace(expected),
		Actual:   strings.TrimSpace(actual),
	}

	switch {
	case !models.Present(expected) && !models.Present(actual):
		return bothMissing(match), true
	case !models.Present(expected):
		return expectedMissing(match), true
	case !models.Present(actual):
		return actualMissing(match), true
	}
	return match, false
}

// bothMissing: no claim was made and none was contradicted.
func bothMissing(match Match) Match {
	match.Score = Full
	match.Method = MethodBothMissing
	match.Notes = "Both values are absent"
	return match
}

func expectedMissing(match Match) Match {
	match.Score = None
	match.Method = MethodExpectedMissing
	match.Notes = "Reference value is absent"
	return match
}

func actualMissing(match Match) Match {
	match.Score = None
	match.Method = MethodActualMissing
	match.Notes = "Value missing from submission"
	return match
}

func formatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strings.TrimSuffix(fmt.Sprintf("%.1f", *v), ".0")
}
