package lexicon

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Vocabulary is an ordered list of canonical wine terms. Order is the
// tie-break: when a text contains several terms, the one listed first wins.
type Vocabulary struct {
	terms []string
}

// NewVocabulary copies terms into an immutable vocabulary. Terms are stored
// lowercased and NFC-normalized; blank terms are dropped.
func NewVocabulary(terms ...string) Vocabulary {
	v := Vocabulary{terms: make([]string, 0, len(terms))}
	for _, t := range terms {
		if t = fold(t); t != "" {
			v.terms = append(v.terms, t)
		}
	}
	return v
}

// Terms returns a copy of the vocabulary in order.
func (v Vocabulary) Terms() []string {
	return append([]string(nil), v.terms...)
}

// Len returns the number of terms.
func (v Vocabulary) Len() int {
	return len(v.terms)
}

// Match returns the earliest vocabulary term found anywhere in text, Title
// Cased. The second value is false when no term occurs.
func (v Vocabulary) Match(text string) (string, bool) {
	haystack := fold(text)
	if haystack == "" {
		return "", false
	}
	for _, term := range v.terms {
		if strings.Contains(haystack, term) {
			return TitleCase(term), true
		}
	}
	return "", false
}

// Contains reports whether any term occurs in text.
func (v Vocabulary) Contains(text string) bool {
	_, ok := v.Match(text)
	return ok
}

// Equals reports whether text is exactly one of the terms, ignoring case.
func (v Vocabulary) Equals(text string) bool {
	t := fold(text)
	for _, term := range v.terms {
		if t == term {
			return true
		}
	}
	return false
}

// TitleCase capitalizes every word and lowercases the rest.
func TitleCase(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	// Casers carry state, so one per call.
	return cases.Title(language.English).String(norm.NFC.String(s))
}

// Fold lowercases and normalizes s for case-insensitive comparison.
func Fold(s string) string {
	return fold(s)
}

func fold(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(norm.NFC.String(s))
}
