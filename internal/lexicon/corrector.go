package lexicon

import (
	"regexp"
	"strings"
)

// Correction replaces a whole-word Pattern with Replacement.
type Correction struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

type compiledCorrection struct {
	re          *regexp.Regexp
	replacement string
}

// Corrector fixes known mis-transcriptions in voice notes.
type Corrector struct {
	rules []compiledCorrection
}

// NewCorrector compiles corrections in order. Patterns match whole words,
// ignore case, and tolerate any run of whitespace between words.
func NewCorrector(corrections []Correction) *Corrector {
	c := &Corrector{rules: make([]compiledCorrection, 0, len(corrections))}
	for _, corr := range corrections {
		words := strings.Fields(corr.Pattern)
		if len(words) == 0 {
			continue
		}
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		re := regexp.MustCompile(`(?i)\b` + strings.Join(words, `\s+`) + `\b`)
		c.rules = append(c.rules, compiledCorrection{re: re, replacement: corr.Replacement})
	}
	return c
}

// Correct applies every correction in order and returns the result.
func (c *Corrector) Correct(transcript string) string {
	out := transcript
	for _, rule := range c.rules {
		out = rule.re.ReplaceAllLiteralString(out, rule.replacement)
	}
	return out
}
