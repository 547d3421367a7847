package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/tastingroom/winescore/internal/lexicon"
)

var vintagePattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

const (
	minVintage = 1900
	// vintages may be printed on labels for wines released a few years out
	futureVintageYears = 5

	wineryMinLen   = 3
	wineryMaxLen   = 30
	wineryMaxWords = 3
	nameMinLen     = 3
	nameMaxLen     = 50
)

// ConfidenceWeights is the points each present field adds to the confidence.
type ConfidenceWeights struct {
	Winery       int `yaml:"winery"`
	WineName     int `yaml:"wine_name"`
	Vintage      int `yaml:"vintage"`
	Region       int `yaml:"region"`
	GrapeVariety int `yaml:"grape_variety"`
}

// DefaultConfidenceWeights sums to 100.
func DefaultConfidenceWeights() ConfidenceWeights {
	return ConfidenceWeights{
		Winery:       30,
		WineName:     25,
		Vintage:      20,
		Region:       15,
		GrapeVariety: 10,
	}
}

// Fields is a partial wine-label record recovered from label text.
type Fields struct {
	Winery       string `json:"winery,omitempty" yaml:"winery,omitempty"`
	WineName     string `json:"wine_name,omitempty" yaml:"wine_name,omitempty"`
	Vintage      *int   `json:"vintage,omitempty" yaml:"vintage,omitempty"`
	Region       string `json:"region,omitempty" yaml:"region,omitempty"`
	GrapeVariety string `json:"grape_variety,omitempty" yaml:"grape_variety,omitempty"`
	Confidence   int    `json:"confidence" yaml:"confidence"`
}

func (f Fields) HasWinery() bool       { return f.Winery != "" }
func (f Fields) HasWineName() bool     { return f.WineName != "" }
func (f Fields) HasVintage() bool      { return f.Vintage != nil }
func (f Fields) HasRegion() bool       { return f.Region != "" }
func (f Fields) HasGrapeVariety() bool { return f.GrapeVariety != "" }

// Result is the outcome of one extraction. Tokens are the recognized tokens
// as given, so callers can offer manual entry.
type Result struct {
	Fields Fields   `json:"fields" yaml:"fields"`
	Tokens []string `json:"tokens" yaml:"tokens"`
}

// Extractor pulls structured fields out of OCR output.
type Extractor struct {
	regions  lexicon.Vocabulary
	grapes   lexicon.Vocabulary
	stoplist lexicon.Vocabulary
	weights  ConfidenceWeights
	now      func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock sets the clock used to bound plausible vintages.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithConfidenceWeights replaces the default confidence weights.
func WithConfidenceWeights(w ConfidenceWeights) Option {
	return func(e *Extractor) { e.weights = w }
}

// New creates an extractor over the given vocabularies.
func New(regions, grapes, stoplist lexicon.Vocabulary, opts ...Option) *Extractor {
	e := &Extractor{
		regions:  regions,
		grapes:   grapes,
		stoplist: stoplist,
		weights:  DefaultConfidenceWeights(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDefault creates an extractor over the built-in vocabularies.
func NewDefault(opts ...Option) *Extractor {
	return New(
		lexicon.NewVocabulary(lexicon.DefaultRegions...),
		lexicon.NewVocabulary(lexicon.DefaultGrapeVarieties...),
		lexicon.NewVocabulary(lexicon.DefaultStoplist...),
		opts...,
	)
}

// Extract recovers label fields from tokens and the full recognized text.
// It never fails; missing fields lower the confidence instead.
func (e *Extractor) Extract(tokens []string, fullText string) Result {
	var fields Fields

	fields.Vintage = e.findVintage(fullText)

	lowered := strings.ToLower(fullText)
	if region, ok := e.regions.Match(lowered); ok {
		fields.Region = region
	}
	if grape, ok := e.grapes.Match(lowered); ok {
		fields.GrapeVariety = grape
	}

	// Winery skips the region and grape; the wine name skips all three.
	fields.Winery = e.findWinery(tokens, fields)
	fields.WineName = e.findWineName(tokens, fields)
	fields.Confidence = e.confidence(fields)

	return Result{
		Fields: fields,
		Tokens: append([]string(nil), tokens...),
	}
}

func (e *Extractor) findVintage(text string) *int {
	latest := e.now().Year() + futureVintageYears
	for _, m := range vintagePattern.FindAllString(text, -1) {
		year, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if year >= minVintage && year <= latest {
			return &year
		}
	}
	return nil
}

func (e *Extractor) findWinery(tokens []string, picked Fields) string {
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		n := utf8.RuneCountInString(token)
		if n <= wineryMinLen || n >= wineryMaxLen {
			continue
		}
		if hasDigit(token) || len(strings.Fields(token)) > wineryMaxWords {
			continue
		}
		if e.stoplist.Contains(token) {
			continue
		}
		if sameTerm(token, picked.Region) || sameTerm(token, picked.GrapeVariety) {
			continue
		}
		return lexicon.TitleCase(token)
	}
	return ""
}

func (e *Extractor) findWineName(tokens []string, picked Fields) string {
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		n := utf8.RuneCountInString(token)
		if n <= nameMinLen || n >= nameMaxLen {
			continue
		}
		if e.stoplist.Equals(token) {
			continue
		}
		// Exact equality only; a name may still mention the region.
		if sameTerm(token, picked.Winery) ||
			sameTerm(token, picked.Region) ||
			sameTerm(token, picked.GrapeVariety) {
			continue
		}
		return lexicon.TitleCase(token)
	}
	return ""
}

func (e *Extractor) confidence(f Fields) int {
	score := 0
	if f.HasWinery() {
		score += e.weights.Winery
	}
	if f.HasWineName() {
		score += e.weights.WineName
	}
	if f.HasVintage() {
		score += e.weights.Vintage
	}
	if f.HasRegion() {
		score += e.weights.Region
	}
	if f.HasGrapeVariety() {
		score += e.weights.GrapeVariety
	}
	return min(max(score, 0), 100)
}

// sameTerm compares a raw token with an earlier pick, ignoring case and
// runs of whitespace. Blank picks never match.
func sameTerm(token, pick string) bool {
	return pick != "" && lexicon.Fold(token) == lexicon.Fold(pick)
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
