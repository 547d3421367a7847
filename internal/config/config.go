package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tastingroom/winescore/internal/extract"
	"github.com/tastingroom/winescore/internal/lexicon"
	"github.com/tastingroom/winescore/internal/recommend"
	"github.com/tastingroom/winescore/internal/tasting"
)

// DefaultHistoryLimit bounds how many highly rated wines feed recommendations.
const DefaultHistoryLimit = 20

// Policy bundles the vocabularies and weight tables the scoring engine is
// built from. A zero field in a loaded file keeps its default.
type Policy struct {
	Regions        []string                  `yaml:"regions"`
	GrapeVarieties []string                  `yaml:"grape_varieties"`
	Stoplist       []string                  `yaml:"stoplist"`
	Corrections    []lexicon.Correction      `yaml:"corrections"`
	Confidence     extract.ConfidenceWeights `yaml:"confidence"`
	Tasting        tasting.Policy            `yaml:"tasting"`
	Recommendation recommend.Policy          `yaml:"recommendation"`
	HistoryLimit   int                       `yaml:"history_limit"`
}

// Default returns the built-in policy.
func Default() Policy {
	return Policy{
		Regions:        append([]string(nil), lexicon.DefaultRegions...),
		GrapeVarieties: append([]string(nil), lexicon.DefaultGrapeVarieties...),
		Stoplist:       append([]string(nil), lexicon.DefaultStoplist...),
		Corrections:    append([]lexicon.Correction(nil), lexicon.DefaultCorrections...),
		Confidence:     extract.DefaultConfidenceWeights(),
		Tasting:        tasting.CanonicalPolicy(),
		Recommendation: recommend.DefaultPolicy(),
		HistoryLimit:   DefaultHistoryLimit,
	}
}

// Load reads a YAML policy file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Policy, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read policy file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML policy data over the defaults and validates the result.
func Parse(data []byte) (Policy, error) {
	p := Default()
	p.Tasting = tasting.Policy{}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse policy: %w", err)
	}

	// A tasting block without weights selects a built-in policy by name.
	if len(p.Tasting.Weights) == 0 {
		builtin, err := tasting.PolicyByName(p.Tasting.Name)
		if err != nil {
			return p, err
		}
		p.Tasting = builtin
	}
	if p.HistoryLimit <= 0 {
		p.HistoryLimit = DefaultHistoryLimit
	}

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate checks every weight table.
func (p Policy) Validate() error {
	var errs []error
	if len(p.Regions) == 0 {
		errs = append(errs, errors.New("policy: regions must not be empty"))
	}
	if len(p.GrapeVarieties) == 0 {
		errs = append(errs, errors.New("policy: grape_varieties must not be empty"))
	}
	c := p.Confidence
	for name, w := range map[string]int{
		"winery":        c.Winery,
		"wine_name":     c.WineName,
		"vintage":       c.Vintage,
		"region":        c.Region,
		"grape_variety": c.GrapeVariety,
	} {
		if w < 0 || w > 100 {
			errs = append(errs, fmt.Errorf("policy: confidence weight %s=%d outside [0,100]", name, w))
		}
	}
	if err := p.Tasting.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := p.Recommendation.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Extractor builds a field extractor from the policy's vocabularies.
func (p Policy) Extractor(now func() time.Time) *extract.Extractor {
	opts := []extract.Option{extract.WithConfidenceWeights(p.Confidence)}
	if now != nil {
		opts = append(opts, extract.WithClock(now))
	}
	return extract.New(
		lexicon.NewVocabulary(p.Regions...),
		lexicon.NewVocabulary(p.GrapeVarieties...),
		lexicon.NewVocabulary(p.Stoplist...),
		opts...,
	)
}

// TastingScorer builds a blind-tasting scorer. A non-empty name selects a
// built-in policy instead of the configured one.
func (p Policy) TastingScorer(name string) (*tasting.Scorer, error) {
	tp := p.Tasting
	if name != "" {
		builtin, err := tasting.PolicyByName(name)
		if err != nil {
			return nil, err
		}
		tp = builtin
	}
	return tasting.NewScorerWithPolicy(tp)
}

// RecommendScorer builds a recommendation scorer.
func (p Policy) RecommendScorer() (*recommend.Scorer, error) {
	return recommend.NewScorerWithPolicy(p.Recommendation)
}

// Corrector builds the transcript corrector.
func (p Policy) Corrector() *lexicon.Corrector {
	return lexicon.NewCorrector(p.Corrections)
}
