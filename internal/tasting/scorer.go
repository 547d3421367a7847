package tasting

import (
	"fmt"
	"math"
	"strings"

	"github.com/tastingroom/winescore/internal/compare"
	"github.com/tastingroom/winescore/internal/models"
)

// MethodCombined marks a sub-score averaged from several comparisons.
const MethodCombined = "combined"

type dimensionFunc func(guess models.Guess, actual models.WineRecord) compare.Match

var dimensions = map[string]dimensionFunc{
	DimWineType:      scoreWineType,
	DimGrapeVariety:  scoreGrapes,
	DimRegionCountry: scoreRegionCountry,
	DimRegion:        scoreRegion,
	DimCountry:       scoreCountry,
	DimVintage:       scoreVintage,
}

// Breakdown holds per-dimension sub-scores and their weighted total.
type Breakdown struct {
	Scores  map[string]int `json:"scores" yaml:"scores"`
	Overall int            `json:"overall" yaml:"overall"`
}

// Recompute derives the overall score from the sub-scores under p.
func (b Breakdown) Recompute(p Policy) int {
	return weightedTotal(p, b.Scores)
}

// Result is a scored blind tasting. Guess and Actual are carried through
// unchanged for side-by-side display.
type Result struct {
	Policy    string                   `json:"policy" yaml:"policy"`
	Breakdown Breakdown                `json:"breakdown" yaml:"breakdown"`
	Details   map[string]compare.Match `json:"details" yaml:"details"`
	Guess     models.Guess             `json:"guess" yaml:"guess"`
	Actual    models.WineRecord        `json:"actual" yaml:"actual"`
}

// Scorer scores guesses against the wine that was poured.
type Scorer struct {
	policy Policy
}

// NewScorer creates a scorer with the canonical policy.
func NewScorer() *Scorer {
	return &Scorer{policy: CanonicalPolicy()}
}

// NewScorerWithPolicy creates a scorer with a custom policy.
func NewScorerWithPolicy(p Policy) (*Scorer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{policy: p}, nil
}

// Policy returns the scorer's policy.
func (s *Scorer) Policy() Policy {
	return s.policy
}

// Score compares a guess against the actual wine. Missing fields on either
// side follow the comparators' absence rules, so it never fails.
func (s *Scorer) Score(guess models.Guess, actual models.WineRecord) Result {
	result := Result{
		Policy: s.policy.Name,
		Breakdown: Breakdown{
			Scores: make(map[string]int, len(s.policy.Weights)),
		},
		Details: make(map[string]compare.Match, len(s.policy.Weights)),
		Guess:   guess,
		Actual:  actual,
	}

	for _, w := range s.policy.Weights {
		match := dimensions[w.Dimension](guess, actual)
		result.Details[w.Dimension] = match
		result.Breakdown.Scores[w.Dimension] = match.Score
	}
	result.Breakdown.Overall = weightedTotal(s.policy, result.Breakdown.Scores)

	return result
}

func weightedTotal(p Policy, scores map[string]int) int {
	total := 0.0
	for _, w := range p.Weights {
		total += w.Weight * float64(scores[w.Dimension])
	}
	return int(math.Round(total))
}

func scoreWineType(guess models.Guess, actual models.WineRecord) compare.Match {
	return compare.Exact(actual.WineType, guess.WineType)
}

func scoreGrapes(guess models.Guess, actual models.WineRecord) compare.Match {
	return compare.SetOverlap(actual.GrapeVarieties, guess.GrapeVarieties)
}

func scoreRegion(guess models.Guess, actual models.WineRecord) compare.Match {
	return compare.Fuzzy(actual.Region, guess.Region)
}

func scoreCountry(guess models.Guess, actual models.WineRecord) compare.Match {
	return compare.Exact(actual.Country, guess.Country)
}

func scoreRegionCountry(guess models.Guess, actual models.WineRecord) compare.Match {
	region := scoreRegion(guess, actual)
	country := scoreCountry(guess, actual)

	return compare.Match{
		Expected: joinPresent(actual.Region, actual.Country),
		Actual:   joinPresent(guess.Region, guess.Country),
		Score:    int(math.Round(float64(region.Score+country.Score) / 2)),
		Method:   MethodCombined,
		Notes:    fmt.Sprintf("region %d (%s), country %d (%s)", region.Score, region.Method, country.Score, country.Method),
	}
}

// scoreVintage credits a range that contains the actual vintage in full and
// otherwise bands the distance to the range's midpoint.
func scoreVintage(guess models.Guess, actual models.WineRecord) compare.Match {
	if guess.VintageRange == nil {
		return compare.Banded(compare.Float(actual.Vintage), nil)
	}

	r := guess.VintageRange.Ordered()
	if actual.Vintage != nil && r.Contains(*actual.Vintage) {
		return compare.Match{
			Expected: fmt.Sprintf("%d", *actual.Vintage),
			Actual:   fmt.Sprintf("%d-%d", r.Min, r.Max),
			Score:    compare.Full,
			Method:   compare.MethodExact,
			Notes:    "Vintage within guessed range",
		}
	}

	mid := r.Midpoint()
	match := compare.Banded(compare.Float(actual.Vintage), &mid)
	match.Actual = fmt.Sprintf("%d-%d", r.Min, r.Max)
	return match
}

func joinPresent(values ...string) string {
	return strings.Join(models.NonBlank(values), ", ")
}
