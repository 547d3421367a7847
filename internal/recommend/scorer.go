package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tastingroom/winescore/internal/compare"
	"github.com/tastingroom/winescore/internal/lexicon"
	"github.com/tastingroom/winescore/internal/models"
)

// FallbackExplanation is used when the top candidate matched nothing, or
// there was no candidate at all.
const FallbackExplanation = "Recommended based on overall ratings and popularity."

// Policy holds the weight of each relevance signal.
type Policy struct {
	GrapeWeight   float64 `yaml:"grape_weight" json:"grape_weight"`
	RegionWeight  float64 `yaml:"region_weight" json:"region_weight"`
	HistoryWeight float64 `yaml:"history_weight" json:"history_weight"`
	PriceWeight   float64 `yaml:"price_weight" json:"price_weight"`
}

// DefaultPolicy returns the standard relevance weights.
func DefaultPolicy() Policy {
	return Policy{
		GrapeWeight:   2.0,
		RegionWeight:  1.5,
		HistoryWeight: 1.0,
		PriceWeight:   1.0,
	}
}

// Validate rejects negative weights, which could push scores below zero.
func (p Policy) Validate() error {
	for name, w := range map[string]float64{
		"grape_weight":   p.GrapeWeight,
		"region_weight":  p.RegionWeight,
		"history_weight": p.HistoryWeight,
		"price_weight":   p.PriceWeight,
	} {
		if w < 0 {
			return fmt.Errorf("recommendation policy: %s is negative (%.2f)", name, w)
		}
	}
	return nil
}

// Candidate is a wine scored for one user. Score is only meaningful relative
// to the other candidates of the same call.
type Candidate struct {
	Wine        models.WineRecord `json:"wine" yaml:"wine"`
	Score       float64           `json:"recommendation_score" yaml:"recommendation_score"`
	GrapeHits   int               `json:"grape_hits" yaml:"grape_hits"`
	RegionHits  int               `json:"region_hits" yaml:"region_hits"`
	HistoryHits int               `json:"history_hits" yaml:"history_hits"`
	PriceFit    bool              `json:"price_fit" yaml:"price_fit"`
}

// Scorer ranks candidate wines against a user's preferences and history.
type Scorer struct {
	policy Policy
}

// NewScorer creates a scorer with the default policy.
func NewScorer() *Scorer {
	return &Scorer{policy: DefaultPolicy()}
}

// NewScorerWithPolicy creates a scorer with custom weights.
func NewScorerWithPolicy(p Policy) (*Scorer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{policy: p}, nil
}

// Rank scores every candidate, sorts them best first keeping input order on
// ties, and keeps at most limit of them (limit <= 0 keeps all). The returned
// explanation describes the top candidate.
//
// Candidates are expected to exclude wines already in history; the record
// store query does that.
func (s *Scorer) Rank(candidates []models.WineRecord, profile models.Profile, history []models.WineRecord, limit int) ([]Candidate, string) {
	ranked := make([]Candidate, 0, len(candidates))
	for _, wine := range candidates {
		ranked = append(ranked, s.score(wine, profile, history))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	if len(ranked) == 0 {
		return ranked, FallbackExplanation
	}
	return ranked, Explain(ranked[0])
}

func (s *Scorer) score(wine models.WineRecord, profile models.Profile, history []models.WineRecord) Candidate {
	c := Candidate{
		Wine:        wine,
		GrapeHits:   grapeHits(profile.GrapeVarieties, wine.GrapeVarieties),
		RegionHits:  regionHits(profile.Regions, wine.Region),
		HistoryHits: historyHits(history, wine),
		PriceFit:    priceFits(profile.PriceRange, wine.Price),
	}

	c.Score = wine.BaseRating() +
		s.policy.GrapeWeight*float64(c.GrapeHits) +
		s.policy.RegionWeight*float64(c.RegionHits) +
		s.policy.HistoryWeight*float64(c.HistoryHits)
	if c.PriceFit {
		c.Score += s.policy.PriceWeight
	}
	return c
}

// Explain joins the signals the candidate matched into a sentence.
func Explain(c Candidate) string {
	var reasons []string
	if c.GrapeHits > 0 {
		reasons = append(reasons, "matches your preferred grape varieties")
	}
	if c.RegionHits > 0 {
		reasons = append(reasons, "comes from a region you enjoy")
	}
	if c.HistoryHits > 0 {
		reasons = append(reasons, "is similar to wines you rated highly")
	}
	if c.PriceFit {
		reasons = append(reasons, "fits your price range")
	}

	if len(reasons) == 0 {
		return FallbackExplanation
	}
	return "Recommended because it " + strings.Join(reasons, " and ") + "."
}

// grapeHits counts preferred varieties that overlap any of the wine's.
func grapeHits(preferred, grapes []string) int {
	hits := 0
	for _, p := range preferred {
		for _, g := range grapes {
			if compare.Overlaps(p, g) {
				hits++
				break
			}
		}
	}
	return hits
}

func regionHits(preferred []string, region string) int {
	hits := 0
	for _, p := range preferred {
		if compare.Overlaps(p, region) {
			hits++
		}
	}
	return hits
}

// historyHits counts history wines that share a grape, the region or the
// wine type with the candidate. Each history wine counts once.
func historyHits(history []models.WineRecord, wine models.WineRecord) int {
	hits := 0
	for _, h := range history {
		if sharesGrape(h.GrapeVarieties, wine.GrapeVarieties) ||
			sameValue(h.Region, wine.Region) ||
			sameValue(h.WineType, wine.WineType) {
			hits++
		}
	}
	return hits
}

func sharesGrape(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if sameValue(x, y) {
				return true
			}
		}
	}
	return false
}

func sameValue(a, b string) bool {
	return models.Present(a) && models.Present(b) && lexicon.Fold(a) == lexicon.Fold(b)
}

// priceFits compares in decimal so bounds like 19.99 are inclusive exactly.
func priceFits(r *models.PriceRange, price *float64) bool {
	if r == nil || price == nil {
		return false
	}
	p := decimal.NewFromFloat(*price)
	lo := decimal.NewFromFloat(r.Min)
	hi := decimal.NewFromFloat(r.Max)
	if lo.GreaterThan(hi) {
		lo, hi = hi, lo
	}
	return p.GreaterThanOrEqual(lo) && p.LessThanOrEqual(hi)
}
