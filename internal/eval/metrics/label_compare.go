package metrics

import (
	"github.com/tastingroom/winescore/internal/compare"
	"github.com/tastingroom/winescore/internal/eval/dataset"
	"github.com/tastingroom/winescore/internal/extract"
)

// Label dimensions, in report order.
const (
	LabelWinery       = "winery"
	LabelWineName     = "wine_name"
	LabelVintage      = "vintage"
	LabelRegion       = "region"
	LabelGrapeVariety = "grape_variety"
)

// LabelDimensions lists the label fields an evaluation scores.
var LabelDimensions = []string{LabelWinery, LabelWineName, LabelVintage, LabelRegion, LabelGrapeVariety}

// LabelComparison holds per-field comparisons of an extraction against
// the catalogued label.
type LabelComparison struct {
	Matches      map[string]compare.Match
	OverallScore float64 // 0 to 100
}

// CompareLabel compares extracted fields against the expected ones. Fields
// are weighted by their share of the extraction confidence weights, so the
// fields the extractor trusts most count most.
func CompareLabel(expected dataset.LabelFields, actual extract.Fields, weights extract.ConfidenceWeights) *LabelComparison {
	comparison := &LabelComparison{
		Matches: map[string]compare.Match{
			LabelWinery:       compare.Fuzzy(expected.Winery, actual.Winery),
			LabelWineName:     compare.Fuzzy(expected.WineName, actual.WineName),
			LabelVintage:      compare.Banded(compare.Float(expected.Vintage), compare.Float(actual.Vintage)),
			LabelRegion:       compare.Fuzzy(expected.Region, actual.Region),
			LabelGrapeVariety: compare.Fuzzy(expected.GrapeVariety, actual.GrapeVariety),
		},
	}

	shares := map[string]int{
		LabelWinery:       weights.Winery,
		LabelWineName:     weights.WineName,
		LabelVintage:      weights.Vintage,
		LabelRegion:       weights.Region,
		LabelGrapeVariety: weights.GrapeVariety,
	}

	total := 0
	for _, dim := range LabelDimensions {
		total += shares[dim]
	}
	if total <= 0 {
		return comparison
	}

	score := 0.0
	// Fixed order keeps the float sum stable across runs.
	for _, dim := range LabelDimensions {
		score += float64(comparison.Matches[dim].Score) * float64(shares[dim]) / float64(total)
	}
	comparison.OverallScore = score

	return comparison
}
