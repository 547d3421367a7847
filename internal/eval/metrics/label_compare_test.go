package metrics

import (
	"math"
	"testing"

	"github.com/tastingroom/winescore/internal/compare"
	"github.com/tastingroom/winescore/internal/eval/dataset"
	"github.com/tastingroom/winescore/internal/extract"
)

func intPtr(v int) *int { return &v }

func TestCompareLabel(t *testing.T) {
	expected := dataset.LabelFields{
		Winery:       "Silver Oak",
		WineName:     "Alexander Valley",
		Vintage:      intPtr(2019),
		Region:       "Napa Valley",
		GrapeVariety: "Cabernet Sauvignon",
	}
	actual := extract.Fields{
		Winery:       "Silver",
		Vintage:      intPtr(2018),
		Region:       "Napa Valley",
		GrapeVariety: "Cabernet Sauvignon",
	}

	c := CompareLabel(expected, actual, extract.DefaultConfidenceWeights())

	tests := []struct {
		dim    string
		score  int
		method string
	}{
		{LabelWinery, 70, compare.MethodSubstring},
		{LabelWineName, 0, compare.MethodActualMissing},
		{LabelVintage, 75, compare.MethodBand},
		{LabelRegion, 100, compare.MethodExact},
		{LabelGrapeVariety, 100, compare.MethodExact},
	}
	for _, tt := range tests {
		m := c.Matches[tt.dim]
		if m.Score != tt.score || m.Method != tt.method {
			t.Errorf("%s: expected %d (%s), got %d (%s)", tt.dim, tt.score, tt.method, m.Score, m.Method)
		}
	}

	// 0.30*70 + 0.25*0 + 0.20*75 + 0.15*100 + 0.10*100
	if math.Abs(c.OverallScore-61) > 1e-9 {
		t.Errorf("Expected overall 61, got %.2f", c.OverallScore)
	}
}

func TestCompareLabelAllAbsent(t *testing.T) {
	c := CompareLabel(dataset.LabelFields{}, extract.Fields{}, extract.DefaultConfidenceWeights())
	if math.Abs(c.OverallScore-100) > 1e-9 {
		t.Errorf("Expected overall 100 when nothing is expected or found, got %.2f", c.OverallScore)
	}
}

func TestCompareLabelZeroWeights(t *testing.T) {
	c := CompareLabel(dataset.LabelFields{Winery: "Muga"}, extract.Fields{Winery: "Muga"}, extract.ConfidenceWeights{})
	if c.OverallScore != 0 {
		t.Errorf("Expected overall 0 with no weights, got %.2f", c.OverallScore)
	}
	if c.Matches[LabelWinery].Score != 100 {
		t.Errorf("Expected matches to be filled regardless of weights")
	}
}

func TestCompareLabelIsStable(t *testing.T) {
	expected := dataset.LabelFields{Winery: "Silver Oak", WineName: "Alexander Valley", Vintage: intPtr(2019), Region: "Napa"}
	actual := extract.Fields{Winery: "Silver", WineName: "Alexander", Vintage: intPtr(2017), GrapeVariety: "Merlot"}
	weights := extract.ConfidenceWeights{Winery: 7, WineName: 11, Vintage: 13, Region: 17, GrapeVariety: 19}

	first := CompareLabel(expected, actual, weights).OverallScore
	for i := 0; i < 50; i++ {
		if got := CompareLabel(expected, actual, weights).OverallScore; got != first {
			t.Fatalf("Run %d: expected %v, got %v", i, first, got)
		}
	}
}
