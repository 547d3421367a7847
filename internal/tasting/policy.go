package tasting

import (
	"fmt"
	"math"
)

// Dimension names.
const (
	DimWineType      = "wine_type"
	DimGrapeVariety  = "grape_variety"
	DimRegionCountry = "region_country"
	DimRegion        = "region"
	DimCountry       = "country"
	DimVintage       = "vintage"
)

// Policy names.
const (
	PolicyCanonical = "canonical"
	PolicyUtility   = "utility"
)

const weightTolerance = 1e-9

// Weight is one scored dimension and its share of the overall score.
type Weight struct {
	Dimension string  `yaml:"dimension" json:"dimension"`
	Weight    float64 `yaml:"weight" json:"weight"`
}

// Policy is an ordered set of weighted dimensions summing to 1.0.
type Policy struct {
	Name    string   `yaml:"name" json:"name"`
	Weights []Weight `yaml:"weights" json:"weights"`
}

// CanonicalPolicy spreads 100 points over wine type 25, grape 30,
// region/country 25 and vintage 20.
func CanonicalPolicy() Policy {
	return Policy{
		Name: PolicyCanonical,
		Weights: []Weight{
			{DimWineType, 0.25},
			{DimGrapeVariety, 0.30},
			{DimRegionCountry, 0.25},
			{DimVintage, 0.20},
		},
	}
}

// UtilityPolicy ignores wine type and scores region and country separately.
func UtilityPolicy() Policy {
	return Policy{
		Name: PolicyUtility,
		Weights: []Weight{
			{DimGrapeVariety, 0.40},
			{DimRegion, 0.25},
			{DimCountry, 0.20},
			{DimVintage, 0.15},
		},
	}
}

// PolicyByName returns a built-in policy.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", PolicyCanonical:
		return CanonicalPolicy(), nil
	case PolicyUtility:
		return UtilityPolicy(), nil
	default:
		return Policy{}, fmt.Errorf("unknown tasting policy: %s", name)
	}
}

// Validate checks that every dimension is known and used once, every weight
// is within [0,1], and the weights sum to 1.
func (p Policy) Validate() error {
	if len(p.Weights) == 0 {
		return fmt.Errorf("tasting policy %q has no dimensions", p.Name)
	}

	seen := make(map[string]bool, len(p.Weights))
	sum := 0.0
	for _, w := range p.Weights {
		if _, ok := dimensions[w.Dimension]; !ok {
			return fmt.Errorf("tasting policy %q: unknown dimension %q", p.Name, w.Dimension)
		}
		if seen[w.Dimension] {
			return fmt.Errorf("tasting policy %q: dimension %q listed twice", p.Name, w.Dimension)
		}
		seen[w.Dimension] = true
		if w.Weight < 0 || w.Weight > 1 {
			return fmt.Errorf("tasting policy %q: weight %.3f for %q outside [0,1]", p.Name, w.Weight, w.Dimension)
		}
		sum += w.Weight
	}

	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("tasting policy %q: weights sum to %.6f, want 1", p.Name, sum)
	}
	return nil
}
