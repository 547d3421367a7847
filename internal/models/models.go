package models

import (
	"strings"
	"time"
)

// WineRecord is a wine as held by the record store. It doubles as the ground
// truth for blind tastings and as a recommendation candidate.
type WineRecord struct {
	ID             string   `json:"id" yaml:"id" parquet:"id"`
	Winery         string   `json:"winery,omitempty" yaml:"winery,omitempty" parquet:"winery"`
	Name           string   `json:"name,omitempty" yaml:"name,omitempty" parquet:"name"`
	WineType       string   `json:"wine_type,omitempty" yaml:"wine_type,omitempty" parquet:"wine_type"` // "red", "white", "rosé", "sparkling", ...
	GrapeVarieties []string `json:"grape_varieties,omitempty" yaml:"grape_varieties,omitempty" parquet:"grape_varieties,list"`
	Region         string   `json:"region,omitempty" yaml:"region,omitempty" parquet:"region"`
	Country        string   `json:"country,omitempty" yaml:"country,omitempty" parquet:"country"`
	Vintage        *int     `json:"vintage,omitempty" yaml:"vintage,omitempty" parquet:"vintage,optional"`
	Price          *float64 `json:"price,omitempty" yaml:"price,omitempty" parquet:"price,optional"`
	Rating         *float64 `json:"rating,omitempty" yaml:"rating,omitempty" parquet:"rating,optional"` // community average, 0-5
}

// BaseRating returns the record's rating, or 0 when it has none.
func (w WineRecord) BaseRating() float64 {
	if w.Rating == nil {
		return 0
	}
	return *w.Rating
}

// VintageRange is an inclusive span of years.
type VintageRange struct {
	Min int `json:"min" yaml:"min" parquet:"min"`
	Max int `json:"max" yaml:"max" parquet:"max"`
}

// Ordered returns the range with Min <= Max.
func (r VintageRange) Ordered() VintageRange {
	if r.Min > r.Max {
		return VintageRange{Min: r.Max, Max: r.Min}
	}
	return r
}

// Contains reports whether year lies within the range, bounds included.
func (r VintageRange) Contains(year int) bool {
	o := r.Ordered()
	return year >= o.Min && year <= o.Max
}

// Midpoint returns the centre of the range.
func (r VintageRange) Midpoint() float64 {
	return float64(r.Min+r.Max) / 2
}

// Guess is a blind-tasting submission.
type Guess struct {
	WineType       string        `json:"wine_type,omitempty" yaml:"wine_type,omitempty" parquet:"wine_type"`
	GrapeVarieties []string      `json:"grape_varieties,omitempty" yaml:"grape_varieties,omitempty" parquet:"grape_varieties,list"`
	Region         string        `json:"region,omitempty" yaml:"region,omitempty" parquet:"region"`
	Country        string        `json:"country,omitempty" yaml:"country,omitempty" parquet:"country"`
	VintageRange   *VintageRange `json:"vintage_range,omitempty" yaml:"vintage_range,omitempty" parquet:"vintage_range,optional"`
	Confidence     int           `json:"confidence,omitempty" yaml:"confidence,omitempty" parquet:"confidence"` // self-reported, 0-100
	Reasoning      string        `json:"reasoning,omitempty" yaml:"reasoning,omitempty" parquet:"reasoning"`
}

// PriceRange bounds what a user is willing to pay, inclusive.
type PriceRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Profile holds a user's stated preferences.
type Profile struct {
	GrapeVarieties []string    `json:"grape_varieties,omitempty" yaml:"grape_varieties,omitempty"`
	Regions        []string    `json:"regions,omitempty" yaml:"regions,omitempty"`
	WineTypes      []string    `json:"wine_types,omitempty" yaml:"wine_types,omitempty"`
	PriceRange     *PriceRange `json:"price_range,omitempty" yaml:"price_range,omitempty"`
}

// Rating is one user's rating of one wine.
type Rating struct {
	UserID  string    `json:"user_id" yaml:"user_id" parquet:"user_id"`
	WineID  string    `json:"wine_id" yaml:"wine_id" parquet:"wine_id"`
	Score   float64   `json:"score" yaml:"score" parquet:"score"` // 1-5
	RatedAt time.Time `json:"rated_at" yaml:"rated_at" parquet:"rated_at"`
}

// Present reports whether a text value carries information. Blank and
// whitespace-only strings are absent.
func Present(s string) bool {
	return strings.TrimSpace(s) != ""
}

// NonBlank returns the trimmed, non-blank entries of values in order.
func NonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
