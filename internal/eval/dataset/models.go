package dataset

import (
	"github.com/tastingroom/winescore/internal/models"
)

// TastingRecord is one blind tasting with its ground truth.
type TastingRecord struct {
	ID     string            `json:"id" yaml:"id" parquet:"id"`
	Guess  models.Guess      `json:"guess" yaml:"guess" parquet:"guess"`
	Actual models.WineRecord `json:"actual" yaml:"actual" parquet:"actual"`
}

// LabelRecord is one label with the fields a cataloguer entered for it.
// Tokens and FullText hold recognized text; ImagePath, when set, lets an
// evaluation recognize the label itself.
type LabelRecord struct {
	ID        string      `json:"id" yaml:"id" parquet:"id"`
	Tokens    []string    `json:"tokens" yaml:"tokens" parquet:"tokens,list"`
	FullText  string      `json:"full_text" yaml:"full_text" parquet:"full_text"`
	ImagePath string      `json:"image_path,omitempty" yaml:"image_path,omitempty" parquet:"image_path"`
	Expected  LabelFields `json:"expected" yaml:"expected" parquet:"expected"`
}

// LabelFields is the ground truth for a label.
type LabelFields struct {
	Winery       string `json:"winery" yaml:"winery" parquet:"winery"`
	WineName     string `json:"wine_name" yaml:"wine_name" parquet:"wine_name"`
	Vintage      *int   `json:"vintage,omitempty" yaml:"vintage,omitempty" parquet:"vintage,optional"`
	Region       string `json:"region" yaml:"region" parquet:"region"`
	GrapeVariety string `json:"grape_variety" yaml:"grape_variety" parquet:"grape_variety"`
}

// RecordID returns the record's identifier.
func (r TastingRecord) RecordID() string { return r.ID }

// RecordID returns the record's identifier.
func (r LabelRecord) RecordID() string { return r.ID }
