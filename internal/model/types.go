package model

import (
	"encoding/json"
	"fmt"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/units"
)

// #region coefficients
// Coefficients are the logistic-regression betas and the population means
// (SI units) the contributions are centred on.
type Coefficients struct {
	Intercept float64      `json:"intercept"`
	Weights   field.Record `json:"weights"`
	Means     field.Record `json:"means"`
}

// DefaultCoefficients returns the ARIC diabetes risk betas.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		Intercept: -9.9808,
		Weights: field.Record{
			field.Age:        0.0173,
			field.Race:       0.4433,
			field.ParentHist: 0.4981,
			field.SBP:        0.0111,
			field.Waist:      0.0273,
			field.Height:     -0.0326,
			field.Glucose:    1.5849,
			field.HDL:        -0.4718,
			field.Trig:       0.2420,
		},
		Means: field.Record{
			field.Age:        54,
			field.Race:       0.22,
			field.ParentHist: 0.30,
			field.SBP:        118,
			field.Waist:      96,
			field.Height:     168,
			field.Glucose:    5.5,
			field.HDL:        1.3,
			field.Trig:       1.5,
		},
	}
}

// #endregion coefficients

// #region thresholds
// Thresholds are clinical cut-points. All are SI except TrigUS, which is
// compared against the raw mg/dL value when the display is in US units.
type Thresholds struct {
	Glucose   float64 `json:"glucose"`    // mmol/L, elevated at or above
	SBP       float64 `json:"sbp"`        // mmHg, elevated at or above
	HDL       float64 `json:"hdl"`        // mmol/L, low at or below
	Waist     float64 `json:"waist"`      // cm, elevated at or above
	WaistHigh float64 `json:"waist_high"` // cm, surgical option at or above
	TrigSI    float64 `json:"trig_si"`    // mmol/L
	TrigUS    float64 `json:"trig_us"`    // mg/dL
}

// DefaultThresholds returns the standard cut-points.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Glucose:   5.6,
		SBP:       130,
		HDL:       1.0,
		Waist:     94,
		WaistHigh: 102,
		TrigSI:    1.7,
		TrigUS:    150,
	}
}

// #endregion thresholds

// #region ranges
// Range is a slider's bounds and granularity in one unit mode.
type Range struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// Clamp limits v to [Min, Max].
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// RangeTable holds one Range per field. In JSON it is an object keyed by
// field name.
type RangeTable [field.Count]Range

// MarshalJSON encodes the table keyed by field name.
func (t RangeTable) MarshalJSON() ([]byte, error) {
	m := make(map[string]Range, field.Count)
	for _, f := range field.All() {
		m[f.String()] = t[f]
	}
	return json.Marshal(m)
}

// UnmarshalJSON merges an object keyed by field name into t. Missing fields
// and missing Range members keep their current values; unknown fields are
// rejected.
func (t *RangeTable) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("decode ranges: %w", err)
	}
	for k, raw := range m {
		f, err := field.Parse(k)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &t[f]); err != nil {
			return fmt.Errorf("range %s: %w", f, err)
		}
	}
	return nil
}

// Ranges holds the slider configuration per field for both unit modes.
type Ranges struct {
	US RangeTable `json:"us"`
	SI RangeTable `json:"si"`
}

// For returns the range of f in mode.
func (r Ranges) For(f field.Field, mode units.Mode) Range {
	if mode.Metric() {
		return r.SI[f]
	}
	return r.US[f]
}

// Defaults returns the default slider positions in mode.
func (r Ranges) Defaults(mode units.Mode) field.Record {
	var rec field.Record
	for _, f := range field.All() {
		rec[f] = r.For(f, mode).Default
	}
	return rec
}

// DefaultRanges returns the slider bounds used by the calculator.
func DefaultRanges() Ranges {
	var r Ranges
	r.US[field.Age] = Range{20, 90, 1, 50}
	r.US[field.Race] = Range{0, 1, 1, 0}
	r.US[field.ParentHist] = Range{0, 1, 1, 0}
	r.US[field.SBP] = Range{80, 200, 1, 120}
	r.US[field.Waist] = Range{20, 60, 0.5, 36}
	r.US[field.Height] = Range{48, 84, 0.5, 67}
	r.US[field.Glucose] = Range{50, 200, 1, 95}
	r.US[field.HDL] = Range{20, 100, 1, 50}
	r.US[field.Trig] = Range{50, 500, 1, 130}

	r.SI[field.Age] = Range{20, 90, 1, 50}
	r.SI[field.Race] = Range{0, 1, 1, 0}
	r.SI[field.ParentHist] = Range{0, 1, 1, 0}
	r.SI[field.SBP] = Range{80, 200, 1, 120}
	r.SI[field.Waist] = Range{50, 152, 1, 91}
	r.SI[field.Height] = Range{120, 215, 1, 170}
	r.SI[field.Glucose] = Range{2.8, 11.1, 0.1, 5.3}
	r.SI[field.HDL] = Range{0.5, 2.6, 0.05, 1.3}
	r.SI[field.Trig] = Range{0.5, 5.6, 0.1, 1.5}
	return r
}

// #endregion ranges

// #region levels
// Levels are the probability cut-points (percent) between risk categories.
type Levels struct {
	Moderate float64 `json:"moderate"`
	High     float64 `json:"high"`
}

// DefaultLevels returns the 10% / 20% banding.
func DefaultLevels() Levels {
	return Levels{Moderate: 10, High: 20}
}

// Level is a coarse risk category.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// #endregion levels

// #region config
// Config bundles every constant table the model depends on. It is passed to
// NewModel rather than read from package state, so tests can substitute
// alternate coefficient sets.
type Config struct {
	Coefficients Coefficients `json:"coefficients"`
	Thresholds   Thresholds   `json:"thresholds"`
	Ranges       Ranges       `json:"ranges"`
	Levels       Levels       `json:"levels"`
	WhatIfSteps  float64      `json:"what_if_steps"`
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Coefficients: DefaultCoefficients(),
		Thresholds:   DefaultThresholds(),
		Ranges:       DefaultRanges(),
		Levels:       DefaultLevels(),
		WhatIfSteps:  5,
	}
}

// #endregion config

// #region results
// Elevation is the set of fields past a clinical threshold.
type Elevation struct {
	Fields    []field.Field
	HighWaist bool
}

// Has reports whether f is flagged.
func (e Elevation) Has(f field.Field) bool {
	for _, x := range e.Fields {
		if x == f {
			return true
		}
	}
	return false
}

// Recommendation is a category of advice shown to the patient.
type Recommendation string

const (
	RecommendLifestyle  Recommendation = "lifestyle"
	RecommendMedication Recommendation = "medication"
	RecommendSurgical   Recommendation = "surgical"
)

// Assessment is the full output of one evaluation.
type Assessment struct {
	SI              field.Record
	Score           float64
	Probability     float64
	Percent         float64
	Level           Level
	Contributions   field.Record
	Shares          field.Record // percent of total |contribution|
	Elevation       Elevation
	Recommendations []Recommendation
}

// #endregion results
