package units

import (
	"fmt"
	"math"
	"strings"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
)

// #region mode
// Mode selects the measurement convention of raw input values.
type Mode int

const (
	US Mode = iota // inches, mg/dL
	SI             // cm, mmol/L
)

// String returns "us" or "si".
func (m Mode) String() string {
	if m == SI {
		return "si"
	}
	return "us"
}

// Metric reports whether m is the SI convention.
func (m Mode) Metric() bool {
	return m == SI
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == SI {
		return US
	}
	return SI
}

// ParseMode accepts "us"/"si" (also "metric"/"imperial").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "us", "imperial", "":
		return US, nil
	case "si", "metric":
		return SI, nil
	}
	return US, fmt.Errorf("unknown unit mode %q", s)
}

// MarshalText encodes the mode as "us" or "si".
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes "us" or "si".
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// #endregion mode

// #region factors
// Factors maps each field to the multiplier taking a US value to SI.
// A factor of 1 means the field is unit-independent.
type Factors field.Record

// DefaultFactors returns the standard inch->cm and mg/dL->mmol/L multipliers.
// Blood pressure is mmHg in both conventions.
func DefaultFactors() Factors {
	f := Factors{}
	for i := range f {
		f[i] = 1
	}
	f[field.Waist] = 2.54
	f[field.Height] = 2.54
	f[field.Glucose] = 1 / 18.0
	f[field.HDL] = 1 / 38.67
	f[field.Trig] = 1 / 88.57
	return f
}

// #endregion factors

// #region converter
// Converter translates records between US and SI conventions.
type Converter struct {
	factors Factors
}

// NewConverter creates a converter with the given factors.
func NewConverter(factors Factors) *Converter {
	return &Converter{factors: factors}
}

// Factor returns the US->SI multiplier for f.
func (c *Converter) Factor(f field.Field) float64 {
	return c.factors[f]
}

// ToSI converts a raw record in mode to SI. An SI record is returned as is.
func (c *Converter) ToSI(rec field.Record, mode Mode) field.Record {
	if mode.Metric() {
		return rec
	}
	out := rec
	for i := range out {
		out[i] = rec[i] * c.factors[i]
	}
	return out
}

// ToUS converts an SI record to US values using the reciprocal multipliers.
func (c *Converter) ToUS(rec field.Record) field.Record {
	out := rec
	for i := range out {
		out[i] = rec[i] / c.factors[i]
	}
	return out
}

// Convert re-expresses rec from one mode in another.
func (c *Converter) Convert(rec field.Record, from, to Mode) field.Record {
	if from == to {
		return rec
	}
	if to.Metric() {
		return c.ToSI(rec, from)
	}
	return c.ToUS(rec)
}

// ValueToSI converts a single raw value.
func (c *Converter) ValueToSI(f field.Field, v float64, mode Mode) float64 {
	if mode.Metric() {
		return v
	}
	return v * c.factors[f]
}

// #endregion converter

// #region rounding
// RoundToStep snaps v to the nearest multiple of step. Steps below 1 keep
// their decimal precision so 0.1-steps don't produce 5.6000000000000005.
func RoundToStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	snapped := math.Round(v/step) * step
	decimals := Decimals(step)
	p := math.Pow(10, float64(decimals))
	return math.Round(snapped*p) / p
}

// Decimals returns how many fractional digits a step needs for display.
func Decimals(step float64) int {
	d := 0
	for d < 6 && math.Abs(step-math.Round(step)) > 1e-9 {
		step *= 10
		d++
	}
	return d
}

// #endregion rounding
