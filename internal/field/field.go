package field

import (
	"errors"
	"fmt"
	"strings"
)

// #region field
// Field identifies one of the nine weighted patient measurements.
type Field int

const (
	Age Field = iota
	Race
	ParentHist
	SBP
	Waist
	Height
	Glucose
	HDL
	Trig
)

// Count is the number of weighted fields.
const Count = 9

// None marks the absence of a field (e.g. no slider is being dragged).
const None Field = -1

var keys = [Count]string{
	Age:        "age",
	Race:       "race",
	ParentHist: "parentHist",
	SBP:        "sbp",
	Waist:      "waist",
	Height:     "height",
	Glucose:    "glucose",
	HDL:        "hdl",
	Trig:       "trig",
}

var labels = [Count]string{
	Age:        "Age",
	Race:       "Black race",
	ParentHist: "Parental history",
	SBP:        "Systolic BP",
	Waist:      "Waist",
	Height:     "Height",
	Glucose:    "Fasting glucose",
	HDL:        "HDL cholesterol",
	Trig:       "Triglycerides",
}

// ErrUnknownField is returned by Parse for keys outside the field set.
var ErrUnknownField = errors.New("unknown field")

// All returns every field in canonical order.
func All() []Field {
	return []Field{Age, Race, ParentHist, SBP, Waist, Height, Glucose, HDL, Trig}
}

// Valid reports whether f is one of the nine fields.
func (f Field) Valid() bool {
	return f >= 0 && f < Count
}

// String returns the field's key.
func (f Field) String() string {
	if !f.Valid() {
		return "none"
	}
	return keys[f]
}

// Label returns a human-readable name.
func (f Field) Label() string {
	if !f.Valid() {
		return ""
	}
	return labels[f]
}

// Binary reports whether the field only takes the values 0 and 1.
func (f Field) Binary() bool {
	return f == Race || f == ParentHist
}

// Parse resolves a key (case-insensitive) to a Field.
func Parse(key string) (Field, error) {
	k := strings.TrimSpace(key)
	for i, name := range keys {
		if strings.EqualFold(name, k) {
			return Field(i), nil
		}
	}
	return None, fmt.Errorf("parse %q: %w", key, ErrUnknownField)
}

// MarshalText encodes the field as its key.
func (f Field) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("marshal field %d: %w", int(f), ErrUnknownField)
	}
	return []byte(keys[f]), nil
}

// UnmarshalText decodes a field key.
func (f *Field) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// #endregion field
