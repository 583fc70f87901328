package field

import (
	"encoding/json"
	"fmt"
)

// #region record
// Record holds one value per field. It is an array, so assignment copies it
// and a Record handed to another package can never be mutated behind the
// caller's back.
type Record [Count]float64

// Get returns the value for f.
func (r Record) Get(f Field) float64 {
	return r[f]
}

// With returns a copy of r with f set to v.
func (r Record) With(f Field, v float64) Record {
	r[f] = v
	return r
}

// Sum returns the sum of all entries.
func (r Record) Sum() float64 {
	var s float64
	for _, v := range r {
		s += v
	}
	return s
}

// #endregion record

// #region json
// MarshalJSON encodes the record as an object keyed by field name.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, Count)
	for _, f := range All() {
		m[f.String()] = r[f]
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by field name. Missing keys keep
// their current value; unknown keys are rejected.
func (r *Record) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	for k, v := range m {
		f, err := Parse(k)
		if err != nil {
			return err
		}
		r[f] = v
	}
	return nil
}

// #endregion json
