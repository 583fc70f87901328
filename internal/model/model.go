package model

import (
	"math"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/units"
)

// ScoreLimit bounds the logit before the logistic transform. e^36 is large
// enough to be clinically meaningless but keeps 1/(1+e^-s) strictly below 1
// in float64.
const ScoreLimit = 36.0

// #region model
// Model evaluates the logistic risk formula. It holds only immutable
// configuration and is safe to share.
type Model struct {
	config    Config
	converter *units.Converter
}

// NewModel creates a model over config, converting raw input with converter.
func NewModel(config Config, converter *units.Converter) *Model {
	return &Model{config: config, converter: converter}
}

// Config returns the model's configuration.
func (m *Model) Config() Config {
	return m.config
}

// Converter returns the unit converter the model uses for raw input.
func (m *Model) Converter() *units.Converter {
	return m.converter
}

// #endregion model

// #region probability
// Score returns intercept + Σ weight·value over SI inputs.
func (m *Model) Score(si field.Record) float64 {
	c := m.config.Coefficients
	score := c.Intercept
	for _, f := range field.All() {
		score += c.Weights[f] * si[f]
	}
	return score
}

// Probability returns the logistic of the score, strictly inside (0,1) for
// any finite input.
func (m *Model) Probability(si field.Record) float64 {
	return Logistic(m.Score(si))
}

// Logistic maps a score to a probability, saturating at ±ScoreLimit.
func Logistic(score float64) float64 {
	if math.IsNaN(score) {
		return 0.5
	}
	if score > ScoreLimit {
		score = ScoreLimit
	} else if score < -ScoreLimit {
		score = -ScoreLimit
	}
	return 1 / (1 + math.Exp(-score))
}

// #endregion probability

// #region contributions
// Contributions decomposes the score around the population means:
// weight·(value − mean) per field. Their sum is Score(si) − Score(means).
func (m *Model) Contributions(si field.Record) field.Record {
	c := m.config.Coefficients
	var out field.Record
	for _, f := range field.All() {
		out[f] = c.Weights[f] * (si[f] - c.Means[f])
	}
	return out
}

// BaselineScore is the score of the population-mean patient.
func (m *Model) BaselineScore() float64 {
	return m.Score(m.config.Coefficients.Means)
}

// Shares converts contributions to percentages of Σ|contribution|. When every
// contribution is zero all shares are zero.
func Shares(contribs field.Record) field.Record {
	var total float64
	for _, v := range contribs {
		total += math.Abs(v)
	}
	var out field.Record
	if total == 0 {
		return out
	}
	for i, v := range contribs {
		out[i] = math.Abs(v) / total * 100
	}
	return out
}

// #endregion contributions

// #region elevated
// ElevatedFactors flags fields past their clinical threshold. Triglycerides
// are judged in the display convention: the SI value against TrigSI when
// metric, the untouched raw mg/dL value against TrigUS otherwise. 150 mg/dL
// is flagged in US mode even though it converts to ~1.694 mmol/L.
func (m *Model) ElevatedFactors(si, raw field.Record, mode units.Mode) Elevation {
	t := m.config.Thresholds
	var e Elevation

	if si[field.Glucose] >= t.Glucose {
		e.Fields = append(e.Fields, field.Glucose)
	}
	if si[field.SBP] >= t.SBP {
		e.Fields = append(e.Fields, field.SBP)
	}
	if si[field.HDL] <= t.HDL {
		e.Fields = append(e.Fields, field.HDL)
	}
	if si[field.Waist] >= t.Waist {
		e.Fields = append(e.Fields, field.Waist)
	}

	trigHigh := si[field.Trig] >= t.TrigSI
	if !mode.Metric() {
		trigHigh = raw[field.Trig] >= t.TrigUS
	}
	if trigHigh {
		e.Fields = append(e.Fields, field.Trig)
	}

	e.HighWaist = si[field.Waist] >= t.WaistHigh
	return e
}

// Recommendations lists advice categories: lifestyle always, medication
// review when anything is elevated, surgical referral for a high waist.
func Recommendations(e Elevation) []Recommendation {
	recs := []Recommendation{RecommendLifestyle}
	if len(e.Fields) > 0 {
		recs = append(recs, RecommendMedication)
	}
	if e.HighWaist {
		recs = append(recs, RecommendSurgical)
	}
	return recs
}

// #endregion elevated

// #region what-if
// WhatIfDelta answers "if this slider moved WhatIfSteps steps in direction,
// how many percentage points would risk change?". raw is not modified.
func (m *Model) WhatIfDelta(raw field.Record, mode units.Mode, f field.Field, direction int) float64 {
	if direction > 0 {
		direction = 1
	} else if direction < 0 {
		direction = -1
	}
	step := m.config.Ranges.For(f, mode).Step

	base := m.Probability(m.converter.ToSI(raw, mode))
	altered := raw.With(f, raw[f]+float64(direction)*step*m.config.WhatIfSteps)
	next := m.Probability(m.converter.ToSI(altered, mode))
	return (next - base) * 100
}

// WhatIfAll returns WhatIfDelta for every field in direction.
func (m *Model) WhatIfAll(raw field.Record, mode units.Mode, direction int) field.Record {
	var out field.Record
	for _, f := range field.All() {
		out[f] = m.WhatIfDelta(raw, mode, f, direction)
	}
	return out
}

// #endregion what-if

// #region evaluate
// LevelOf bands a probability into a risk category.
func (m *Model) LevelOf(probability float64) Level {
	pct := probability * 100
	switch {
	case pct >= m.config.Levels.High:
		return LevelHigh
	case pct >= m.config.Levels.Moderate:
		return LevelModerate
	default:
		return LevelLow
	}
}

// Evaluate runs the full model over a raw record in mode.
func (m *Model) Evaluate(raw field.Record, mode units.Mode) Assessment {
	si := m.converter.ToSI(raw, mode)
	score := m.Score(si)
	p := Logistic(score)
	contribs := m.Contributions(si)
	elev := m.ElevatedFactors(si, raw, mode)

	return Assessment{
		SI:              si,
		Score:           score,
		Probability:     p,
		Percent:         p * 100,
		Level:           m.LevelOf(p),
		Contributions:   contribs,
		Shares:          Shares(contribs),
		Elevation:       elev,
		Recommendations: Recommendations(elev),
	}
}

// #endregion evaluate
