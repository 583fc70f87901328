package calculator

import (
	"time"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/geometry"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/journal"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/logging"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/model"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/session"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/units"
	"go.opentelemetry.io/otel/metric"
)

// #region options
// Options configures a Calculator. Zero values fall back to defaults.
type Options struct {
	Config  *model.Config
	Factors *units.Factors
	Mode    units.Mode

	// Journal, when set, receives every interaction and snapshot. The
	// caller owns it and closes it.
	Journal *journal.Journal

	// Meter defaults to otel.Meter("riskcalc").
	Meter metric.Meter

	Now func() time.Time
}

// #endregion options

// #region evaluation
// RadarView holds the overlaid radar polygons. Baseline is nil unless
// comparison is active.
type RadarView struct {
	Ideal    []geometry.Point
	Current  []geometry.Point
	Baseline []geometry.Point
	Ratios   [len(geometry.RadarAxes)]float64
}

// Evaluation is everything the presentation layer needs after one
// interaction.
type Evaluation struct {
	Trigger     logging.Trigger
	Mode        units.Mode
	Raw         field.Record
	ActiveField field.Field
	Assessment  model.Assessment

	// percentage-point change for WhatIfSteps slider steps up and down
	WhatIfUp   field.Record
	WhatIfDown field.Record

	Radar    RadarView
	Timeline geometry.Timeline
	History  []session.Snapshot

	Comparing       bool
	BaselinePercent float64
	ComparisonDelta float64 // percentage points, current − baseline
}

// Samples returns the history as timeline samples, oldest first.
func (e Evaluation) Samples() []geometry.Sample {
	samples := make([]geometry.Sample, len(e.History))
	for i, s := range e.History {
		samples[i] = geometry.Sample{Index: i, Percent: s.RiskPercent}
	}
	return samples
}

// WhatIf returns the delta for f in direction (+1 up, −1 down).
func (e Evaluation) WhatIf(f field.Field, direction int) float64 {
	if direction < 0 {
		return e.WhatIfDown[f]
	}
	return e.WhatIfUp[f]
}

// #endregion evaluation
