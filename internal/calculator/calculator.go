package calculator

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/geometry"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/journal"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/logging"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/model"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/session"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/units"
)

// #endregion

// #region calculator-struct

// Calculator is the top-level coordinator: it owns the slider values and
// session state, and runs one synchronous recompute per interaction. Not
// safe for concurrent use.
type Calculator struct {
	model   *model.Model
	radar   *geometry.Radar
	plot    geometry.Plot
	state   *session.State
	raw     field.Record
	journal *journal.Journal
	metrics instruments
	now     func() time.Time
}

// #endregion

// #region constructor

// New creates a calculator with every slider at its default position.
func New(opts Options) (*Calculator, error) {
	cfg := model.DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	factors := units.DefaultFactors()
	if opts.Factors != nil {
		factors = *opts.Factors
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var bounds [field.Count]geometry.Bounds
	for _, f := range field.All() {
		r := cfg.Ranges.SI[f]
		bounds[f] = geometry.Bounds{Min: r.Min, Max: r.Max}
	}

	c := &Calculator{
		model:   model.NewModel(cfg, units.NewConverter(factors)),
		radar:   geometry.NewRadar(bounds, cfg.Coefficients.Means, geometry.DefaultRadarFrame()),
		plot:    geometry.DefaultPlot(),
		state:   session.New(opts.Mode),
		raw:     cfg.Ranges.Defaults(opts.Mode),
		journal: opts.Journal,
		metrics: newInstruments(opts.Meter),
		now:     now,
	}

	if c.journal != nil {
		if err := c.journal.StartSession(c.state.ID, c.state.Mode); err != nil {
			return nil, err
		}
		c.logEvent(c.evaluate(logging.TriggerInit), field.None)
	}
	slog.Debug("calculator ready", "session", c.state.ID, "mode", c.state.Mode.String())
	return c, nil
}

// #endregion

// #region accessors

// SessionID returns the session's identifier.
func (c *Calculator) SessionID() string { return c.state.ID }

// Mode returns the active unit mode.
func (c *Calculator) Mode() units.Mode { return c.state.Mode }

// Raw returns the slider values in the active mode.
func (c *Calculator) Raw() field.Record { return c.raw }

// Model returns the underlying risk model.
func (c *Calculator) Model() *model.Model { return c.model }

// Radar returns the radar geometry the evaluation polygons are built on.
func (c *Calculator) Radar() *geometry.Radar { return c.radar }

// Range returns f's slider range in the active mode.
func (c *Calculator) Range(f field.Field) model.Range {
	return c.model.Config().Ranges.For(f, c.state.Mode)
}

// #endregion

// #region interactions

// Evaluate returns the current outputs. It changes no state and is neither
// journaled nor counted in metrics; the returned Trigger is empty.
func (c *Calculator) Evaluate(ctx context.Context) Evaluation {
	return c.evaluate("")
}

// Set moves f's slider to v, clamped to the active mode's range.
func (c *Calculator) Set(ctx context.Context, f field.Field, v float64) (Evaluation, error) {
	if !f.Valid() {
		return Evaluation{}, fmt.Errorf("set %d: %w", int(f), field.ErrUnknownField)
	}
	c.raw[f] = c.Range(f).Clamp(v)
	return c.recompute(ctx, logging.TriggerInput, f), nil
}

// Nudge moves f's slider one step in direction.
func (c *Calculator) Nudge(ctx context.Context, f field.Field, direction int) (Evaluation, error) {
	if !f.Valid() {
		return Evaluation{}, fmt.Errorf("nudge %d: %w", int(f), field.ErrUnknownField)
	}
	r := c.Range(f)
	switch {
	case direction > 0:
		c.raw[f] = r.Clamp(units.RoundToStep(c.raw[f]+r.Step, r.Step))
	case direction < 0:
		c.raw[f] = r.Clamp(units.RoundToStep(c.raw[f]-r.Step, r.Step))
	}
	return c.recompute(ctx, logging.TriggerInput, f), nil
}

// BeginDrag marks f as the slider being dragged.
func (c *Calculator) BeginDrag(ctx context.Context, f field.Field) (Evaluation, error) {
	if !f.Valid() {
		return Evaluation{}, fmt.Errorf("drag %d: %w", int(f), field.ErrUnknownField)
	}
	c.state.BeginDrag(f)
	return c.recompute(ctx, logging.TriggerDragStart, f), nil
}

// EndDrag releases the active slider.
func (c *Calculator) EndDrag(ctx context.Context) Evaluation {
	f := c.state.ActiveField()
	c.state.EndDrag()
	return c.recompute(ctx, logging.TriggerDragEnd, f)
}

// ToggleUnits switches unit mode and converts every slider so the patient
// is unchanged, snapped to the new mode's step and range.
func (c *Calculator) ToggleUnits(ctx context.Context) Evaluation {
	from := c.state.Mode
	to := c.state.ToggleUnits()
	converted := c.model.Converter().Convert(c.raw, from, to)
	for _, f := range field.All() {
		r := c.model.Config().Ranges.For(f, to)
		converted[f] = r.Clamp(units.RoundToStep(converted[f], r.Step))
	}
	c.raw = converted

	if c.journal != nil {
		if err := c.journal.StartSession(c.state.ID, to); err != nil {
			slog.Warn("journal mode update failed", "err", err)
		}
	}
	return c.recompute(ctx, logging.TriggerUnitToggle, field.None)
}

// Snapshot appends the current risk to the history.
func (c *Calculator) Snapshot(ctx context.Context) Evaluation {
	a := c.model.Evaluate(c.raw, c.state.Mode)
	snap, evicted := c.state.Snapshot(c.now(), a.Percent, a.SI)
	if evicted != nil {
		slog.Debug("snapshot evicted", "id", evicted.ID)
	}
	if c.journal != nil {
		if err := c.journal.AppendSnapshot(c.state.ID, snap, c.state.History.Capacity()); err != nil {
			slog.Warn("journal snapshot failed", "err", err)
		}
	}
	c.metrics.recordSnapshot(ctx)
	return c.recompute(ctx, logging.TriggerSnapshot, field.None)
}

// ToggleComparison latches the current risk as the comparison baseline, or
// clears it.
func (c *Calculator) ToggleComparison(ctx context.Context) Evaluation {
	a := c.model.Evaluate(c.raw, c.state.Mode)
	c.state.ToggleComparison(a.Probability, a.SI)
	return c.recompute(ctx, logging.TriggerCompare, field.None)
}

// Reset restores default slider positions in the current mode and clears
// history and comparison.
func (c *Calculator) Reset(ctx context.Context) Evaluation {
	c.state.Reset()
	c.raw = c.model.Config().Ranges.Defaults(c.state.Mode)
	if c.journal != nil {
		if err := c.journal.ClearSnapshots(c.state.ID); err != nil {
			slog.Warn("journal clear failed", "err", err)
		}
	}
	return c.recompute(ctx, logging.TriggerReset, field.None)
}

// #endregion

// #region recompute

func (c *Calculator) recompute(ctx context.Context, trigger logging.Trigger, f field.Field) Evaluation {
	ev := c.evaluate(trigger)
	c.metrics.recordEvaluation(ctx, trigger, string(ev.Assessment.Level), ev.Assessment.Percent)
	c.logEvent(ev, f)
	return ev
}

func (c *Calculator) evaluate(trigger logging.Trigger) Evaluation {
	mode := c.state.Mode
	a := c.model.Evaluate(c.raw, mode)

	ev := Evaluation{
		Trigger:     trigger,
		Mode:        mode,
		Raw:         c.raw,
		ActiveField: c.state.ActiveField(),
		Assessment:  a,
		WhatIfUp:    c.model.WhatIfAll(c.raw, mode, 1),
		WhatIfDown:  c.model.WhatIfAll(c.raw, mode, -1),
		History:     c.state.History.Items(),
	}

	ev.Radar = RadarView{
		Ideal:   c.radar.IdealPolygon(),
		Current: c.radar.Polygon(a.SI),
		Ratios:  c.radar.Ratios(a.SI),
	}
	if p, si, ok := c.state.Baseline(); ok {
		ev.Comparing = true
		ev.BaselinePercent = p * 100
		ev.Radar.Baseline = c.radar.Polygon(si)
		delta, _ := c.state.ComparisonDelta(a.Probability)
		ev.ComparisonDelta = delta * 100
	}

	ev.Timeline = geometry.Layout(ev.Samples(), c.plot)
	return ev
}

func (c *Calculator) logEvent(ev Evaluation, f field.Field) {
	if c.journal == nil {
		return
	}

	sig := logging.EventSignals{
		Raw:        make(map[string]float64, field.Count),
		Elevated:   make([]string, 0, len(ev.Assessment.Elevation.Fields)),
		HighWaist:  ev.Assessment.Elevation.HighWaist,
		Level:      string(ev.Assessment.Level),
		HistoryLen: len(ev.History),
	}
	for _, fl := range field.All() {
		sig.Raw[fl.String()] = ev.Raw[fl]
	}
	for _, fl := range ev.Assessment.Elevation.Fields {
		sig.Elevated = append(sig.Elevated, fl.String())
	}
	if ev.Comparing {
		d := ev.ComparisonDelta
		sig.ComparisonDelta = &d
	}
	sigJSON, _ := json.Marshal(sig)

	entry := logging.EventEntry{
		SessionID:   c.state.ID,
		Trigger:     ev.Trigger,
		Mode:        ev.Mode.String(),
		RiskPercent: ev.Assessment.Percent,
		SignalsJSON: string(sigJSON),
	}
	if f.Valid() {
		entry.Field = f.String()
	}
	if err := logging.LogEvent(c.journal.DB(), entry); err != nil {
		slog.Warn("journal event failed", "trigger", string(ev.Trigger), "err", err)
	}
}

// #endregion
