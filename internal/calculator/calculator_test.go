package calculator

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/journal"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/logging"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/model"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/units"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// #region helpers
func newTestCalculator(t *testing.T, mode units.Mode) *Calculator {
	t.Helper()
	c, err := New(Options{Mode: mode})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func newJournaledCalculator(t *testing.T) (*Calculator, *journal.Journal) {
	t.Helper()
	j, err := journal.Open(journal.MemoryDSN)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	c, err := New(Options{Mode: units.US, Journal: j})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, j
}

// #endregion helpers

// #region construction-tests
func TestNewStartsAtDefaults(t *testing.T) {
	c := newTestCalculator(t, units.US)
	want := model.DefaultRanges().Defaults(units.US)
	if c.Raw() != want {
		t.Fatalf("expected defaults %v, got %v", want, c.Raw())
	}
	ev := c.Evaluate(context.Background())
	if ev.Assessment.Percent <= 0 || ev.Assessment.Percent >= 100 {
		t.Fatalf("risk out of range: %v", ev.Assessment.Percent)
	}
	if ev.Timeline.Empty != true {
		t.Fatal("expected empty timeline before any snapshot")
	}
	if ev.Radar.Baseline != nil {
		t.Fatal("expected no baseline polygon without comparison")
	}
	if len(ev.Radar.Current) != 6 || len(ev.Radar.Ideal) != 6 {
		t.Fatalf("expected 6-point polygons, got %d/%d", len(ev.Radar.Current), len(ev.Radar.Ideal))
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.WhatIfSteps = 0
	if _, err := New(Options{Config: &cfg}); err == nil {
		t.Fatal("expected invalid config error")
	}
}

// #endregion construction-tests

// #region input-tests
func TestSetClampsToRange(t *testing.T) {
	c := newTestCalculator(t, units.US)
	ctx := context.Background()

	ev, err := c.Set(ctx, field.Age, 200)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ev.Raw[field.Age] != 90 {
		t.Fatalf("expected age clamped to 90, got %v", ev.Raw[field.Age])
	}
	ev, _ = c.Set(ctx, field.Glucose, 10)
	if ev.Raw[field.Glucose] != 50 {
		t.Fatalf("expected glucose clamped to 50, got %v", ev.Raw[field.Glucose])
	}
}

func TestSetUnknownField(t *testing.T) {
	c := newTestCalculator(t, units.US)
	_, err := c.Set(context.Background(), field.None, 1)
	if !errors.Is(err, field.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestSetRaisesRisk(t *testing.T) {
	c := newTestCalculator(t, units.US)
	ctx := context.Background()
	before := c.Evaluate(ctx).Assessment.Percent
	ev, _ := c.Set(ctx, field.Glucose, 140)
	if ev.Assessment.Percent <= before {
		t.Fatalf("expected higher risk, %v -> %v", before, ev.Assessment.Percent)
	}
	if !ev.Assessment.Elevation.Has(field.Glucose) {
		t.Fatal("expected glucose flagged at 140 mg/dL")
	}
}

func TestNudgeMovesOneStep(t *testing.T) {
	c := newTestCalculator(t, units.US)
	ctx := context.Background()
	start := c.Raw()[field.Waist]

	ev, err := c.Nudge(ctx, field.Waist, 1)
	if err != nil {
		t.Fatalf("Nudge: %v", err)
	}
	if ev.Raw[field.Waist] != start+0.5 {
		t.Fatalf("expected %v, got %v", start+0.5, ev.Raw[field.Waist])
	}
	ev, _ = c.Nudge(ctx, field.Waist, -1)
	if ev.Raw[field.Waist] != start {
		t.Fatalf("expected %v, got %v", start, ev.Raw[field.Waist])
	}
}

func TestNudgeStopsAtBound(t *testing.T) {
	c := newTestCalculator(t, units.US)
	ctx := context.Background()
	c.Set(ctx, field.Race, 1)
	ev, _ := c.Nudge(ctx, field.Race, 1)
	if ev.Raw[field.Race] != 1 {
		t.Fatalf("expected race to stay at 1, got %v", ev.Raw[field.Race])
	}
}

func TestWhatIfMatchesModel(t *testing.T) {
	c := newTestCalculator(t, units.US)
	ev := c.Evaluate(context.Background())
	want := c.Model().WhatIfDelta(c.Raw(), units.US, field.Glucose, 1)
	if ev.WhatIf(field.Glucose, 1) != want {
		t.Fatalf("expected %v, got %v", want, ev.WhatIf(field.Glucose, 1))
	}
	if ev.WhatIf(field.Glucose, 1) <= 0 || ev.WhatIf(field.Glucose, -1) >= 0 {
		t.Fatalf("glucose what-if signs wrong: up=%v down=%v", ev.WhatIfUp[field.Glucose], ev.WhatIfDown[field.Glucose])
	}
	if ev.WhatIf(field.HDL, 1) >= 0 {
		t.Fatalf("raising HDL should lower risk, got %v", ev.WhatIfUp[field.HDL])
	}
}

func TestDragTracksActiveField(t *testing.T) {
	c := newTestCalculator(t, units.US)
	ctx := context.Background()

	ev, err := c.BeginDrag(ctx, field.SBP)
	if err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if ev.ActiveField != field.SBP {
		t.Fatalf("expected active sbp, got %v", ev.ActiveField)
	}
	ev = c.EndDrag(ctx)
	if ev.ActiveField != field.None {
		t.Fatalf("expected no active field, got %v", ev.ActiveField)
	}
}

// #endregion input-tests

// #region units-tests
func TestToggleUnitsPreservesPatient(t *testing.T) {
	c := newTestCalculator(t, units.US)
	ctx := context.Background()
	before := c.Evaluate(ctx).Assessment.Percent

	ev := c.ToggleUnits(ctx)
	if ev.Mode != units.SI {
		t.Fatalf("expected SI, got %v", ev.Mode)
	}
	if math.Abs(ev.Assessment.Percent-before) > 0.5 {
		t.Fatalf("risk drifted across toggle: %v -> %v", before, ev.Assessment.Percent)
	}
	if ev.Raw[field.Waist] != 91 {
		t.Fatalf("expected 36 in -> 91 cm, got %v", ev.Raw[field.Waist])
	}
	if ev.Raw[field.Glucose] != 5.3 {
		t.Fatalf("expected 95 mg/dL -> 5.3 mmol/L, got %v", ev.Raw[field.Glucose])
	}

	ev = c.ToggleUnits(ctx)
	if ev.Mode != units.US {
		t.Fatalf("expected US, got %v", ev.Mode)
	}
	if ev.Raw[field.Height] != 67 {
		t.Fatalf("expected height back at 67 in, got %v", ev.Raw[field.Height])
	}
}

// #endregion units-tests

// #region history-tests
func TestSnapshotHistoryBounded(t *testing.T) {
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	n := 0
	c, err := New(Options{Now: func() time.Time { n++; return base.Add(time.Duration(n) * time.Minute) }})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	ev := c.Snapshot(ctx)
	if ev.Timeline.Empty || ev.Timeline.ShowLine {
		t.Fatal("single snapshot should plot one point without a line")
	}
	for i := 0; i < 24; i++ {
		ev = c.Snapshot(ctx)
	}
	if len(ev.History) != 20 {
		t.Fatalf("expected 20 snapshots, got %d", len(ev.History))
	}
	if !ev.History[0].Timestamp.Equal(base.Add(6 * time.Minute)) {
		t.Fatalf("expected oldest from the 6th snapshot, got %v", ev.History[0].Timestamp)
	}
	if !ev.Timeline.ShowLine || len(ev.Timeline.Points) != 20 {
		t.Fatalf("expected line over 20 points, got %d", len(ev.Timeline.Points))
	}
}

func TestComparisonNeverRebaselines(t *testing.T) {
	c := newTestCalculator(t, units.US)
	ctx := context.Background()

	ev := c.ToggleComparison(ctx)
	if !ev.Comparing || ev.ComparisonDelta != 0 {
		t.Fatalf("expected zero delta on latch, got %+v", ev.ComparisonDelta)
	}
	baseline := ev.BaselinePercent

	ev, _ = c.Set(ctx, field.Glucose, 150)
	if ev.BaselinePercent != baseline {
		t.Fatalf("baseline moved: %v -> %v", baseline, ev.BaselinePercent)
	}
	if math.Abs(ev.ComparisonDelta-(ev.Assessment.Percent-baseline)) > 1e-9 {
		t.Fatalf("delta %v != %v - %v", ev.ComparisonDelta, ev.Assessment.Percent, baseline)
	}
	if ev.Radar.Baseline == nil {
		t.Fatal("expected baseline polygon while comparing")
	}

	ev = c.ToggleComparison(ctx)
	if ev.Comparing || ev.Radar.Baseline != nil {
		t.Fatal("expected comparison cleared")
	}
}

func TestResetRestoresDefaultsKeepsMode(t *testing.T) {
	c := newTestCalculator(t, units.US)
	ctx := context.Background()
	c.ToggleUnits(ctx)
	c.Set(ctx, field.Age, 70)
	c.Snapshot(ctx)
	c.ToggleComparison(ctx)

	ev := c.Reset(ctx)
	if ev.Mode != units.SI {
		t.Fatalf("expected mode kept, got %v", ev.Mode)
	}
	if ev.Raw != model.DefaultRanges().Defaults(units.SI) {
		t.Fatalf("expected SI defaults, got %v", ev.Raw)
	}
	if len(ev.History) != 0 || ev.Comparing {
		t.Fatal("expected history and comparison cleared")
	}
}

// #endregion history-tests

// #region journal-tests
func TestJournalRecordsInteractions(t *testing.T) {
	c, j := newJournaledCalculator(t)
	ctx := context.Background()

	c.Set(ctx, field.Glucose, 120)
	c.Snapshot(ctx)
	c.Snapshot(ctx)

	snaps, err := j.ListSnapshots(c.SessionID())
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 journaled snapshots, got %d", len(snaps))
	}

	events, err := logging.ListEvents(j.DB(), c.SessionID(), 10)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[3].Trigger != logging.TriggerInit {
		t.Fatalf("expected oldest event init, got %+v", events[3])
	}
	if events[2].Trigger != logging.TriggerInput || events[2].Field != "glucose" {
		t.Fatalf("expected slider_input/glucose after init, got %+v", events[2])
	}

	c.Reset(ctx)
	snaps, _ = j.ListSnapshots(c.SessionID())
	if len(snaps) != 0 {
		t.Fatalf("expected snapshots cleared on reset, got %d", len(snaps))
	}
}

func TestEvaluateDoesNotJournal(t *testing.T) {
	c, j := newJournaledCalculator(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if ev := c.Evaluate(ctx); ev.Trigger != "" {
			t.Fatalf("expected empty trigger from Evaluate, got %q", ev.Trigger)
		}
	}
	events, err := logging.ListEvents(j.DB(), c.SessionID(), 10)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].Trigger != logging.TriggerInit {
		t.Fatalf("expected only the init event, got %+v", events)
	}
}

// #endregion journal-tests

// #region metrics-tests
func TestMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	c, err := New(Options{Meter: mp.Meter(MeterName)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	c.Set(ctx, field.Age, 60)
	c.Set(ctx, field.Age, 61)
	c.Evaluate(ctx)
	c.Snapshot(ctx)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	var evaluations, snapshots int64
	var histCount uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "riskcalc_evaluations_total":
				for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
					evaluations += dp.Value
				}
			case "riskcalc_snapshots_total":
				for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
					snapshots += dp.Value
				}
			case "riskcalc_risk_percent":
				for _, dp := range m.Data.(metricdata.Histogram[float64]).DataPoints {
					histCount += dp.Count
				}
			}
		}
	}
	if evaluations != 3 {
		t.Errorf("expected 3 evaluations, got %d", evaluations)
	}
	if snapshots != 1 {
		t.Errorf("expected 1 snapshot, got %d", snapshots)
	}
	if histCount != 3 {
		t.Errorf("expected 3 risk observations, got %d", histCount)
	}
}

// failingMeter refuses every instrument.
type failingMeter struct{ noop.Meter }

func (failingMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return nil, errors.New("counter refused")
}

func (failingMeter) Float64Histogram(string, ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	return nil, errors.New("histogram refused")
}

func TestMetricsInstrumentFailureLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	c, err := New(Options{Meter: failingMeter{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if _, err := c.Set(ctx, field.Age, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}
	c.Snapshot(ctx)

	out := buf.String()
	for _, name := range []string{"riskcalc_evaluations_total", "riskcalc_risk_percent", "riskcalc_snapshots_total"} {
		if !strings.Contains(out, name) {
			t.Errorf("expected warning for %s in:\n%s", name, out)
		}
	}
	if !strings.Contains(out, "counter refused") {
		t.Errorf("expected the meter error in the log:\n%s", out)
	}
}

// #endregion metrics-tests
