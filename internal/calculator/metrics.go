package calculator

import (
	"context"
	"log/slog"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the instrumentation scope of the calculator's metrics.
const MeterName = "riskcalc"

type instruments struct {
	evaluations metric.Int64Counter
	risk        metric.Float64Histogram
	snapshots   metric.Int64Counter
}

func newInstruments(meter metric.Meter) instruments {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}
	evaluations, err := meter.Int64Counter("riskcalc_evaluations_total")
	if err != nil || evaluations == nil {
		warnInstrument("riskcalc_evaluations_total", err)
		evaluations = noop.Int64Counter{}
	}
	risk, err := meter.Float64Histogram("riskcalc_risk_percent",
		metric.WithUnit("%"),
		metric.WithExplicitBucketBoundaries(5, 10, 20, 30, 50, 75, 100),
	)
	if err != nil || risk == nil {
		warnInstrument("riskcalc_risk_percent", err)
		risk = noop.Float64Histogram{}
	}
	snapshots, err := meter.Int64Counter("riskcalc_snapshots_total")
	if err != nil || snapshots == nil {
		warnInstrument("riskcalc_snapshots_total", err)
		snapshots = noop.Int64Counter{}
	}
	return instruments{evaluations: evaluations, risk: risk, snapshots: snapshots}
}

// warnInstrument logs an instrument the meter could not create; it is
// replaced by a no-op.
func warnInstrument(name string, err error) {
	slog.Warn("metric instrument failed", "instrument", name, "err", err)
}
