package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/calculator"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/logging"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/model"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/units"
)

// #region types

// Action names a scripted interaction.
type Action string

const (
	ActionSet       Action = "set"
	ActionNudge     Action = "nudge"
	ActionDragStart Action = "drag_start"
	ActionDragEnd   Action = "drag_end"
	ActionUnits     Action = "units"
	ActionSnapshot  Action = "snapshot"
	ActionCompare   Action = "compare"
	ActionReset     Action = "reset"
	ActionLoad      Action = "load" // switch to Mode and set every field in Values
)

// DefaultTolerance is the accepted risk difference in percentage points.
const DefaultTolerance = 0.01

// Step is one scripted interaction plus its optional expectations.
type Step struct {
	StepID    string             `json:"step_id"`
	Action    Action             `json:"action"`
	Field     field.Field        `json:"field,omitempty"`
	Value     float64            `json:"value,omitempty"`
	Direction int                `json:"direction,omitempty"`
	Mode      *units.Mode        `json:"mode,omitempty"`
	Values    map[string]float64 `json:"values,omitempty"`

	ExpectRisk  *float64 `json:"expect_risk,omitempty"`
	ExpectLevel string   `json:"expect_level,omitempty"`
}

// ReplayConfig bundles the model config, starting mode and tolerance.
type ReplayConfig struct {
	Model     model.Config
	StartMode units.Mode
	Tolerance float64
}

// DefaultReplayConfig uses the production model in US units.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{Model: model.DefaultConfig(), StartMode: units.US, Tolerance: DefaultTolerance}
}

// ReplayResult captures the outcome of one step.
type ReplayResult struct {
	StepID string
	Action Action
	Reason string // set when the step failed or an expectation missed

	Mode            units.Mode
	RiskPercent     float64
	Level           model.Level
	HistoryLen      int
	Comparing       bool
	ComparisonDelta float64

	Checked bool // the step carried an expectation
	Match   bool
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalSteps int
	Checked    int
	Matches    int
	Mismatches int
	Errors     int
	FinalRisk  float64
}

// #endregion types

// #region replay

// Replay runs steps through a fresh calculator, in order.
func Replay(ctx context.Context, steps []Step, config ReplayConfig) ([]ReplayResult, error) {
	cfg := config.Model
	calc, err := calculator.New(calculator.Options{Config: &cfg, Mode: config.StartMode})
	if err != nil {
		return nil, err
	}
	tol := config.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}

	results := make([]ReplayResult, 0, len(steps))
	for i, step := range steps {
		id := step.StepID
		if id == "" {
			id = fmt.Sprintf("step-%d", i+1)
		}

		ev, err := apply(ctx, calc, step)
		if err != nil {
			results = append(results, ReplayResult{StepID: id, Action: step.Action, Reason: err.Error()})
			continue
		}

		r := ReplayResult{
			StepID:          id,
			Action:          step.Action,
			Mode:            ev.Mode,
			RiskPercent:     ev.Assessment.Percent,
			Level:           ev.Assessment.Level,
			HistoryLen:      len(ev.History),
			Comparing:       ev.Comparing,
			ComparisonDelta: ev.ComparisonDelta,
			Match:           true,
		}
		if step.ExpectRisk != nil {
			r.Checked = true
			if math.Abs(r.RiskPercent-*step.ExpectRisk) > tol {
				r.Match = false
				r.Reason = fmt.Sprintf("risk %.4f, expected %.4f ± %.4f", r.RiskPercent, *step.ExpectRisk, tol)
			}
		}
		if step.ExpectLevel != "" {
			r.Checked = true
			if string(r.Level) != step.ExpectLevel {
				r.Match = false
				r.Reason = fmt.Sprintf("level %s, expected %s", r.Level, step.ExpectLevel)
			}
		}
		results = append(results, r)
	}
	return results, nil
}

func apply(ctx context.Context, calc *calculator.Calculator, step Step) (calculator.Evaluation, error) {
	switch step.Action {
	case ActionSet:
		return calc.Set(ctx, step.Field, step.Value)
	case ActionNudge:
		return calc.Nudge(ctx, step.Field, step.Direction)
	case ActionDragStart:
		return calc.BeginDrag(ctx, step.Field)
	case ActionDragEnd:
		return calc.EndDrag(ctx), nil
	case ActionUnits:
		return calc.ToggleUnits(ctx), nil
	case ActionSnapshot:
		return calc.Snapshot(ctx), nil
	case ActionCompare:
		return calc.ToggleComparison(ctx), nil
	case ActionReset:
		return calc.Reset(ctx), nil
	case ActionLoad:
		return load(ctx, calc, step)
	}
	return calculator.Evaluation{}, fmt.Errorf("unknown action %q", step.Action)
}

func load(ctx context.Context, calc *calculator.Calculator, step Step) (calculator.Evaluation, error) {
	if step.Mode != nil && *step.Mode != calc.Mode() {
		calc.ToggleUnits(ctx)
	}
	for key := range step.Values {
		if _, err := field.Parse(key); err != nil {
			return calculator.Evaluation{}, fmt.Errorf("load: %w", err)
		}
	}
	ev := calc.Evaluate(ctx)
	for _, f := range field.All() {
		v, ok := step.Values[f.String()]
		if !ok {
			continue
		}
		var err error
		if ev, err = calc.Set(ctx, f, v); err != nil {
			return ev, err
		}
	}
	return ev, nil
}

// #endregion replay

// #region summarize

// Summarize aggregates replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{TotalSteps: len(results)}
	for _, r := range results {
		if r.Reason != "" && !r.Checked {
			s.Errors++
			continue
		}
		if r.Checked {
			s.Checked++
			if r.Match {
				s.Matches++
			} else {
				s.Mismatches++
			}
		}
	}
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].Reason == "" || results[i].Checked {
			s.FinalRisk = results[i].RiskPercent
			break
		}
	}
	return s
}

// #endregion summarize

// #region journal-steps

// StepsFromEvents rebuilds a replay script from journaled events, oldest
// first. Each event becomes a load of its recorded inputs expected to
// reproduce its recorded risk.
func StepsFromEvents(events []logging.EventEntry) ([]Step, error) {
	steps := make([]Step, 0, len(events))
	for i, e := range events {
		var sig logging.EventSignals
		if err := json.Unmarshal([]byte(e.SignalsJSON), &sig); err != nil {
			return nil, fmt.Errorf("event %d signals: %w", i, err)
		}
		mode, err := units.ParseMode(e.Mode)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		risk := e.RiskPercent
		steps = append(steps, Step{
			StepID:      fmt.Sprintf("%s-%d", e.Trigger, i+1),
			Action:      ActionLoad,
			Mode:        &mode,
			Values:      sig.Raw,
			ExpectRisk:  &risk,
			ExpectLevel: sig.Level,
		})
	}
	return steps, nil
}

// #endregion journal-steps
