package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/calculator"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/render"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/units"
	"golang.org/x/text/message"
)

const helpText = `commands:
  show                     print the current assessment
  set <field> <value>      move a slider (clamped to its range)
  nudge <field> up|down    move a slider one step
  drag <field> | release   start or end a drag
  units                    toggle US / SI units
  snapshot                 record the current risk in the history
  compare                  latch or clear the comparison baseline
  whatif [field]           risk change for 5 steps up/down
  history                  list snapshots
  reset                    restore defaults, clear history
  export                   write timeline, contribution and radar charts
  quit
fields: ` + "age race parentHist sbp waist height glucose hdl trig"

// repl executes one command line at a time against a calculator.
type repl struct {
	calc     *calculator.Calculator
	out      io.Writer
	p        *message.Printer
	chartDir string
	format   render.Format
}

// exec runs line and reports whether the session should end.
func (r *repl) exec(ctx context.Context, line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}

	switch strings.ToLower(args[0]) {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		fmt.Fprintln(r.out, helpText)
	case "show":
		r.show(r.calc.Evaluate(ctx))
	case "set":
		if len(args) != 3 {
			return false, fmt.Errorf("usage: set <field> <value>")
		}
		f, err := field.Parse(args[1])
		if err != nil {
			return false, err
		}
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return false, fmt.Errorf("value %q: %w", args[2], err)
		}
		ev, err := r.calc.Set(ctx, f, v)
		if err != nil {
			return false, err
		}
		r.show(ev)
	case "nudge":
		if len(args) != 3 {
			return false, fmt.Errorf("usage: nudge <field> up|down")
		}
		f, err := field.Parse(args[1])
		if err != nil {
			return false, err
		}
		dir, err := parseDirection(args[2])
		if err != nil {
			return false, err
		}
		ev, err := r.calc.Nudge(ctx, f, dir)
		if err != nil {
			return false, err
		}
		r.show(ev)
	case "drag":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: drag <field>")
		}
		f, err := field.Parse(args[1])
		if err != nil {
			return false, err
		}
		ev, err := r.calc.BeginDrag(ctx, f)
		if err != nil {
			return false, err
		}
		r.showWhatIf(ev, f)
	case "release":
		r.show(r.calc.EndDrag(ctx))
	case "units":
		r.show(r.calc.ToggleUnits(ctx))
	case "snapshot":
		ev := r.calc.Snapshot(ctx)
		r.p.Fprintf(r.out, "snapshot %d recorded at %.2f%%\n", len(ev.History), ev.Assessment.Percent)
	case "compare":
		ev := r.calc.ToggleComparison(ctx)
		if ev.Comparing {
			r.p.Fprintf(r.out, "baseline latched at %.2f%%\n", ev.BaselinePercent)
		} else {
			fmt.Fprintln(r.out, "comparison cleared")
		}
	case "whatif":
		ev := r.calc.Evaluate(ctx)
		if len(args) > 1 {
			f, err := field.Parse(args[1])
			if err != nil {
				return false, err
			}
			r.showWhatIf(ev, f)
			break
		}
		for _, f := range field.All() {
			r.showWhatIf(ev, f)
		}
	case "history":
		r.showHistory(r.calc.Evaluate(ctx))
	case "reset":
		r.show(r.calc.Reset(ctx))
	case "export":
		return false, r.export(ctx)
	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", args[0])
	}
	return false, nil
}

func parseDirection(s string) (int, error) {
	switch strings.ToLower(s) {
	case "up", "+", "+1", "1":
		return 1, nil
	case "down", "-", "-1":
		return -1, nil
	}
	return 0, fmt.Errorf("direction %q: want up or down", s)
}

// #region output

func (r *repl) show(ev calculator.Evaluation) {
	a := ev.Assessment
	r.p.Fprintf(r.out, "risk %.2f%% (%s) | units %s\n", a.Percent, a.Level, ev.Mode)
	if ev.Comparing {
		r.p.Fprintf(r.out, "  vs baseline %.2f%%: %+.2f points\n", ev.BaselinePercent, ev.ComparisonDelta)
	}
	for _, f := range field.All() {
		rng := r.calc.Range(f)
		mark := " "
		if a.Elevation.Has(f) {
			mark = "!"
		}
		val := strconv.FormatFloat(ev.Raw[f], 'f', units.Decimals(rng.Step), 64)
		r.p.Fprintf(r.out, "  %s %-18s %8s   share %5.1f%%\n", mark, f.Label(), val, a.Shares[f])
	}
	recs := make([]string, len(a.Recommendations))
	for i, rec := range a.Recommendations {
		recs[i] = string(rec)
	}
	fmt.Fprintf(r.out, "  recommendations: %s\n", strings.Join(recs, ", "))
}

func (r *repl) showWhatIf(ev calculator.Evaluation, f field.Field) {
	r.p.Fprintf(r.out, "  %-18s up %+.2f  down %+.2f\n", f.Label(), ev.WhatIf(f, 1), ev.WhatIf(f, -1))
}

func (r *repl) showHistory(ev calculator.Evaluation) {
	if len(ev.History) == 0 {
		fmt.Fprintln(r.out, render.EmptyTimelineText)
		return
	}
	for i, s := range ev.History {
		r.p.Fprintf(r.out, "  %2d  %s  %.2f%%\n", i+1, s.Timestamp.Local().Format("15:04:05"), s.RiskPercent)
	}
}

func (r *repl) export(ctx context.Context) error {
	ev := r.calc.Evaluate(ctx)
	ext := r.format.Extension()

	samples := ev.Samples()
	charts := []struct {
		name string
		draw func(io.Writer) error
	}{
		{"timeline", func(w io.Writer) error { return render.Timeline(w, r.format, samples) }},
		{"contributions", func(w io.Writer) error {
			return render.Contributions(w, r.format, ev.Assessment.Shares, ev.Assessment.Elevation)
		}},
		{"radar", func(w io.Writer) error {
			return render.Radar(w, r.format, r.calc.Radar(), render.RadarLayers{
				Ideal:    ev.Radar.Ideal,
				Current:  ev.Radar.Current,
				Baseline: ev.Radar.Baseline,
			})
		}},
	}
	for _, c := range charts {
		path := filepath.Join(r.chartDir, c.name+ext)
		if err := render.WriteFile(path, c.draw); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "wrote %s\n", path)
	}
	return nil
}

// #endregion output
