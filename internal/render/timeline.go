package render

import (
	"fmt"
	"io"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/geometry"
	"github.com/wcharczuk/go-chart/v2"
)

// EmptyTimelineText is drawn when there are no snapshots.
const EmptyTimelineText = "No snapshots yet"

// Timeline renders the risk history with a 10% reference line. One sample
// is drawn as a centred dot, two or more as a filled line.
func Timeline(w io.Writer, format Format, samples []geometry.Sample) error {
	plot := geometry.DefaultPlot()
	if len(samples) == 0 {
		return emptyCanvas(w, format, int(plot.Width), int(plot.Height), EmptyTimelineText)
	}

	layout := geometry.Layout(samples, plot)
	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = float64(i)
		ys[i] = s.Percent
	}

	xRange := &chart.ContinuousRange{Min: 0, Max: float64(len(samples) - 1)}
	var risk chart.ContinuousSeries
	if len(samples) == 1 {
		// go-chart needs two x values; pad the dot and centre it in [-1, 1]
		xRange = &chart.ContinuousRange{Min: -1, Max: 1}
		risk = chart.ContinuousSeries{
			Name:    "Risk",
			XValues: []float64{-0.001, 0.001},
			YValues: []float64{ys[0], ys[0]},
			Style:   pointStyle(colorRisk),
		}
	} else {
		risk = chart.ContinuousSeries{
			Name:    "Risk",
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: colorRisk,
				StrokeWidth: 2,
				FillColor:   colorRisk.WithAlpha(48),
				DotWidth:    3,
				DotColor:    colorRisk,
			},
		}
	}

	reference := chart.ContinuousSeries{
		Name:    fmt.Sprintf("%.0f%%", geometry.ReferencePercent),
		XValues: []float64{xRange.Min, xRange.Max},
		YValues: []float64{geometry.ReferencePercent, geometry.ReferencePercent},
		Style: chart.Style{
			StrokeColor:     colorReference,
			StrokeWidth:     1,
			StrokeDashArray: []float64{5, 5},
		},
	}

	yTicks := make([]chart.Tick, 0, len(layout.YTicks))
	for _, t := range layout.YTicks {
		yTicks = append(yTicks, chart.Tick{Value: t.Percent, Label: fmt.Sprintf("%.0f%%", t.Percent)})
	}
	xTicks := make([]chart.Tick, 0, len(samples)+2)
	for i := range samples {
		xTicks = append(xTicks, chart.Tick{Value: float64(i), Label: fmt.Sprintf("%d", i+1)})
	}
	if len(samples) == 1 {
		// custom ticks override XAxis.Range, so they must span it too
		xTicks = []chart.Tick{{Value: -1}, xTicks[0], {Value: 1}}
	}

	ch := chart.Chart{
		Title:  "Risk history",
		Width:  int(plot.Width),
		Height: int(plot.Height),
		Background: chart.Style{Padding: chart.Box{
			Top:    int(plot.Top) + 24,
			Left:   int(plot.Left),
			Right:  int(plot.Right),
			Bottom: int(plot.Bottom),
		}},
		XAxis:  chart.XAxis{Name: "Snapshot", Range: xRange, Ticks: xTicks},
		YAxis:  chart.YAxis{Name: "%", Range: &chart.ContinuousRange{Min: 0, Max: layout.YMax}, Ticks: yTicks},
		Series: []chart.Series{reference, risk},
	}
	return ch.Render(format.provider(), w)
}

// emptyCanvas draws a blank canvas with a centred message.
func emptyCanvas(w io.Writer, format Format, width, height int, msg string) error {
	r, err := format.provider()(width, height)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFont(font)
	r.SetFontSize(14)
	r.SetFontColor(colorNormal)
	box := r.MeasureText(msg)
	r.Text(msg, (width-box.Width())/2, (height+box.Height())/2)
	return r.Save(w)
}
