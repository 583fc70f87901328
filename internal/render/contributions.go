package render

import (
	"io"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/model"
	"github.com/wcharczuk/go-chart/v2"
)

// Contributions renders each factor's share of the total absolute
// contribution as a bar. Elevated factors are drawn in red.
func Contributions(w io.Writer, format Format, shares field.Record, elevation model.Elevation) error {
	bars := make([]chart.Value, 0, field.Count)
	for _, f := range field.All() {
		col := colorNormal
		if elevation.Has(f) {
			col = colorReference
		}
		bars = append(bars, chart.Value{
			Label: f.String(),
			Value: shares[f],
			Style: chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1},
		})
	}

	bc := chart.BarChart{
		Title:      "Contribution share (%)",
		Width:      720,
		Height:     300,
		BarWidth:   56,
		BarSpacing: 20,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
			Ticks: []chart.Tick{{Value: 0, Label: "0"}, {Value: 25, Label: "25"}, {Value: 50, Label: "50"}, {Value: 75, Label: "75"}, {Value: 100, Label: "100"}},
		},
		Bars: bars,
	}
	return bc.Render(format.provider(), w)
}
