package render

import (
	"io"
	"math"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/geometry"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// RadarLayers are the polygons overlaid on the radar grid. Baseline may be
// nil.
type RadarLayers struct {
	Ideal    []geometry.Point
	Current  []geometry.Point
	Baseline []geometry.Point
}

// RadarGridLevels is the number of concentric grid rings.
const RadarGridLevels = 4

const radarMargin = 40

// Radar draws the grid, spokes, axis labels and layers of radar onto a
// canvas sized to its frame.
func Radar(w io.Writer, format Format, radar *geometry.Radar, layers RadarLayers) error {
	frame := radar.Frame()
	width := int(math.Ceil(2*frame.CX)) + radarMargin
	height := int(math.Ceil(2*frame.CY)) + radarMargin

	r, err := format.provider()(width, height)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFont(font)

	off := geometry.Point{X: radarMargin / 2, Y: radarMargin / 2}

	for _, ring := range radar.GridRings(RadarGridLevels) {
		drawPolygon(r, ring, off, chart.Style{StrokeColor: colorGrid, StrokeWidth: 1})
	}

	spokes := radar.Spokes()
	centre := geometry.Point{X: frame.CX, Y: frame.CY}
	r.SetFontSize(9)
	r.SetFontColor(colorText)
	for i, end := range spokes {
		r.SetStrokeColor(colorGrid)
		r.SetStrokeWidth(1)
		r.MoveTo(px(centre.X+off.X), px(centre.Y+off.Y))
		r.LineTo(px(end.X+off.X), px(end.Y+off.Y))
		r.Stroke()

		label := geometry.RadarAxes[i].Label()
		box := r.MeasureText(label)
		lx := centre.X + (end.X-centre.X)*1.12 + off.X - float64(box.Width())/2
		ly := centre.Y + (end.Y-centre.Y)*1.12 + off.Y + float64(box.Height())/2
		r.Text(label, px(lx), px(ly))
	}

	drawPolygon(r, layers.Ideal, off, chart.Style{
		StrokeColor:     colorIdeal,
		StrokeWidth:     1.5,
		StrokeDashArray: []float64{4, 3},
		FillColor:       colorIdeal.WithAlpha(32),
	})
	if layers.Baseline != nil {
		drawPolygon(r, layers.Baseline, off, chart.Style{
			StrokeColor: colorBaseline,
			StrokeWidth: 1.5,
			FillColor:   colorBaseline.WithAlpha(40),
		})
	}
	drawPolygon(r, layers.Current, off, chart.Style{
		StrokeColor: colorRisk,
		StrokeWidth: 2,
		FillColor:   colorRisk.WithAlpha(64),
	})

	return r.Save(w)
}

func drawPolygon(r chart.Renderer, pts []geometry.Point, off geometry.Point, style chart.Style) {
	if len(pts) < 3 {
		return
	}
	r.SetStrokeColor(style.StrokeColor)
	r.SetStrokeWidth(style.StrokeWidth)
	r.SetStrokeDashArray(style.StrokeDashArray)
	r.SetFillColor(style.FillColor)

	r.MoveTo(px(pts[0].X+off.X), px(pts[0].Y+off.Y))
	for _, p := range pts[1:] {
		r.LineTo(px(p.X+off.X), px(p.Y+off.Y))
	}
	r.Close()
	if style.FillColor == (drawing.Color{}) {
		r.Stroke()
	} else {
		r.FillStroke()
	}
	r.SetStrokeDashArray(nil)
}

func px(v float64) int {
	return int(math.Round(v))
}
