package geometry

import (
	"math"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
)

// #region types
// Point is a Cartesian coordinate in chart space (y grows downwards).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is the SI value range an axis is normalized against.
type Bounds struct {
	Min float64
	Max float64
}

// Frame places a radar chart: centre and outer radius in chart units.
type Frame struct {
	CX     float64
	CY     float64
	Radius float64
}

// DefaultRadarFrame fits the radar in a 300×300 box.
func DefaultRadarFrame() Frame {
	return Frame{CX: 150, CY: 150, Radius: 110}
}

// #endregion types

// #region axes
// RadarAxes is the fixed axis order, clockwise from the top.
var RadarAxes = [6]field.Field{
	field.Glucose,
	field.SBP,
	field.Trig,
	field.Waist,
	field.HDL,
	field.Age,
}

// inverted axes are protective: a higher value is better, so the ratio is
// flipped to keep "larger polygon = worse" on every axis.
func inverted(f field.Field) bool {
	return f == field.HDL
}

// #endregion axes

// #region radar
// Radar maps SI records to radar polygon geometry. The population-mean
// polygon is computed once at construction.
type Radar struct {
	bounds [field.Count]Bounds
	frame  Frame
	ideal  [6]float64
}

// NewRadar builds a radar with per-field SI bounds and the population means
// used for the ideal polygon.
func NewRadar(bounds [field.Count]Bounds, means field.Record, frame Frame) *Radar {
	r := &Radar{bounds: bounds, frame: frame}
	r.ideal = r.Ratios(means)
	return r
}

// Frame returns the radar's placement.
func (r *Radar) Frame() Frame {
	return r.frame
}

// Ratio normalizes v on f's bounds into [0,1], inverting protective axes.
func (r *Radar) Ratio(f field.Field, v float64) float64 {
	b := r.bounds[f]
	span := b.Max - b.Min
	var ratio float64
	if span > 0 {
		ratio = (v - b.Min) / span
	}
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	if inverted(f) {
		ratio = 1 - ratio
	}
	return ratio
}

// Ratios returns the normalized value on every axis, in RadarAxes order.
func (r *Radar) Ratios(si field.Record) [6]float64 {
	var out [6]float64
	for i, f := range RadarAxes {
		out[i] = r.Ratio(f, si[f])
	}
	return out
}

// Ideal returns the population-mean ratios captured at construction.
func (r *Radar) Ideal() [6]float64 {
	return r.ideal
}

// Angle returns the angle of axis i: −90° plus equal spacing of 2π/6.
func Angle(i int) float64 {
	return -math.Pi/2 + float64(i)*2*math.Pi/float64(len(RadarAxes))
}

// Point converts (axis index, ratio) to chart coordinates.
func (r *Radar) Point(i int, ratio float64) Point {
	a := Angle(i)
	return Point{
		X: r.frame.CX + ratio*r.frame.Radius*math.Cos(a),
		Y: r.frame.CY + ratio*r.frame.Radius*math.Sin(a),
	}
}

// PolygonOf converts a ratio vector to polygon vertices.
func (r *Radar) PolygonOf(ratios [6]float64) []Point {
	pts := make([]Point, len(ratios))
	for i, ratio := range ratios {
		pts[i] = r.Point(i, ratio)
	}
	return pts
}

// Polygon maps an SI record straight to polygon vertices.
func (r *Radar) Polygon(si field.Record) []Point {
	return r.PolygonOf(r.Ratios(si))
}

// IdealPolygon returns the population-mean polygon.
func (r *Radar) IdealPolygon() []Point {
	return r.PolygonOf(r.ideal)
}

// GridRings returns `levels` concentric hexagons at ratios 1/levels … 1.
func (r *Radar) GridRings(levels int) [][]Point {
	if levels <= 0 {
		return nil
	}
	rings := make([][]Point, levels)
	for l := 1; l <= levels; l++ {
		ratio := float64(l) / float64(levels)
		var ratios [6]float64
		for i := range ratios {
			ratios[i] = ratio
		}
		rings[l-1] = r.PolygonOf(ratios)
	}
	return rings
}

// Spokes returns the outer end of each axis line.
func (r *Radar) Spokes() []Point {
	var ones [6]float64
	for i := range ones {
		ones[i] = 1
	}
	return r.PolygonOf(ones)
}

// #endregion radar
