package geometry

import "math"

// #region types
// Sample is one point of the risk history.
type Sample struct {
	Index   int
	Percent float64
}

// Plot is the drawable area of the timeline and its padding.
type Plot struct {
	Width  float64
	Height float64
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// DefaultPlot is a 600×240 chart with room for axis labels.
func DefaultPlot() Plot {
	return Plot{Width: 600, Height: 240, Left: 40, Right: 16, Top: 12, Bottom: 28}
}

// innerWidth and innerHeight exclude the padding.
func (p Plot) innerWidth() float64  { return p.Width - p.Left - p.Right }
func (p Plot) innerHeight() float64 { return p.Height - p.Top - p.Bottom }

// MinYMax keeps the 10% reference line well inside the chart.
const MinYMax = 50.0

// ReferencePercent is the fixed reference line.
const ReferencePercent = 10.0

// Timeline is the resolved geometry of a history chart.
type Timeline struct {
	Empty     bool
	YMax      float64
	Points    []Point
	ShowLine  bool
	Area      []Point // closed polygon under the line; nil unless ShowLine
	Reference [2]Point
	YTicks    []Tick
}

// Tick is a labelled y-axis position.
type Tick struct {
	Percent float64
	Y       float64
}

// #endregion types

// #region scale
// YMaxFor returns max(50, max observed percent).
func YMaxFor(samples []Sample) float64 {
	yMax := MinYMax
	for _, s := range samples {
		if s.Percent > yMax {
			yMax = s.Percent
		}
	}
	return yMax
}

// X maps sample position i of n onto the plot. A single sample is centred.
func (p Plot) X(i, n int) float64 {
	if n <= 1 {
		return p.Left + p.innerWidth()/2
	}
	return p.Left + float64(i)/float64(n-1)*p.innerWidth()
}

// Y maps a percentage onto the plot with 0 at the bottom and yMax at the top.
func (p Plot) Y(percent, yMax float64) float64 {
	if yMax <= 0 {
		yMax = MinYMax
	}
	return p.Top + p.innerHeight()*(1-percent/yMax)
}

// #endregion scale

// #region layout
// Layout resolves the timeline geometry for samples in order.
func Layout(samples []Sample, p Plot) Timeline {
	yMax := YMaxFor(samples)
	t := Timeline{
		YMax: yMax,
		Reference: [2]Point{
			{X: p.Left, Y: p.Y(ReferencePercent, yMax)},
			{X: p.Width - p.Right, Y: p.Y(ReferencePercent, yMax)},
		},
		YTicks: ticks(yMax, p),
	}
	if len(samples) == 0 {
		t.Empty = true
		return t
	}

	n := len(samples)
	t.Points = make([]Point, n)
	for i, s := range samples {
		t.Points[i] = Point{X: p.X(i, n), Y: p.Y(s.Percent, yMax)}
	}
	if n < 2 {
		return t
	}

	t.ShowLine = true
	base := p.Y(0, yMax)
	t.Area = make([]Point, 0, n+2)
	t.Area = append(t.Area, t.Points...)
	t.Area = append(t.Area, Point{X: t.Points[n-1].X, Y: base}, Point{X: t.Points[0].X, Y: base})
	return t
}

// ticks places labels every 10 points up to yMax.
func ticks(yMax float64, p Plot) []Tick {
	var out []Tick
	for v := 0.0; v <= math.Floor(yMax)+1e-9; v += 10 {
		out = append(out, Tick{Percent: v, Y: p.Y(v, yMax)})
	}
	return out
}

// #endregion layout
