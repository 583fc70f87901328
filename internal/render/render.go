package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format selects the chart output encoding.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ParseFormat accepts "svg" or "png", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case SVG:
		return SVG, nil
	case PNG:
		return PNG, nil
	}
	return "", fmt.Errorf("unknown chart format %q", s)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) provider() chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}
	return chart.SVG
}

// palette
var (
	colorRisk      = drawing.ColorFromHex("2563eb")
	colorReference = drawing.ColorFromHex("dc2626")
	colorIdeal     = drawing.ColorFromHex("16a34a")
	colorBaseline  = drawing.ColorFromHex("9333ea")
	colorNormal    = drawing.ColorFromHex("64748b")
	colorGrid      = drawing.ColorFromHex("cbd5e1")
	colorText      = drawing.ColorFromHex("1e293b")
)

// pointStyle renders dots with no connecting stroke.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    4,
		DotColor:    col,
	}
}

// WriteFile renders into path via draw.
func WriteFile(path string, draw func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := draw(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}
