package render

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/geometry"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/model"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// #region helpers
func testRadar(t *testing.T) *geometry.Radar {
	t.Helper()
	cfg := model.DefaultConfig()
	var bounds [field.Count]geometry.Bounds
	for _, f := range field.All() {
		bounds[f] = geometry.Bounds{Min: cfg.Ranges.SI[f].Min, Max: cfg.Ranges.SI[f].Max}
	}
	return geometry.NewRadar(bounds, cfg.Coefficients.Means, geometry.DefaultRadarFrame())
}

func samples(percents ...float64) []geometry.Sample {
	out := make([]geometry.Sample, len(percents))
	for i, p := range percents {
		out[i] = geometry.Sample{Index: i, Percent: p}
	}
	return out
}

// #endregion helpers

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("PNG"); err != nil || f != PNG {
		t.Fatalf("expected png, got %v %v", f, err)
	}
	if f, _ := ParseFormat("svg"); f.Extension() != ".svg" {
		t.Fatalf("expected .svg, got %s", f.Extension())
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Fatal("expected error for gif")
	}
}

// #region timeline-tests
func TestTimelineEmptySVG(t *testing.T) {
	var buf bytes.Buffer
	if err := Timeline(&buf, SVG, nil); err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, EmptyTimelineText) {
		t.Fatalf("expected empty-state svg, got %d bytes", len(out))
	}
}

func TestTimelineSinglePoint(t *testing.T) {
	var buf bytes.Buffer
	if err := Timeline(&buf, SVG, samples(12.5)); err != nil {
		t.Fatalf("Timeline single point: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Fatal("expected svg output")
	}

	buf.Reset()
	if err := Timeline(&buf, PNG, samples(61)); err != nil {
		t.Fatalf("Timeline single point png: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatal("expected PNG signature")
	}
}

func TestTimelineManyPointsPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Timeline(&buf, PNG, samples(4, 8, 15, 22, 61)); err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatal("expected PNG signature")
	}
}

// #endregion timeline-tests

// #region contribution-tests
func TestContributionsSVG(t *testing.T) {
	var shares field.Record
	shares[field.Glucose] = 60
	shares[field.Waist] = 25
	shares[field.Height] = 15

	var buf bytes.Buffer
	err := Contributions(&buf, SVG, shares, model.Elevation{Fields: []field.Field{field.Glucose}})
	if err != nil {
		t.Fatalf("Contributions: %v", err)
	}
	if !strings.Contains(buf.String(), "glucose") {
		t.Fatal("expected glucose bar label")
	}
}

func TestContributionsAllZero(t *testing.T) {
	var buf bytes.Buffer
	if err := Contributions(&buf, SVG, field.Record{}, model.Elevation{}); err != nil {
		t.Fatalf("Contributions with zero shares: %v", err)
	}
}

// #endregion contribution-tests

// #region radar-tests
func TestRadarWritesFiles(t *testing.T) {
	radar := testRadar(t)
	cfg := model.DefaultConfig()
	si := cfg.Coefficients.Means.With(field.Glucose, 7.5).With(field.HDL, 0.9)
	layers := RadarLayers{
		Ideal:    radar.IdealPolygon(),
		Current:  radar.Polygon(si),
		Baseline: radar.Polygon(cfg.Coefficients.Means),
	}

	dir := t.TempDir()
	for _, format := range []Format{SVG, PNG} {
		path := filepath.Join(dir, "radar"+format.Extension())
		err := WriteFile(path, func(w io.Writer) error { return Radar(w, format, radar, layers) })
		if err != nil {
			t.Fatalf("WriteFile %s: %v", format, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if len(data) == 0 {
			t.Fatalf("%s is empty", path)
		}
		if format == PNG && !bytes.HasPrefix(data, pngMagic) {
			t.Fatal("expected PNG signature")
		}
		if format == SVG && !strings.Contains(string(data), "Fasting glucose") {
			t.Fatal("expected axis label in svg")
		}
	}
}

func TestWriteFileBadPath(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "x.svg"), func(w io.Writer) error { return nil })
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

// #endregion radar-tests
