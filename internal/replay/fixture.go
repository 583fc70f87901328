package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/model"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/units"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string          `json:"description"`
	StartMode   units.Mode      `json:"start_mode"`
	Tolerance   float64         `json:"tolerance"`
	Config      json.RawMessage `json:"config,omitempty"` // layered over model.DefaultConfig
	Steps       []Step          `json:"steps"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToReplayConfig resolves the fixture's config overrides.
func (f *Fixture) ToReplayConfig() (ReplayConfig, error) {
	cfg, err := model.ParseConfig(f.Config)
	if err != nil {
		return ReplayConfig{}, fmt.Errorf("fixture config: %w", err)
	}
	tol := f.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	return ReplayConfig{Model: cfg, StartMode: f.StartMode, Tolerance: tol}, nil
}

// #endregion fixture-loader
