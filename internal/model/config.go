package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
)

// #region config-loader
// LoadConfig reads a JSON config file layered over DefaultConfig, so a file
// only needs the tables it overrides.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig layers JSON data over DefaultConfig and validates the result.
// Empty data yields the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(data) > 0 {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every range is well formed.
func (c Config) Validate() error {
	for i := range c.Ranges.US {
		for _, r := range []Range{c.Ranges.US[i], c.Ranges.SI[i]} {
			if r.Max <= r.Min {
				return fmt.Errorf("range %s: max %.4f must exceed min %.4f", field.Field(i), r.Max, r.Min)
			}
			if r.Step <= 0 {
				return fmt.Errorf("range %s: step must be positive", field.Field(i))
			}
		}
	}
	if c.WhatIfSteps <= 0 {
		return fmt.Errorf("what_if_steps must be positive")
	}
	return nil
}

// #endregion config-loader
