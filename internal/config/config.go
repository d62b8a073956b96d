// Package config loads and saves the YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"smart-chart/internal/chart"
)

// Config is the on-disk settings document.
type Config struct {
	Plot   string       `yaml:"plot"` // "bode" or "nichols"
	Chart  ChartConfig  `yaml:"chart"`
	Sync   SyncConfig   `yaml:"sync"`
	Export ExportConfig `yaml:"export"`
	Status StatusConfig `yaml:"status"`
}

// ChartConfig holds hit-test tolerances and interaction defaults.
type ChartConfig struct {
	CursorTolerance       float64 `yaml:"cursor_tolerance"`
	AuxLineThreshold      float64 `yaml:"aux_line_threshold"`
	NicholsLabelThreshold float64 `yaml:"nichols_label_threshold"`
	PointHitTolerance     float64 `yaml:"point_hit_tolerance_px"`
	MeasureHitTolerance   float64 `yaml:"measure_hit_tolerance_px"`
	ShadowSamples         int     `yaml:"shadow_samples"`
	LimitCursorToSeries   bool    `yaml:"limit_cursor_to_series"`
	ZoomFactor            float64 `yaml:"zoom_factor"`
	MeasureType           string  `yaml:"measure_type"`
	NicholsGrid           bool    `yaml:"nichols_grid"`
}

// SyncConfig selects which axes a sub-chart follows.
type SyncConfig struct {
	X bool `yaml:"x"`
	Y bool `yaml:"y"`
}

// ExportConfig holds chart export defaults.
type ExportConfig struct {
	Format   string  `yaml:"format"`
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
	Dir      string  `yaml:"dir"`
}

// StatusConfig controls transient status messages.
type StatusConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// Default returns the stock settings.
func Default() Config {
	s := chart.DefaultSettings()
	return Config{
		Plot: "bode",
		Chart: ChartConfig{
			CursorTolerance:       s.CursorTolerance,
			AuxLineThreshold:      s.AuxLineThreshold,
			NicholsLabelThreshold: s.NicholsLabelThreshold,
			PointHitTolerance:     s.PointHitTolerance,
			MeasureHitTolerance:   s.MeasureHitTolerance,
			ShadowSamples:         s.ShadowSamples,
			ZoomFactor:            s.ZoomFactor,
			MeasureType:           s.DefaultMeasureType.String(),
			NicholsGrid:           true,
		},
		Sync:   SyncConfig{X: s.SyncX, Y: s.SyncY},
		Export: ExportConfig{Format: "png", WidthIn: 8, HeightIn: 5},
		Status: StatusConfig{TTL: 5 * time.Second},
	}
}

// DefaultPath returns ~/.config/smart-chart/settings.yml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "smart-chart", "settings.yml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the settings to path, creating the directory.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects out-of-range tolerances and unknown names.
func (c Config) Validate() error {
	if c.Plot != "bode" && c.Plot != "nichols" {
		return fmt.Errorf("plot must be bode or nichols, got %q", c.Plot)
	}
	for name, v := range map[string]float64{
		"cursor_tolerance":        c.Chart.CursorTolerance,
		"aux_line_threshold":      c.Chart.AuxLineThreshold,
		"nichols_label_threshold": c.Chart.NicholsLabelThreshold,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %g", name, v)
		}
	}
	if c.Chart.ZoomFactor <= 1 {
		return fmt.Errorf("zoom_factor must be > 1, got %g", c.Chart.ZoomFactor)
	}
	if c.Chart.ShadowSamples < 0 {
		return fmt.Errorf("shadow_samples must be >= 0, got %d", c.Chart.ShadowSamples)
	}
	if _, err := chart.ParseMeasureType(c.Chart.MeasureType); err != nil {
		return err
	}
	return nil
}

// ChartSettings converts the document to engine settings.
func (c Config) ChartSettings() chart.Settings {
	s := chart.DefaultSettings()
	s.CursorTolerance = c.Chart.CursorTolerance
	s.AuxLineThreshold = c.Chart.AuxLineThreshold
	s.NicholsLabelThreshold = c.Chart.NicholsLabelThreshold
	if c.Chart.PointHitTolerance > 0 {
		s.PointHitTolerance = c.Chart.PointHitTolerance
	}
	if c.Chart.MeasureHitTolerance > 0 {
		s.MeasureHitTolerance = c.Chart.MeasureHitTolerance
	}
	s.ShadowSamples = c.Chart.ShadowSamples
	s.LimitCursorToSeries = c.Chart.LimitCursorToSeries
	s.ZoomFactor = c.Chart.ZoomFactor
	if mt, err := chart.ParseMeasureType(c.Chart.MeasureType); err == nil {
		s.DefaultMeasureType = mt
	}
	s.SyncX, s.SyncY = c.Sync.X, c.Sync.Y
	return s
}
