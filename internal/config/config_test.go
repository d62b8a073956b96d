package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-chart/internal/chart"
)

func TestDefaultMatchesEngine(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, chart.DefaultSettings(), cfg.ChartSettings())
	assert.Equal(t, 5*time.Second, cfg.Status.TTL)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	body := `
plot: nichols
chart:
  cursor_tolerance: 0.1
  measure_type: vertical
  limit_cursor_to_series: true
sync:
  y: true
status:
  ttl: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nichols", cfg.Plot)
	assert.Equal(t, 2*time.Second, cfg.Status.TTL)

	s := cfg.ChartSettings()
	assert.Equal(t, 0.1, s.CursorTolerance)
	assert.Equal(t, 0.08, s.AuxLineThreshold)
	assert.Equal(t, chart.MeasureVertical, s.DefaultMeasureType)
	assert.True(t, s.LimitCursorToSeries)
	assert.True(t, s.SyncX)
	assert.True(t, s.SyncY)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"plot":    "plot: polar\n",
		"tol":     "chart:\n  aux_line_threshold: 0\n",
		"zoom":    "chart:\n  zoom_factor: 0.5\n",
		"measure": "chart:\n  measure_type: diagonal\n",
		"yaml":    "chart: [\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name+".yml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		cfg, err := Load(path)
		assert.Error(t, err, name)
		assert.Equal(t, Default(), cfg, name)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yml")
	cfg := Default()
	cfg.Plot = "nichols"
	cfg.Export.Format = "svg"
	cfg.Chart.ShadowSamples = 250
	require.NoError(t, cfg.Save(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
