package dialogs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-chart/internal/chart"
	"smart-chart/pkg/geometry"
)

func TestAxisFieldsRoundTrip(t *testing.T) {
	c := chart.New("mag", chart.DefaultSettings())
	c.X.Title = "Frequency (Hz)"
	f := FieldsFromChart(c)
	assert.Equal(t, "0", f.XMin)
	assert.Equal(t, "10", f.XMax)
	assert.Equal(t, "linear", f.XScale)

	s, err := f.Parse()
	require.NoError(t, err)
	assert.Equal(t, geometry.NewRange(0, 10), s.XRange)
	assert.Equal(t, "Frequency (Hz)", s.XTitle)
}

func TestAxisFieldsRejectsBadInputAtomically(t *testing.T) {
	c := chart.New("mag", chart.DefaultSettings())
	_, err := c.AddSeries([]geometry.Point2D{{X: 1, Y: 1}, {X: 10, Y: 2}}, "s")
	require.NoError(t, err)

	f := FieldsFromChart(c)
	f.XMin = "abc"
	assert.ErrorContains(t, f.Apply(c), "x min")

	f = FieldsFromChart(c)
	f.XScale = "log"
	f.XMin = "0"
	f.YMin, f.YMax = "0", "5"
	err = f.Apply(c)
	assert.ErrorIs(t, err, chart.ErrInvalidAxis)
	assert.Equal(t, chart.ScaleLinear, c.X.Scale)
	assert.Equal(t, geometry.NewRange(0, 10), c.YRange())

	f.XMin = "1"
	require.NoError(t, f.Apply(c))
	assert.Equal(t, chart.ScaleLog, c.X.Scale)
	assert.Equal(t, geometry.NewRange(0, 5), c.YRange())
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(" -6.5 ")
	require.NoError(t, err)
	assert.Equal(t, -6.5, v)
	_, err = ParseValue("six")
	assert.Error(t, err)
}

func TestSeriesOptions(t *testing.T) {
	store := chart.NewSeriesStore(0)
	a := store.Add([]geometry.Point2D{{X: 0, Y: 0}}, "mag")
	b := store.Add([]geometry.Point2D{{X: 0, Y: 0}}, "phase")
	labels, ids := SeriesOptions(store)
	require.Len(t, labels, 2)
	assert.Equal(t, a, ids[labels[0]])
	assert.Equal(t, b, ids[labels[1]])
	assert.Contains(t, labels[0], "mag  #")
}
