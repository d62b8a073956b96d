package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"smart-chart/internal/chart"
	"smart-chart/pkg/geometry"
)

func bodeChart(t *testing.T) *chart.Chart {
	t.Helper()
	c := chart.New("Bode magnitude", chart.DefaultSettings())
	_, err := c.AddSeries([]geometry.Point2D{{X: 0.1, Y: -3}, {X: 1, Y: -6}, {X: 10, Y: -40}}, "loop")
	require.NoError(t, err)
	require.NoError(t, c.ApplyAxisSettings(chart.AxisSettings{
		XScale: chart.ScaleLog, XRange: geometry.NewRange(0.1, 10), XTitle: "Frequency (Hz)",
		YScale: chart.ScaleLinear, YRange: geometry.NewRange(-45, 0), YTitle: "Magnitude (dB)",
	}))
	l, err := c.AuxLines.Add(chart.Vertical, 1)
	require.NoError(t, err)
	_, err = c.AuxLines.RevealIntersections(l.ID, 1)
	require.NoError(t, err)
	_, err = c.Measures.Click(geometry.Point2D{X: 0.2, Y: -10})
	require.NoError(t, err)
	_, err = c.Measures.Click(geometry.Point2D{X: 5, Y: -30})
	require.NoError(t, err)
	return c
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"png": FormatPNG, ".JPEG": FormatJPG, "pdf": FormatPDF, ".svg": FormatSVG} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("bmp")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = FormatFromPath("chart")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestBuildPlotKeepsWindow(t *testing.T) {
	c := bodeChart(t)
	p, err := BuildPlot(c)
	require.NoError(t, err)
	assert.Equal(t, 0.1, p.X.Min)
	assert.Equal(t, 10.0, p.X.Max)
	assert.Equal(t, -45.0, p.Y.Min)
	assert.Equal(t, "Frequency (Hz)", p.X.Label.Text)
}

func TestWriteChartFormats(t *testing.T) {
	c := bodeChart(t)
	magic := map[Format][]byte{
		FormatPNG: []byte("\x89PNG"),
		FormatJPG: {0xff, 0xd8},
		FormatPDF: []byte("%PDF"),
		FormatSVG: []byte("<?xml"),
	}
	for _, f := range Formats {
		var buf bytes.Buffer
		require.NoError(t, WriteChart(&buf, c, f, Options{}), f)
		assert.True(t, bytes.HasPrefix(buf.Bytes(), magic[f]), "%s header %q", f, buf.Bytes()[:8])
	}
	assert.ErrorIs(t, WriteChart(&bytes.Buffer{}, c, "gif", Options{}), ErrUnsupportedFormat)
}

func TestChartToFile(t *testing.T) {
	c := bodeChart(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "bode.png")
	require.NoError(t, Chart(c, path, DefaultOptions()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.ErrorIs(t, Chart(c, filepath.Join(dir, "bode.tiff"), DefaultOptions()), ErrUnsupportedFormat)
}

func TestNicholsChartExport(t *testing.T) {
	c := chart.New("Nichols", chart.DefaultSettings())
	require.NoError(t, c.SetRange(geometry.NewRange(-360, 0), geometry.NewRange(-40, 40)))
	_, err := c.AddSeries([]geometry.Point2D{{X: -90, Y: 20}, {X: -150, Y: 0}, {X: -200, Y: -20}}, "L")
	require.NoError(t, err)
	c.EnableNicholsGrid(true)

	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, c, FormatSVG, DefaultOptions()))
	assert.Greater(t, buf.Len(), 1000)
}

func TestSeriesCSVSideBySide(t *testing.T) {
	store := chart.NewSeriesStore(0)
	a := store.Add([]geometry.Point2D{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}, "mag")
	b := store.Add([]geometry.Point2D{{X: 1, Y: -90}}, "phase")

	var buf bytes.Buffer
	require.NoError(t, WriteSeriesCSV(&buf, store, []int{a, b}))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	require.Len(t, recs, 4)
	assert.Equal(t, []string{"mag index", "mag x", "mag y", "phase index", "phase x", "phase y"}, recs[0])
	assert.Equal(t, []string{"0", "1", "2", "0", "1", "-90"}, recs[1])
	assert.Equal(t, []string{"2", "5", "6", "", "", ""}, recs[3])

	assert.ErrorIs(t, WriteSeriesCSV(&buf, store, []int{9}), chart.ErrNotFound)
}

func TestSeriesFiles(t *testing.T) {
	store := chart.NewSeriesStore(0)
	store.Add([]geometry.Point2D{{X: 1, Y: 2}, {X: 3, Y: 4}}, "mag")
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "series.csv")
	require.NoError(t, Series(store, nil, csvPath))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mag index,mag x,mag y")

	xlsxPath := filepath.Join(dir, "series.xlsx")
	require.NoError(t, Series(store, nil, xlsxPath))
	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(seriesSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "mag x", v)
	v, err = f.GetCellValue(seriesSheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, "4", v)

	assert.ErrorIs(t, Series(store, nil, filepath.Join(dir, "series.ods")), ErrUnsupportedFormat)
}
