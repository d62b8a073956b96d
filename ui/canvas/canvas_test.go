package canvas

import (
	"math"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-chart/internal/chart"
	"smart-chart/pkg/colorutil"
	"smart-chart/pkg/geometry"
)

func flatChart(t *testing.T) *chart.Chart {
	t.Helper()
	c := chart.New("flat", chart.DefaultSettings())
	_, err := c.AddSeries([]geometry.Point2D{{X: 0, Y: 5}, {X: 10, Y: 5}}, "level")
	require.NoError(t, err)
	c.SetViewport(PlotArea(400, 300))
	return c
}

func TestClipSegment(t *testing.T) {
	r := geometry.NewRect(0, 0, 100, 100)

	a, b, ok := clipSegment(geometry.Point2D{X: -100, Y: 50}, geometry.Point2D{X: 500, Y: 50}, r)
	require.True(t, ok)
	assert.InDelta(t, 0, a.X, 1e-9)
	assert.InDelta(t, 100, b.X, 1e-9)

	_, _, ok = clipSegment(geometry.Point2D{X: -10, Y: -10}, geometry.Point2D{X: -1, Y: 200}, r)
	assert.False(t, ok)
	_, _, ok = clipSegment(geometry.Point2D{X: math.NaN(), Y: 0}, geometry.Point2D{X: 1, Y: 1}, r)
	assert.False(t, ok)

	a, b, ok = clipSegment(geometry.Point2D{X: 10, Y: 10}, geometry.Point2D{X: 20, Y: 30}, r)
	require.True(t, ok)
	assert.Equal(t, geometry.Point2D{X: 10, Y: 10}, a)
	assert.Equal(t, geometry.Point2D{X: 20, Y: 30}, b)
}

func TestRenderDrawsSeriesInPlotArea(t *testing.T) {
	c := flatChart(t)
	out := Render(c.Scene(), c.Mapper(), 400, 300, 1)

	// (5, 5) is the middle of the plot area.
	assert.Equal(t, colorutil.SeriesColor(0), out.RGBAAt(224, 142))
	assert.Equal(t, colorutil.White, out.RGBAAt(3, 3))
	// Frame corner.
	assert.Equal(t, colorutil.Black, out.RGBAAt(64, 28))
}

func TestRenderScalesToDevicePixels(t *testing.T) {
	c := flatChart(t)
	out := Render(c.Scene(), c.Mapper(), 800, 600, 2)
	assert.Equal(t, colorutil.SeriesColor(0), out.RGBAAt(448, 284))
}

func TestRenderLogAxisSkipsNonPositive(t *testing.T) {
	c := chart.New("log", chart.DefaultSettings())
	_, err := c.AddSeries([]geometry.Point2D{{X: 1, Y: 1}, {X: 100, Y: 2}}, "s")
	require.NoError(t, err)
	require.NoError(t, c.ApplyAxisSettings(chart.AxisSettings{
		XScale: chart.ScaleLog, XRange: geometry.NewRange(1, 100),
		YScale: chart.ScaleLinear, YRange: geometry.NewRange(0, 3),
	}))
	c.SetViewport(PlotArea(400, 300))
	assert.NotPanics(t, func() { Render(c.Scene(), c.Mapper(), 400, 300, 1) })
}

func TestCanvasRoutesMouseInput(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	c := flatChart(t)
	cc := NewChartCanvas(c, nil)
	cc.Resize(fyne.NewSize(400, 300))

	c.SetTool(chart.ToolAuxVertical)
	at := fyne.NewPos(224, 142)
	cc.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: at}, Button: desktop.MouseButtonPrimary})
	cc.MouseUp(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: at}, Button: desktop.MouseButtonPrimary})
	lines := c.AuxLines.All()
	require.Len(t, lines, 1)
	assert.InDelta(t, 5, lines[0].Value, 1e-9)

	var menu *chart.ContextMenu
	cc.OnContextMenu(func(m *chart.ContextMenu, _ fyne.Position) { menu = m })
	cc.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: at}, Button: desktop.MouseButtonSecondary})
	require.NotNil(t, menu)
	assert.Equal(t, chart.TargetAuxLine, menu.Target)

	var readout string
	cc.OnReadout(func(s string) { readout = s })
	c.SetTool(chart.ToolNone)
	cc.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(64, 142)}})
	assert.Equal(t, "(0.00, 5.00)", readout)
}

func TestCanvasWheelZooms(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	c := flatChart(t)
	cc := NewChartCanvas(c, nil)
	cc.Resize(fyne.NewSize(400, 300))

	cc.Scrolled(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(224, 142)}, Scrolled: fyne.NewDelta(0, 1)})
	assert.InDelta(t, 5, c.XRange().Span(), 1e-9)
	assert.InDelta(t, 5, c.XRange().Mid(), 1e-9)
}
