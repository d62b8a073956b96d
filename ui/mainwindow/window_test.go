package mainwindow

import (
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-chart/internal/app"
	"smart-chart/internal/chart"
	"smart-chart/internal/config"
	"smart-chart/pkg/geometry"
	"smart-chart/ui/prefs"
)

const loopCSV = `frequency,magnitude,phase
1,20,-90
2,6,-120
4,-6,-200
8,-20,-250
`

func newTestWindow(t *testing.T) (*MainWindow, *app.State, string) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	dir := t.TempDir()
	state := app.NewState(config.Default())
	t.Cleanup(state.Close)
	mw := New(a, state, prefs.LoadFrom(filepath.Join(dir, "prefs.json")))
	return mw, state, dir
}

func TestMenuActionsOnChartArea(t *testing.T) {
	c := chart.New("c", chart.DefaultSettings())
	ids := menuActions(c, &chart.ContextMenu{Target: chart.TargetChart, Actions: []chart.ActionID{chart.ActionReset}})
	assert.Equal(t, chart.ActionReset, ids[0])
	assert.Contains(t, ids, chart.ActionCursorAdd)
	assert.Contains(t, ids, app.ActionGainMargin)
}

func TestMenuActionsDropExtendWithoutSubChart(t *testing.T) {
	c := chart.New("c", chart.DefaultSettings())
	m := &chart.ContextMenu{
		Target:  chart.TargetCursor,
		ID:      1,
		Actions: []chart.ActionID{chart.ActionCursorExtend, chart.ActionCursorHide},
	}
	assert.Equal(t, []chart.ActionID{chart.ActionCursorHide}, menuActions(c, m))

	sub := chart.New("sub", chart.DefaultSettings())
	require.NoError(t, c.AttachSubChart(sub))
	assert.Equal(t, []chart.ActionID{chart.ActionCursorExtend, chart.ActionCursorHide}, menuActions(c, m))
}

func TestActionArgs(t *testing.T) {
	m := &chart.ContextMenu{ID: 7, At: geometry.Point2D{X: 2, Y: 3}}

	a := actionArgs(chart.ActionCursorAdd, m, 4, 5)
	assert.Equal(t, 4, a.SeriesID)
	assert.Equal(t, 2.0, a.Value)

	a = actionArgs(chart.ActionCursorExtend, m, 4, 5)
	assert.Equal(t, 7, a.ID)
	assert.Equal(t, 5, a.SeriesID)

	a = actionArgs(chart.ActionAuxShowAll, m, 4, 5)
	assert.Equal(t, 4, a.SeriesID)

	assert.Equal(t, 3.0, actionArgs(chart.ActionAuxAddHorizontal, m, 0, 0).Value)
	assert.Equal(t, 2.0, actionArgs(chart.ActionAuxAddVertical, m, 0, 0).Value)
	assert.Equal(t, m.At, actionArgs(chart.ActionZoomIn, m, 0, 0).Point)
}

func TestPromptFor(t *testing.T) {
	assert.Equal(t, promptValue, promptFor(chart.ActionAuxMove))
	assert.Equal(t, promptColor, promptFor(chart.ActionMeasureColor))
	assert.Equal(t, promptFile, promptFor(chart.ActionExportSeries))
	assert.Equal(t, promptNone, promptFor(chart.ActionAuxDelete))
}

func TestParseTool(t *testing.T) {
	for _, tool := range toolChoices {
		assert.Equal(t, tool, parseTool(tool.String()))
	}
	assert.Equal(t, chart.ToolNone, parseTool("bogus"))
}

func TestWindowFollowsLayout(t *testing.T) {
	mw, state, _ := newTestWindow(t)
	require.NotNil(t, mw.sub)
	assert.Same(t, state.Primary, mw.primary.Chart())
	assert.Same(t, state.Sub, mw.sub.Chart())
	assert.True(t, mw.bodeItem.Checked)

	mw.onPlotType(app.PlotNichols)
	assert.Nil(t, mw.sub)
	assert.Same(t, state.Primary, mw.primary.Chart())
	assert.True(t, mw.nichItem.Checked)
	assert.False(t, mw.gridItem.Disabled)
}

func TestToolSelectionReachesEveryChart(t *testing.T) {
	mw, state, _ := newTestWindow(t)
	mw.toolSelect.SetSelected(chart.ToolMeasure.String())
	for _, c := range state.Charts() {
		assert.Equal(t, chart.ToolMeasure, c.Tool())
	}

	mw.onPlotType(app.PlotNichols)
	assert.Equal(t, chart.ToolMeasure, state.Primary.Tool())
}

func TestLoadResponseAndMargin(t *testing.T) {
	mw, state, dir := newTestWindow(t)
	path := filepath.Join(dir, "loop.csv")
	require.NoError(t, os.WriteFile(path, []byte(loopCSV), 0o644))

	require.NoError(t, mw.OpenResponse(path))
	assert.Equal(t, "Smart Chart - loop.csv", mw.Title())
	assert.Equal(t, path, mw.prefs.LastResponse())

	mw.dispatch(state.Commands, app.ActionGainMargin, chart.ActionArgs{})
	assert.Len(t, state.Primary.AuxLines.All(), 1)
	assert.Contains(t, mw.statusBar.Text, "Gain margin")
}

func TestStatusBarFollowsStatus(t *testing.T) {
	mw, state, _ := newTestWindow(t)
	state.Status.Show("hello %d", 1)
	assert.Equal(t, "hello 1", mw.statusBar.Text)
	state.Status.Clear()
	assert.Equal(t, "Ready", mw.statusBar.Text)
}
