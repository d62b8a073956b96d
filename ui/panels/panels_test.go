package panels

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-chart/internal/app"
	"smart-chart/internal/chart"
	"smart-chart/internal/config"
	"smart-chart/internal/freqresp"
	"smart-chart/pkg/geometry"
)

func loop(t *testing.T) *freqresp.Response {
	t.Helper()
	r, err := freqresp.New("loop",
		[]float64{1, 2, 4, 8},
		[]float64{20, 6, -6, -20},
		[]float64{-90, -120, -200, -250})
	require.NoError(t, err)
	return r
}

func TestOverlayRows(t *testing.T) {
	c := chart.New("c", chart.DefaultSettings())
	id, err := c.AddSeries([]geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 10}}, "ramp")
	require.NoError(t, err)
	_, err = c.Cursors.Add(id, 4)
	require.NoError(t, err)
	_, err = c.AuxLines.Add(chart.Vertical, 2)
	require.NoError(t, err)
	_, err = c.Measures.Click(geometry.Point2D{X: 1, Y: 1})
	require.NoError(t, err)
	_, err = c.Measures.Click(geometry.Point2D{X: 4, Y: 5})
	require.NoError(t, err)

	rows := OverlayRows(c)
	require.Len(t, rows, 3)
	assert.Equal(t, "cursor", rows[0].Kind)
	assert.Equal(t, "Cursor 1 (4, 4)", rows[0].Text)
	assert.Equal(t, "measurement", rows[1].Kind)
	assert.Contains(t, rows[1].Text, "Point to Point Dis:5.000")
	assert.Equal(t, "line", rows[2].Kind)
	assert.Equal(t, "Vertical line 1 at 2", rows[2].Text)
}

func TestDeleteAction(t *testing.T) {
	assert.Equal(t, chart.ActionCursorDelete, DeleteAction(Row{Kind: "cursor"}))
	assert.Equal(t, chart.ActionMeasureDelete, DeleteAction(Row{Kind: "measurement"}))
	assert.Equal(t, chart.ActionAuxDelete, DeleteAction(Row{Kind: "line"}))
}

func TestResponseSummary(t *testing.T) {
	assert.Equal(t, []string{"No response loaded"}, ResponseSummary(nil))

	lines := ResponseSummary(loop(t))
	assert.Equal(t, []string{
		"Name: loop",
		"Samples: 4",
		"Frequency: 1 to 8 Hz",
		"Gain margin: 3.00 dB at 3.5 Hz",
		"Phase margin: 20.00 deg at 3 Hz",
	}, lines)
}

func TestSidePanelDeletesSelected(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	state := app.NewState(config.Default())
	defer state.Close()
	require.NoError(t, state.SetResponse(loop(t)))
	_, err := state.Sub.AuxLines.Add(chart.Horizontal, -180)
	require.NoError(t, err)

	sp := NewSidePanel(state)
	changed := 0
	sp.OnChanged(func() {
		changed++
		sp.Refresh()
	})
	sp.Refresh()
	require.Len(t, sp.Rows(), 1)
	assert.Equal(t, "Bode Phase", sp.Rows()[0].Chart)
	assert.Contains(t, sp.summary.Text, "Gain margin: 3.00 dB")

	sp.list.Select(0)
	sp.onDelete()
	assert.Equal(t, 1, changed)
	assert.Empty(t, sp.Rows())
	assert.Empty(t, state.Sub.AuxLines.All())
}
