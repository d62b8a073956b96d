package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-chart/pkg/colorutil"
	"smart-chart/pkg/geometry"
)

func measure(t *testing.T, c *Chart, a, b geometry.Point2D) *Measurement {
	t.Helper()
	_, err := c.Measures.Click(a)
	require.NoError(t, err)
	m, err := c.Measures.Click(b)
	require.NoError(t, err)
	require.True(t, m.Complete())
	return m
}

func TestMeasureValue(t *testing.T) {
	a := geometry.Point2D{X: 1, Y: 2}
	b := geometry.Point2D{X: 4, Y: -2}
	assert.Equal(t, 3.0, MeasureValue(MeasureHorizontal, a, b))
	assert.Equal(t, 4.0, MeasureValue(MeasureVertical, a, b))
	assert.Equal(t, 5.0, MeasureValue(MeasurePointToPoint, a, b))
	assert.Equal(t, MeasureValue(MeasurePointToPoint, b, a), MeasureValue(MeasurePointToPoint, a, b))
}

func TestMeasurementChangeTypeKeepsValues(t *testing.T) {
	c := New("test", DefaultSettings())
	a := geometry.Point2D{X: 1.25, Y: 2.5}
	b := geometry.Point2D{X: 4.75, Y: 7.125}
	m := measure(t, c, a, b)

	p2p := math.Sqrt(3.5*3.5 + 4.625*4.625)
	assert.Equal(t, MeasurePointToPoint, m.Type)
	assert.Equal(t, p2p, m.Value)

	require.NoError(t, c.Measures.ChangeType(m.ID, MeasureHorizontal))
	assert.Equal(t, 3.5, m.Value)
	assert.Equal(t, "Horizontal Dis:3.500", m.Label)

	require.NoError(t, c.Measures.ChangeType(m.ID, MeasureVertical))
	assert.Equal(t, 4.625, m.Value)
	assert.Equal(t, "Vertical Dis:4.625", m.Label)

	require.NoError(t, c.Measures.ChangeType(m.ID, MeasurePointToPoint))
	assert.Equal(t, p2p, m.Value)

	assert.ErrorIs(t, c.Measures.ChangeType(77, MeasureVertical), ErrNotFound)
}

func TestMeasurementOrdersAnchorsByX(t *testing.T) {
	c := New("test", DefaultSettings())
	m := measure(t, c, geometry.Point2D{X: 4, Y: 6}, geometry.Point2D{X: 1, Y: 2})

	assert.Equal(t, geometry.Point2D{X: 4, Y: 6}, m.P1)
	assert.Equal(t, geometry.Point2D{X: 1, Y: 2}, m.Left)
	assert.Equal(t, geometry.Point2D{X: 4, Y: 6}, m.Right)
	assert.Equal(t, "Point to Point Dis:5.000", m.Label)

	pts, captions := m.Markers()
	assert.Equal(t, []geometry.Point2D{m.Left, m.Right}, pts)
	assert.Equal(t, []string{"(1.000,2.000)", "(4.000,6.000)"}, captions)
}

func TestMeasurementVerticalGeometry(t *testing.T) {
	s := DefaultSettings()
	s.DefaultMeasureType = MeasureVertical
	c := New("test", s)
	m := measure(t, c, geometry.Point2D{X: 1, Y: 2}, geometry.Point2D{X: 4, Y: 6})

	// The line stands at the x of the higher endpoint.
	assert.Equal(t, [2]geometry.Point2D{{X: 4, Y: 6}, {X: 4, Y: 2}}, m.Line)
	assert.Equal(t, geometry.Point2D{X: 4, Y: 4}, m.LabelAnchor)

	ids := m.AuxLineIDs()
	require.Len(t, ids, 1)
	l, ok := c.AuxLines.Get(ids[0])
	require.True(t, ok)
	assert.Equal(t, Horizontal, l.Orientation)
	assert.Equal(t, AuxMeasure, l.Mode)
	assert.Equal(t, 2.0, l.Value)
	assert.Equal(t, [2]geometry.Point2D{{X: 1, Y: 2}, {X: 4, Y: 2}}, l.Segment)
}

func TestMeasurementHorizontalGeometry(t *testing.T) {
	s := DefaultSettings()
	s.DefaultMeasureType = MeasureHorizontal
	c := New("test", s)
	m := measure(t, c, geometry.Point2D{X: 1, Y: 6}, geometry.Point2D{X: 4, Y: 2})

	assert.Equal(t, [2]geometry.Point2D{{X: 1, Y: 6}, {X: 4, Y: 6}}, m.Line)
	ids := m.AuxLineIDs()
	require.Len(t, ids, 1)
	l, _ := c.AuxLines.Get(ids[0])
	assert.Equal(t, Vertical, l.Orientation)
	assert.Equal(t, 4.0, l.Value)
	assert.Equal(t, rng(2, 6), l.Extent)
}

func TestMeasurementTieUsesRightEndpoint(t *testing.T) {
	s := DefaultSettings()
	s.DefaultMeasureType = MeasureVertical
	c := New("test", s)
	m := measure(t, c, geometry.Point2D{X: 3, Y: 5}, geometry.Point2D{X: 1, Y: 5})

	assert.Equal(t, 3.0, m.Line[0].X)
	assert.Equal(t, 0.0, m.Value)
	assert.Len(t, m.AuxLineIDs(), 1)

	require.NoError(t, c.Measures.ChangeType(m.ID, MeasureHorizontal))
	assert.Equal(t, [2]geometry.Point2D{{X: 1, Y: 5}, {X: 3, Y: 5}}, m.Line)
	assert.Empty(t, m.AuxLineIDs())
}

func TestMeasurementDegenerateStaysPending(t *testing.T) {
	c := New("test", DefaultSettings())
	a := geometry.Point2D{X: 1, Y: 1}
	_, err := c.Measures.Click(a)
	require.NoError(t, err)

	_, err = c.Measures.Click(a)
	assert.ErrorIs(t, err, ErrDegenerateMeasurement)
	require.NotNil(t, c.Measures.Pending())
	assert.Empty(t, c.Measures.All())

	m, err := c.Measures.Click(geometry.Point2D{X: 2, Y: 1})
	require.NoError(t, err)
	assert.True(t, m.Complete())
	assert.Nil(t, c.Measures.Pending())
}

func TestMeasurementCancelReleasesID(t *testing.T) {
	c := New("test", DefaultSettings())
	m, _ := c.Measures.Click(geometry.Point2D{X: 1, Y: 1})
	assert.Equal(t, 1, m.ID)
	assert.True(t, c.Measures.Cancel())
	assert.False(t, c.Measures.Cancel())

	m, _ = c.Measures.Click(geometry.Point2D{X: 2, Y: 2})
	assert.Equal(t, 1, m.ID)
}

func TestMeasurementDestroyRemovesOwnedLines(t *testing.T) {
	s := DefaultSettings()
	s.DefaultMeasureType = MeasureVertical
	c := New("test", s)
	m := measure(t, c, geometry.Point2D{X: 1, Y: 2}, geometry.Point2D{X: 4, Y: 6})
	require.Len(t, c.AuxLines.All(), 1)

	require.NoError(t, c.Measures.Destroy(m.ID))
	assert.Empty(t, c.AuxLines.All())
	assert.Empty(t, c.Measures.All())
	assert.ErrorIs(t, c.Measures.Destroy(m.ID), ErrNotFound)

	// Both id pools are free again.
	l, err := c.AuxLines.Add(Horizontal, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, l.ID)
	m2 := measure(t, c, geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 1, Y: 1})
	assert.Equal(t, 1, m2.ID)
}

func TestMeasurementChangeTypeReplacesOwnedLines(t *testing.T) {
	s := DefaultSettings()
	s.DefaultMeasureType = MeasureVertical
	c := New("test", s)
	m := measure(t, c, geometry.Point2D{X: 1, Y: 2}, geometry.Point2D{X: 4, Y: 6})

	require.NoError(t, c.Measures.ChangeType(m.ID, MeasurePointToPoint))
	assert.Empty(t, m.AuxLineIDs())
	assert.Empty(t, c.AuxLines.All())

	require.NoError(t, c.Measures.ChangeType(m.ID, MeasureHorizontal))
	assert.Len(t, c.AuxLines.All(), 1)
}

func TestMeasurementIDReuse(t *testing.T) {
	c := New("test", DefaultSettings())
	for i := 0; i < 4; i++ {
		measure(t, c, geometry.Point2D{X: float64(i), Y: 0}, geometry.Point2D{X: float64(i), Y: 1})
	}
	require.NoError(t, c.Measures.Destroy(3))

	m := measure(t, c, geometry.Point2D{X: 9, Y: 0}, geometry.Point2D{X: 9, Y: 1})
	assert.Equal(t, 3, m.ID)
	m = measure(t, c, geometry.Point2D{X: 8, Y: 0}, geometry.Point2D{X: 8, Y: 1})
	assert.Equal(t, 5, m.ID)
}

func TestMeasurementDeleteLast(t *testing.T) {
	c := New("test", DefaultSettings())
	first := measure(t, c, geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 1, Y: 1})
	measure(t, c, geometry.Point2D{X: 2, Y: 2}, geometry.Point2D{X: 3, Y: 3})

	require.NoError(t, c.Measures.DeleteLast())
	all := c.Measures.All()
	require.Len(t, all, 1)
	assert.Same(t, first, all[0])

	require.NoError(t, c.Measures.DeleteLast())
	assert.ErrorIs(t, c.Measures.DeleteLast(), ErrNotFound)
}

func TestMeasurementHitTest(t *testing.T) {
	c := New("test", DefaultSettings())
	m := measure(t, c, geometry.Point2D{X: 1, Y: 2}, geometry.Point2D{X: 4, Y: 6})

	got, ok := c.Measures.HitTest(geometry.Point2D{X: 2.5, Y: 4})
	require.True(t, ok)
	assert.Same(t, m, got)

	_, ok = c.Measures.HitTest(geometry.Point2D{X: 9, Y: 9})
	assert.False(t, ok)
}

func TestMeasurementLabelFollow(t *testing.T) {
	c := New("test", DefaultSettings())
	m := measure(t, c, geometry.Point2D{X: 1, Y: 2}, geometry.Point2D{X: 4, Y: 6})

	require.NoError(t, c.Measures.BeginLabelMove(m.ID))
	assert.Same(t, m, c.Measures.Following())
	c.Measures.MoveLabel(geometry.Point2D{X: 7, Y: 7})
	c.Measures.EndLabelMove(geometry.Point2D{X: 8, Y: 8})

	assert.Nil(t, c.Measures.Following())
	assert.Equal(t, geometry.Point2D{X: 8, Y: 8}, m.LabelAnchor)
	assert.InDelta(t, 640, m.LabelPixel.X, 1e-9)

	require.NoError(t, c.SetXRange(rng(0, 20)))
	assert.InDelta(t, 320, m.LabelPixel.X, 1e-9)
}

func TestMeasurementSetColorAppliesToOwnedLines(t *testing.T) {
	s := DefaultSettings()
	s.DefaultMeasureType = MeasureHorizontal
	c := New("test", s)
	m := measure(t, c, geometry.Point2D{X: 1, Y: 6}, geometry.Point2D{X: 4, Y: 2})

	require.NoError(t, c.Measures.SetColor(m.ID, colorutil.Green))
	assert.Equal(t, colorutil.Green, m.Color)
	l, _ := c.AuxLines.Get(m.AuxLineIDs()[0])
	assert.Equal(t, colorutil.Green, l.Color)
}

func TestParseMeasureType(t *testing.T) {
	for _, mt := range []MeasureType{MeasureHorizontal, MeasureVertical, MeasurePointToPoint} {
		got, err := ParseMeasureType(mt.String())
		require.NoError(t, err)
		assert.Equal(t, mt, got)
	}
	_, err := ParseMeasureType("diagonal")
	assert.Error(t, err)
}
