package chart

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-chart/pkg/geometry"
)

func newCursorChart(t *testing.T) (*Chart, int) {
	t.Helper()
	c := New("test", DefaultSettings())
	id := addSeries(t, c, pt(0, 0, 1, 10, 3, 20, 10, -5), "s")
	require.NoError(t, c.SetRange(rng(-2, 12), rng(-10, 30)))
	return c, id
}

func TestCursorTracksSeries(t *testing.T) {
	c, sid := newCursorChart(t)
	cur, err := c.Cursors.Add(sid, 5)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(7))
	xr := c.XRange()
	for i := 0; i < 500; i++ {
		x := xr.Min + r.Float64()*xr.Span()
		require.NoError(t, c.Cursors.Move(cur.ID, x))

		want, err := c.Series.Interpolate(sid, x)
		if err != nil {
			assert.False(t, cur.HasY, "x=%g", x)
			assert.Empty(t, cur.Label, "x=%g", x)
			assert.True(t, cur.Visible)
			continue
		}
		assert.True(t, cur.HasY, "x=%g", x)
		assert.Equal(t, want, cur.Y, "x=%g", x)
		assert.Equal(t, fmt.Sprintf("(%.2f,%.2f)", x, want), cur.Label)
	}
}

func TestCursorOutsideDomainKeepsLine(t *testing.T) {
	c, sid := newCursorChart(t)
	cur, err := c.Cursors.Add(sid, 11)
	require.NoError(t, err)

	assert.False(t, cur.HasY)
	assert.Empty(t, cur.Label)
	seg := cur.Segment()
	assert.Equal(t, geometry.Point2D{X: 11, Y: -10}, seg[0])
	assert.Equal(t, geometry.Point2D{X: 11, Y: 30}, seg[1])
}

func TestCursorAddUnknownSeries(t *testing.T) {
	c, _ := newCursorChart(t)
	_, err := c.Cursors.Add(9, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCursorDefaultsToCenter(t *testing.T) {
	c, sid := newCursorChart(t)
	cur, err := c.Cursors.Add(sid, math.NaN())
	require.NoError(t, err)
	assert.InDelta(t, 5, cur.X, 1e-12)
	assert.InDelta(t, 0.5, cur.Fraction, 1e-12)
}

func TestCursorDrag(t *testing.T) {
	c, sid := newCursorChart(t)
	cur, _ := c.Cursors.Add(sid, 5)

	// 5% of a 14 wide range is 0.7.
	assert.False(t, c.Cursors.BeginDrag(geometry.Point2D{X: 5.8}))
	require.True(t, c.Cursors.BeginDrag(geometry.Point2D{X: 5.5}))
	assert.True(t, cur.Dragging)

	assert.True(t, c.Cursors.Drag(geometry.Point2D{X: 7}))
	assert.Equal(t, 7.0, cur.X)
	assert.False(t, c.Cursors.Drag(geometry.Point2D{X: 20}))
	assert.Equal(t, 7.0, cur.X)

	c.Cursors.EndDrag()
	assert.False(t, cur.Dragging)
	assert.Nil(t, c.Cursors.Dragging())
}

func TestCursorHiddenIsNotHit(t *testing.T) {
	c, sid := newCursorChart(t)
	cur, _ := c.Cursors.Add(sid, 5)
	require.NoError(t, c.Cursors.Hide(cur.ID))

	_, ok := c.Cursors.HitTest(geometry.Point2D{X: 5})
	assert.False(t, ok)

	c.Cursors.ShowAll()
	_, ok = c.Cursors.HitTest(geometry.Point2D{X: 5})
	assert.True(t, ok)
}

func TestCursorLimitToSeries(t *testing.T) {
	s := DefaultSettings()
	s.LimitCursorToSeries = true
	c := New("test", s)
	sid := addSeries(t, c, pt(1, 1, 3, 3), "")

	cur, err := c.Cursors.Add(sid, 9)
	require.NoError(t, err)
	assert.Equal(t, 3.0, cur.X)
	assert.Equal(t, 3.0, cur.Y)
}

func TestCursorPixelAnchorsFollowRange(t *testing.T) {
	c := New("test", DefaultSettings())
	sid := addSeries(t, c, pt(0, 0, 20, 20), "")
	cur, _ := c.Cursors.Add(sid, 5)
	assert.InDelta(t, 400, cur.HandlePixel.X, 1e-9)

	require.NoError(t, c.SetXRange(rng(5, 15)))
	assert.InDelta(t, 0, cur.HandlePixel.X, 1e-9)
	assert.InDelta(t, 0, cur.Fraction, 1e-12)
}

func TestCursorExtension(t *testing.T) {
	primary, sid := newCursorChart(t)
	sub := New("sub", DefaultSettings())
	subSeries := addSeries(t, sub, pt(0, -90, 10, -180), "phase")
	require.NoError(t, primary.AttachSubChart(sub))

	cur, _ := primary.Cursors.Add(sid, 2)
	ext, err := primary.ExtendCursor(cur.ID, subSeries)
	require.NoError(t, err)
	assert.Same(t, ext, cur.Extension())
	assert.Same(t, cur, ext.Extension())

	require.NoError(t, primary.Cursors.Move(cur.ID, 4))
	assert.Equal(t, 4.0, ext.X)
	assert.InDelta(t, -126, ext.Y, 1e-9)

	// The sub-chart side does not drive the primary.
	require.NoError(t, sub.Cursors.Move(ext.ID, 8))
	assert.Equal(t, 4.0, cur.X)

	require.NoError(t, sub.Cursors.Destroy(ext.ID))
	assert.Nil(t, cur.Extension())

	require.NoError(t, primary.Cursors.Move(cur.ID, 6))
	_, ok := sub.Cursors.Get(ext.ID)
	assert.False(t, ok)
}

func TestCursorDestroyDriverClearsPeer(t *testing.T) {
	primary, sid := newCursorChart(t)
	sub := New("sub", DefaultSettings())
	subSeries := addSeries(t, sub, pt(0, 0, 10, 10), "")
	require.NoError(t, primary.AttachSubChart(sub))

	cur, _ := primary.Cursors.Add(sid, 2)
	ext, err := primary.ExtendCursor(cur.ID, subSeries)
	require.NoError(t, err)

	require.NoError(t, primary.Cursors.Destroy(cur.ID))
	assert.Nil(t, ext.Extension())
	assert.ErrorIs(t, primary.Cursors.Destroy(cur.ID), ErrNotFound)
}

func TestCursorExtendWithoutSubChart(t *testing.T) {
	c, sid := newCursorChart(t)
	cur, _ := c.Cursors.Add(sid, 2)
	_, err := c.ExtendCursor(cur.ID, sid)
	assert.ErrorIs(t, err, ErrNoSubChart)
}

func TestRemoveSeriesDropsBoundCursors(t *testing.T) {
	c, sid := newCursorChart(t)
	other := addSeries(t, c, pt(0, 0, 1, 1), "other")
	c.Cursors.Add(sid, 1)
	keep, _ := c.Cursors.Add(other, 0.5)

	require.NoError(t, c.RemoveSeries(sid))
	all := c.Cursors.All()
	require.Len(t, all, 1)
	assert.Same(t, keep, all[0])
}
