package nichols

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-chart/pkg/geometry"
)

// fromNichols converts (phase deg, magnitude dB) back to a complex value.
func fromNichols(p geometry.Point2D) complex128 {
	return cmplx.Rect(math.Pow(10, p.Y/20), p.X*math.Pi/180)
}

func closedLoop(z complex128) complex128 {
	return z / (1 + z)
}

func TestReplicaOffsets(t *testing.T) {
	got := ReplicaOffsets(geometry.NewRange(-720, 360))
	assert.Equal(t, []float64{-1080, -720, -360, 0, 360, 720}, got)

	// No multiple of 360 inside: only the two guards remain.
	got = ReplicaOffsets(geometry.NewRange(-270, -90))
	assert.Equal(t, []float64{-360, 0}, got)
}

func TestMCircleHasConstantClosedLoopGain(t *testing.T) {
	for _, db := range MCircleDB {
		c := MCircle(db)
		require.NotEmpty(t, c.Points, "M %g dB", db)
		for _, p := range c.Points {
			got := 20 * math.Log10(cmplx.Abs(closedLoop(fromNichols(p))))
			require.InDelta(t, db, got, 1e-6, "M %g dB at %v", db, p)
		}
	}
}

func TestNCircleHasConstantClosedLoopPhase(t *testing.T) {
	for _, alpha := range NCircleDeg {
		c := NCircle(alpha)
		require.NotEmpty(t, c.Points, "N %g deg", alpha)
		for _, p := range c.Points {
			z := fromNichols(p)
			if cmplx.Abs(1+z) < 1e-6 {
				// Every N contour passes through the critical point.
				continue
			}
			phase := cmplx.Phase(closedLoop(z)) * 180 / math.Pi
			// The full circle holds both alpha and alpha-180.
			d := math.Mod(phase-alpha+720, 180)
			d = math.Min(d, 180-d)
			require.InDelta(t, 0, d, 1e-6, "N %g deg at %v", alpha, p)
		}
	}
}

func TestCirclesStayAboveFloorAndAreContinuous(t *testing.T) {
	for _, c := range Catalog() {
		for i, p := range c.Points {
			assert.GreaterOrEqual(t, p.Y, float64(MinMagnitudeDB))
			if i > 0 {
				assert.Less(t, math.Abs(p.X-c.Points[i-1].X), 180.0, "%s %s jump at %d", c.Kind, c.Label, i)
			}
		}
	}
}

func TestCirclesCenteredOnMinus180(t *testing.T) {
	for _, c := range Catalog() {
		r, ok := geometry.Extent(c.Points, geometry.CoordX)
		require.True(t, ok)
		assert.InDelta(t, -180, r.Mid(), 180, "%s %s spans %v", c.Kind, c.Label, r)
	}
}

func TestCatalogSize(t *testing.T) {
	cat := Catalog()
	assert.Len(t, cat, len(MCircleDB)+len(NCircleDeg))
	assert.Equal(t, "6 dB", MCircle(6).Label)
	assert.Equal(t, "30 deg", NCircle(30).Label)
}

func TestUnwrap(t *testing.T) {
	in := []float64{170, 179, -179, -170, 175, -185}
	got := Unwrap(in)
	want := []float64{170, 179, 181, 190, 175, 175}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12, "index %d", i)
	}
	assert.Empty(t, Unwrap(nil))
}

func TestGridRefresh(t *testing.T) {
	g := NewGrid()
	assert.Empty(t, g.Curves())

	g.Refresh(geometry.NewRange(-720, 360))
	assert.Equal(t, []float64{-1080, -720, -360, 0, 360, 720}, g.Offsets())
	assert.Len(t, g.Curves(), 6*len(g.Catalog()))

	base := g.Catalog()[3]
	for _, cv := range g.Curves() {
		if cv.Label == base.Label && cv.Offset == 360 {
			assert.Equal(t, base.Points[0].X+360, cv.Points[0].X)
			assert.Equal(t, base.Points[0].Y, cv.Points[0].Y)
		}
	}
}

func TestGridNearest(t *testing.T) {
	g := NewGrid()
	g.Refresh(geometry.NewRange(-360, 0))

	target := MCircle(6)
	p := target.Points[len(target.Points)/4]
	cv, d, ok := g.Nearest(p, 0.08)
	require.True(t, ok)
	assert.Equal(t, "6 dB", cv.Label)
	assert.InDelta(t, 0, d, 1e-9)

	_, _, ok = g.Nearest(geometry.Point2D{X: -180, Y: 500}, 0.08)
	assert.False(t, ok)
}
