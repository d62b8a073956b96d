package geometry

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// Coord selects one coordinate of a point.
type Coord int

const (
	CoordX Coord = iota
	CoordY
)

// Of returns the selected coordinate of p.
func (c Coord) Of(p Point2D) float64 {
	if c == CoordX {
		return p.X
	}
	return p.Y
}

// Other returns the orthogonal coordinate.
func (c Coord) Other() Coord {
	if c == CoordX {
		return CoordY
	}
	return CoordX
}

// ErrTooFewPoints is returned when a polyline needs at least two points.
var ErrTooFewPoints = errors.New("polyline needs at least two points")

// ErrNotIncreasing is returned when a resample is requested on a polyline
// whose x values are not strictly increasing.
var ErrNotIncreasing = errors.New("polyline x values are not strictly increasing")

// Xs returns the x coordinates of points.
func Xs(points []Point2D) []float64 {
	xs := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
	}
	return xs
}

// Ys returns the y coordinates of points.
func Ys(points []Point2D) []float64 {
	ys := make([]float64, len(points))
	for i, p := range points {
		ys[i] = p.Y
	}
	return ys
}

// Extent returns the [min,max] interval covered by the selected coordinate.
// ok is false for an empty polyline.
func Extent(points []Point2D, c Coord) (r Range, ok bool) {
	if len(points) == 0 {
		return Range{}, false
	}
	vals := Xs(points)
	if c == CoordY {
		vals = Ys(points)
	}
	return Range{Min: floats.Min(vals), Max: floats.Max(vals)}, true
}

// IsStrictlyIncreasing reports whether x grows at every step.
func IsStrictlyIncreasing(points []Point2D) bool {
	for i := 1; i < len(points); i++ {
		if !(points[i].X > points[i-1].X) {
			return false
		}
	}
	return len(points) > 0
}

// Interpolate returns the linearly interpolated y at x. Segments are scanned
// in polyline order and the first one whose closed x-interval holds x wins.
// A sample hit exactly returns that sample's y. ok is false when x lies
// outside [min(x), max(x)]; no extrapolation is done.
func Interpolate(points []Point2D, x float64) (y float64, ok bool) {
	if len(points) == 0 || math.IsNaN(x) {
		return 0, false
	}
	if len(points) == 1 {
		if points[0].X == x {
			return points[0].Y, true
		}
		return 0, false
	}
	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		if a.X == x {
			return a.Y, true
		}
		if b.X == x {
			return b.Y, true
		}
		lo, hi := math.Min(a.X, b.X), math.Max(a.X, b.X)
		if x < lo || x > hi {
			continue
		}
		return a.Y + (x-a.X)*(b.Y-a.Y)/(b.X-a.X), true
	}
	return 0, false
}

// Crossings returns every point where the polyline meets the line c == value.
// Each segment is tested half-open so a vertex lying exactly on the line is
// reported once even though two segments share it.
func Crossings(points []Point2D, c Coord, value float64) []Point2D {
	var out []Point2D
	if math.IsNaN(value) {
		return out
	}
	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		va, vb := c.Of(a), c.Of(b)
		if va == value {
			out = append(out, a)
			continue
		}
		if (va < value && value < vb) || (va > value && value > vb) {
			t := (value - va) / (vb - va)
			p := Point2D{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
			// Pin the crossed coordinate to the exact requested value.
			if c == CoordX {
				p.X = value
			} else {
				p.Y = value
			}
			out = append(out, p)
		}
	}
	if n := len(points); n > 0 && c.Of(points[n-1]) == value {
		out = append(out, points[n-1])
	}
	return out
}

// Resample densifies a strictly increasing polyline to n samples spread
// evenly over its x domain. With logSpacing the samples are evenly spaced
// in log10(x), which requires a positive domain.
func Resample(points []Point2D, n int, logSpacing bool) ([]Point2D, error) {
	if len(points) < 2 || n < 2 {
		return nil, ErrTooFewPoints
	}
	if !IsStrictlyIncreasing(points) {
		return nil, ErrNotIncreasing
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(Xs(points), Ys(points)); err != nil {
		return nil, err
	}

	lo, hi := points[0].X, points[len(points)-1].X
	grid := make([]float64, n)
	if logSpacing && lo > 0 {
		floats.LogSpan(grid, lo, hi)
	} else {
		floats.Span(grid, lo, hi)
	}
	// LogSpan round-trips through exp/log; pin the ends to the real samples.
	grid[0], grid[n-1] = lo, hi

	out := make([]Point2D, n)
	for i, x := range grid {
		out[i] = Point2D{X: x, Y: pl.Predict(x)}
	}
	return out, nil
}

// SegmentDistance returns the distance from p to the segment a-b.
func SegmentDistance(p, a, b Point2D) float64 {
	l2 := distSq(a, b)
	if l2 == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*(b.X-a.X) + (p.Y-a.Y)*(b.Y-a.Y)) / l2
	t = math.Max(0, math.Min(1, t))
	proj := Point2D{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
	return p.Distance(proj)
}

// distSq computes the squared distance between two points.
func distSq(a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}
