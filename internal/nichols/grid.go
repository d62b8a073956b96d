package nichols

import (
	"math"
	"sync"

	"smart-chart/pkg/geometry"
)

// Curve is one replica of a contour shifted by Offset degrees.
type Curve struct {
	Kind   Kind
	Value  float64
	Label  string
	Offset float64
	Points []geometry.Point2D
}

// ReplicaOffsets returns the 360-degree shifts needed to tile the phase
// range x with contours centered on -180, plus one guard copy per side.
func ReplicaOffsets(x geometry.Range) []float64 {
	first := int(math.Ceil(x.Min/360)) - 1
	last := int(math.Floor(x.Max/360)) + 1
	var out []float64
	for k := first; k <= last; k++ {
		out = append(out, float64(k)*360)
	}
	return out
}

// Grid caches the contour catalog and the replicas for the current phase
// range. It is safe for concurrent use: hover lookups may run while a
// refresh rebuilds the replicas.
type Grid struct {
	mu      sync.RWMutex
	catalog []Circle
	curves  []Curve
	xRange  geometry.Range
}

// NewGrid builds the contour catalog.
func NewGrid() *Grid {
	return &Grid{catalog: Catalog()}
}

// Catalog returns the base contours.
func (g *Grid) Catalog() []Circle {
	return g.catalog
}

// Refresh rebuilds the replicas for phase range x. It is a no-op when x
// has not changed.
func (g *Grid) Refresh(x geometry.Range) {
	g.mu.RLock()
	same := g.curves != nil && g.xRange == x
	g.mu.RUnlock()
	if same {
		return
	}

	offsets := ReplicaOffsets(x)
	curves := make([]Curve, 0, len(offsets)*len(g.catalog))
	for _, off := range offsets {
		for _, c := range g.catalog {
			pts := make([]geometry.Point2D, len(c.Points))
			for i, p := range c.Points {
				pts[i] = geometry.Point2D{X: p.X + off, Y: p.Y}
			}
			curves = append(curves, Curve{Kind: c.Kind, Value: c.Value, Label: c.Label, Offset: off, Points: pts})
		}
	}

	g.mu.Lock()
	g.curves = curves
	g.xRange = x
	g.mu.Unlock()
}

// Curves returns the replicas built by the last Refresh.
func (g *Grid) Curves() []Curve {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.curves
}

// Offsets returns the distinct replica shifts currently built.
func (g *Grid) Offsets() []float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []float64
	seen := make(map[float64]bool)
	for _, c := range g.curves {
		if !seen[c.Offset] {
			seen[c.Offset] = true
			out = append(out, c.Offset)
		}
	}
	return out
}

// Nearest returns the contour with a point closest to p, provided that
// distance is below threshold times the x span of the last refresh.
func (g *Grid) Nearest(p geometry.Point2D, threshold float64) (Curve, float64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	limit := threshold * g.xRange.Span()
	best := -1
	bestDist := math.Inf(1)
	for i, c := range g.curves {
		for _, q := range c.Points {
			if d := p.Distance(q); d < bestDist {
				best, bestDist = i, d
			}
		}
	}
	if best < 0 || bestDist >= limit {
		return Curve{}, bestDist, false
	}
	return g.curves[best], bestDist, true
}
