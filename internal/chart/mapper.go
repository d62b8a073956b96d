package chart

import (
	"smart-chart/pkg/geometry"
)

// Mapper converts between data space and viewport pixels. Pixel y grows
// downward; data y grows upward.
type Mapper struct {
	X, Y     *Axis
	Viewport geometry.Rect
}

// DataToViewport maps a data point to viewport pixels.
func (m *Mapper) DataToViewport(p geometry.Point2D) geometry.Point2D {
	nx := m.X.Normalize(p.X)
	ny := m.Y.Normalize(p.Y)
	return geometry.Point2D{
		X: m.Viewport.X + nx*m.Viewport.Width,
		Y: m.Viewport.Y + (1-ny)*m.Viewport.Height,
	}
}

// ViewportToData maps viewport pixels to a data point.
func (m *Mapper) ViewportToData(px geometry.Point2D) geometry.Point2D {
	nx := (px.X - m.Viewport.X) / m.Viewport.Width
	ny := 1 - (px.Y-m.Viewport.Y)/m.Viewport.Height
	return geometry.Point2D{X: m.X.Denormalize(nx), Y: m.Y.Denormalize(ny)}
}

// PixelDistance returns the on-screen distance between two data points.
func (m *Mapper) PixelDistance(a, b geometry.Point2D) float64 {
	return m.DataToViewport(a).Distance(m.DataToViewport(b))
}

// Visible reports whether a data point falls inside the current ranges.
func (m *Mapper) Visible(p geometry.Point2D) bool {
	return m.X.Range.Contains(p.X) && m.Y.Range.Contains(p.Y)
}
