package chart

import (
	"image/color"

	"smart-chart/pkg/colorutil"
	"smart-chart/pkg/geometry"
)

// LayerKind tags what a scene polyline represents.
type LayerKind int

const (
	LayerSeries LayerKind = iota
	LayerGrid
	LayerCursor
	LayerAuxLine
	LayerMeasure
)

// Polyline is an ordered list of data points drawn with one pen.
type Polyline struct {
	Kind   LayerKind
	ID     int
	Name   string
	Points []geometry.Point2D
	Color  color.RGBA
	Width  float64
	Dashed bool
}

// Marker is a dot at a data point with an optional caption.
type Marker struct {
	Point  geometry.Point2D
	Color  color.RGBA
	Radius float64
	Label  string
}

// Text is a caption anchored at viewport pixels.
type Text struct {
	Text  string
	Pixel geometry.Point2D
	Color color.RGBA
}

// AxisSpec describes one axis to the renderer.
type AxisSpec struct {
	Scale Scale
	Range geometry.Range
	Title string
}

// Scene is everything a renderer needs to draw the chart. Polylines are
// listed back to front.
type Scene struct {
	Title      string
	X, Y       AxisSpec
	Viewport   geometry.Rect
	Lines      []Polyline
	Markers    []Marker
	Texts      []Text
	Handles    []geometry.Point2D // cursor grab handles, pixels
	RubberBand *geometry.Rect
	Readout    string
}

// Scene snapshots the chart for rendering.
func (c *Chart) Scene() Scene {
	s := Scene{
		Title:    c.Title,
		X:        AxisSpec{Scale: c.X.Scale, Range: c.X.Range, Title: c.X.Title},
		Y:        AxisSpec{Scale: c.Y.Scale, Range: c.Y.Range, Title: c.Y.Title},
		Viewport: c.mapper.Viewport,
		Readout:  c.readout,
	}

	if c.grid != nil {
		for _, cv := range c.grid.Curves() {
			s.Lines = append(s.Lines, Polyline{
				Kind: LayerGrid, Name: cv.Label, Points: cv.Points,
				Color: colorutil.Gray, Width: 0.5, Dashed: true,
			})
		}
	}

	for _, ser := range c.Series.Visible() {
		s.Lines = append(s.Lines, Polyline{
			Kind: LayerSeries, ID: ser.ID, Name: ser.Name, Points: ser.Points,
			Color: ser.Color, Width: ser.Width,
		})
	}

	for _, l := range c.AuxLines.All() {
		s.Lines = append(s.Lines, Polyline{
			Kind: LayerAuxLine, ID: l.ID, Points: l.Segment[:],
			Color: l.Color, Width: l.Width, Dashed: l.Mode == AuxMeasure,
		})
		for _, mk := range l.markers {
			s.Markers = append(s.Markers, Marker{Point: mk.Point, Color: l.Color, Radius: 4, Label: mk.Label})
		}
	}

	for _, m := range c.Measures.All() {
		s.Lines = append(s.Lines, Polyline{
			Kind: LayerMeasure, ID: m.ID, Points: m.Line[:], Color: m.Color, Width: 1.5,
		})
		pts, captions := m.Markers()
		for i, p := range pts {
			s.Markers = append(s.Markers, Marker{Point: p, Color: m.Color, Radius: 3, Label: captions[i]})
		}
		s.Texts = append(s.Texts, Text{Text: m.Label, Pixel: m.LabelPixel, Color: m.Color})
	}
	if m := c.Measures.Pending(); m != nil {
		s.Markers = append(s.Markers, Marker{Point: m.P1, Color: m.Color, Radius: 3, Label: pointCaption(m.P1)})
	}

	for _, cur := range c.Cursors.All() {
		if !cur.Visible {
			continue
		}
		seg := cur.Segment()
		s.Lines = append(s.Lines, Polyline{
			Kind: LayerCursor, ID: cur.ID, Points: seg[:], Color: cur.Color, Width: 1,
		})
		s.Handles = append(s.Handles, cur.HandlePixel)
		if cur.HasY {
			s.Markers = append(s.Markers, Marker{Point: geometry.Point2D{X: cur.X, Y: cur.Y}, Color: cur.Color, Radius: 3})
			s.Texts = append(s.Texts, Text{Text: cur.Label, Pixel: cur.LabelPixel, Color: cur.Color})
		}
	}

	if r, ok := c.RubberBand(); ok {
		s.RubberBand = &r
	}
	return s
}
