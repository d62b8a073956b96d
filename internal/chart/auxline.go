package chart

import (
	"fmt"
	"image/color"
	"math"

	"smart-chart/pkg/colorutil"
	"smart-chart/pkg/geometry"
)

// Orientation of an auxiliary line.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// fixed is the coordinate an auxiliary line of this orientation holds.
func (o Orientation) fixed() geometry.Coord {
	if o == Vertical {
		return geometry.CoordX
	}
	return geometry.CoordY
}

// AuxMode distinguishes user lines from lines owned by a measurement.
type AuxMode int

const (
	AuxNormal AuxMode = iota
	AuxMeasure
)

// IntersectionMarker is one shown crossing of an auxiliary line with a series.
type IntersectionMarker struct {
	Point    geometry.Point2D
	SeriesID int
	Label    string
}

// AuxLine is a horizontal or vertical reference line at a fixed data value.
type AuxLine struct {
	ID          int
	Orientation Orientation
	Value       float64
	Mode        AuxMode
	Color       color.RGBA
	Width       float64
	Highlighted bool

	// Extent bounds a measure-mode line along the opposite axis.
	Extent geometry.Range
	// Segment is the drawn line in data space, refreshed by Redraw.
	Segment [2]geometry.Point2D

	owner       *Measurement
	baseWidth   float64
	markers     []IntersectionMarker
	queue       []geometry.Point2D
	queueSeries int
}

// Markers returns the intersection markers currently shown.
func (l *AuxLine) Markers() []IntersectionMarker {
	return append([]IntersectionMarker(nil), l.markers...)
}

// AuxLineEngine owns the auxiliary lines of a chart. Horizontal and
// vertical lines share one id space.
type AuxLineEngine struct {
	chart *Chart
	ids   *IDAllocator
	lines map[int]*AuxLine
	hover *AuxLine
}

func newAuxLineEngine(c *Chart) *AuxLineEngine {
	return &AuxLineEngine{
		chart: c,
		ids:   NewIDAllocator(),
		lines: make(map[int]*AuxLine),
	}
}

func (e *AuxLineEngine) axisFor(o Orientation) *Axis {
	if o == Vertical {
		return e.chart.X
	}
	return e.chart.Y
}

// Add places a user line at value v.
func (e *AuxLineEngine) Add(o Orientation, v float64) (*AuxLine, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%s line at %g: %w", o, v, ErrOutOfRange)
	}
	if e.axisFor(o).Scale == ScaleLog && v <= 0 {
		return nil, fmt.Errorf("%s line at %g on logarithmic axis: %w", o, v, ErrOutOfRange)
	}
	l := e.newLine(o, v, AuxNormal)
	l.Color = colorutil.Magenta
	e.redrawLine(l)
	e.chart.Emit(EventOverlayChanged, l)
	return l, nil
}

// addBounded creates a measure-mode segment owned by m.
func (e *AuxLineEngine) addBounded(o Orientation, v float64, extent geometry.Range, m *Measurement) *AuxLine {
	l := e.newLine(o, v, AuxMeasure)
	l.Extent = extent
	l.owner = m
	l.Color = colorutil.Gray
	e.redrawLine(l)
	return l
}

func (e *AuxLineEngine) newLine(o Orientation, v float64, mode AuxMode) *AuxLine {
	l := &AuxLine{
		ID:          e.ids.Acquire(),
		Orientation: o,
		Value:       v,
		Mode:        mode,
		Width:       1,
		baseWidth:   1,
	}
	e.lines[l.ID] = l
	return l
}

// Get returns the line with the given id.
func (e *AuxLineEngine) Get(id int) (*AuxLine, bool) {
	l, ok := e.lines[id]
	return l, ok
}

// All returns every line, measure-mode included, ordered by id.
func (e *AuxLineEngine) All() []*AuxLine {
	out := make([]*AuxLine, 0, len(e.lines))
	for _, id := range sortedIDs(e.lines) {
		out = append(out, e.lines[id])
	}
	return out
}

// Normal returns the user-placed lines ordered by id.
func (e *AuxLineEngine) Normal() []*AuxLine {
	var out []*AuxLine
	for _, l := range e.All() {
		if l.Mode == AuxNormal {
			out = append(out, l)
		}
	}
	return out
}

// Move sets a new fixed value for a user line. Shown intersections are
// cleared since they no longer lie on the line.
func (e *AuxLineEngine) Move(id int, v float64) error {
	l, err := e.normal(id)
	if err != nil {
		return err
	}
	if e.axisFor(l.Orientation).Scale == ScaleLog && v <= 0 {
		return fmt.Errorf("%s line at %g on logarithmic axis: %w", l.Orientation, v, ErrOutOfRange)
	}
	l.Value = v
	l.markers, l.queue = nil, nil
	e.redrawLine(l)
	e.chart.Emit(EventOverlayChanged, l)
	return nil
}

// SetColor changes the pen of a user line.
func (e *AuxLineEngine) SetColor(id int, c color.RGBA) error {
	l, err := e.normal(id)
	if err != nil {
		return err
	}
	l.Color = c
	e.chart.Emit(EventOverlayChanged, l)
	return nil
}

func (e *AuxLineEngine) normal(id int) (*AuxLine, error) {
	l, ok := e.lines[id]
	if !ok || l.Mode != AuxNormal {
		return nil, fmt.Errorf("auxiliary line %d: %w", id, ErrNotFound)
	}
	return l, nil
}

// Redraw recomputes every line segment for the current ranges.
func (e *AuxLineEngine) Redraw() {
	for _, l := range e.lines {
		e.redrawLine(l)
	}
}

// redrawLine spans a normal line over the whole opposite axis; a measure
// line keeps its own extent.
func (e *AuxLineEngine) redrawLine(l *AuxLine) {
	span := l.Extent
	if l.Mode == AuxNormal {
		if l.Orientation == Vertical {
			span = e.chart.Y.Range
		} else {
			span = e.chart.X.Range
		}
	}
	if l.Orientation == Vertical {
		l.Segment = [2]geometry.Point2D{{X: l.Value, Y: span.Min}, {X: l.Value, Y: span.Max}}
	} else {
		l.Segment = [2]geometry.Point2D{{X: span.Min, Y: l.Value}, {X: span.Max, Y: l.Value}}
	}
}

// FindNearest returns the user line closest to p. Distance is measured as
// a fraction of the relevant axis span in that axis' own scale, so zero
// and log positions need no special casing.
func (e *AuxLineEngine) FindNearest(p geometry.Point2D) (*AuxLine, bool) {
	var best *AuxLine
	bestDist := e.chart.settings.AuxLineThreshold
	for _, l := range e.Normal() {
		ax := e.axisFor(l.Orientation)
		d := ax.RelativeDistance(l.Orientation.fixed().Of(p), l.Value)
		if d < bestDist || (best == nil && d == bestDist) {
			best, bestDist = l, d
		}
	}
	return best, best != nil
}

// Hover highlights the line nearest to p and restores the pen of the
// previously highlighted one. It reports whether the highlight changed.
func (e *AuxLineEngine) Hover(p geometry.Point2D) bool {
	l, _ := e.FindNearest(p)
	if l == e.hover {
		return false
	}
	if e.hover != nil {
		e.hover.Width = e.hover.baseWidth
		e.hover.Highlighted = false
	}
	e.hover = l
	if l != nil {
		l.baseWidth = l.Width
		l.Width = e.chart.settings.HighlightWidth
		l.Highlighted = true
	}
	return true
}

// Intersections returns every crossing of user line id with series
// seriesID, in series order.
func (e *AuxLineEngine) Intersections(id, seriesID int) ([]geometry.Point2D, error) {
	l, err := e.normal(id)
	if err != nil {
		return nil, err
	}
	ser, ok := e.chart.Series.Get(seriesID)
	if !ok {
		return nil, fmt.Errorf("series %d: %w", seriesID, ErrNotFound)
	}
	return geometry.Crossings(ser.Points, l.Orientation.fixed(), l.Value), nil
}

// RevealIntersections shows every crossing of line id with a series and
// returns them. It wraps ErrNotFound when the line misses the series.
func (e *AuxLineEngine) RevealIntersections(id, seriesID int) ([]geometry.Point2D, error) {
	pts, err := e.Intersections(id, seriesID)
	if err != nil {
		return nil, err
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("line %d and series %d do not intersect: %w", id, seriesID, ErrNotFound)
	}
	l := e.lines[id]
	l.markers = l.markers[:0]
	for _, p := range pts {
		l.markers = append(l.markers, IntersectionMarker{Point: p, SeriesID: seriesID, Label: pointCaption(p)})
	}
	l.queue = nil
	e.chart.Emit(EventOverlayChanged, l)
	return pts, nil
}

// ShowNextIntersection shows the next crossing of line id with a series,
// replacing the marker shown before. The queue reloads when exhausted or
// when a different series is requested.
func (e *AuxLineEngine) ShowNextIntersection(id, seriesID int) (geometry.Point2D, error) {
	l, err := e.normal(id)
	if err != nil {
		return geometry.Point2D{}, err
	}
	if len(l.queue) == 0 || l.queueSeries != seriesID {
		pts, err := e.Intersections(id, seriesID)
		if err != nil {
			return geometry.Point2D{}, err
		}
		if len(pts) == 0 {
			return geometry.Point2D{}, fmt.Errorf("line %d and series %d do not intersect: %w", id, seriesID, ErrNotFound)
		}
		l.queue, l.queueSeries = pts, seriesID
	}
	p := l.queue[0]
	l.queue = l.queue[1:]
	l.markers = []IntersectionMarker{{Point: p, SeriesID: seriesID, Label: pointCaption(p)}}
	e.chart.Emit(EventOverlayChanged, l)
	return p, nil
}

// ClearIntersections hides the markers of line id without deleting it.
func (e *AuxLineEngine) ClearIntersections(id int) error {
	l, err := e.normal(id)
	if err != nil {
		return err
	}
	l.markers, l.queue = nil, nil
	e.chart.Emit(EventOverlayChanged, l)
	return nil
}

// Destroy removes a user line with its markers and releases its id.
// Measure-mode lines are removed with their measurement.
func (e *AuxLineEngine) Destroy(id int) error {
	l, err := e.normal(id)
	if err != nil {
		return err
	}
	e.remove(l)
	e.chart.Emit(EventOverlayChanged, nil)
	return nil
}

// Clear removes every user line.
func (e *AuxLineEngine) Clear() {
	for _, l := range e.Normal() {
		e.remove(l)
	}
	e.chart.Emit(EventOverlayChanged, nil)
}

func (e *AuxLineEngine) remove(l *AuxLine) {
	if e.hover == l {
		e.hover = nil
	}
	l.markers, l.queue = nil, nil
	delete(e.lines, l.ID)
	e.ids.Release(l.ID)
}

// destroyOwned removes the measure-mode lines owned by m.
func (e *AuxLineEngine) destroyOwned(m *Measurement) {
	for _, id := range m.auxLines {
		if l, ok := e.lines[id]; ok && l.owner == m {
			e.remove(l)
		}
	}
	m.auxLines = nil
}
