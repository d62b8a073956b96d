package chart

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"smart-chart/pkg/colorutil"
	"smart-chart/pkg/geometry"
)

// MeasureType selects which distance a measurement reports.
type MeasureType int

const (
	MeasureHorizontal MeasureType = iota
	MeasureVertical
	MeasurePointToPoint
)

func (t MeasureType) String() string {
	switch t {
	case MeasureHorizontal:
		return "horizontal"
	case MeasureVertical:
		return "vertical"
	default:
		return "point-to-point"
	}
}

// ParseMeasureType accepts the names produced by String.
func ParseMeasureType(s string) (MeasureType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return MeasureHorizontal, nil
	case "vertical", "v":
		return MeasureVertical, nil
	case "point-to-point", "p2p", "point", "":
		return MeasurePointToPoint, nil
	}
	return MeasurePointToPoint, fmt.Errorf("unknown measurement type %q", s)
}

func (t MeasureType) prefix() string {
	switch t {
	case MeasureHorizontal:
		return "Horizontal Dis"
	case MeasureVertical:
		return "Vertical Dis"
	default:
		return "Point to Point Dis"
	}
}

// MeasureValue computes the distance of type t between a and b.
func MeasureValue(t MeasureType, a, b geometry.Point2D) float64 {
	switch t {
	case MeasureHorizontal:
		return math.Abs(b.X - a.X)
	case MeasureVertical:
		return math.Abs(b.Y - a.Y)
	default:
		return a.Distance(b)
	}
}

// Measurement is a two-point distance annotation.
type Measurement struct {
	ID    int
	Type  MeasureType
	Color color.RGBA

	// P1 and P2 are the anchors in click order.
	P1, P2 geometry.Point2D
	// Left and Right are the anchors ordered by x.
	Left, Right geometry.Point2D

	Value float64
	Line  [2]geometry.Point2D
	Label string

	// LabelAnchor is the label position in data space.
	LabelAnchor geometry.Point2D
	// LabelPixel is LabelAnchor in viewport pixels, refreshed on range change.
	LabelPixel geometry.Point2D

	clicks   int
	auxLines []int
}

// Complete reports whether both anchors were captured.
func (m *Measurement) Complete() bool {
	return m.clicks >= 2
}

// Markers returns the two anchor points with their "(x,y)" captions.
func (m *Measurement) Markers() ([]geometry.Point2D, []string) {
	if !m.Complete() {
		return []geometry.Point2D{m.P1}, []string{pointCaption(m.P1)}
	}
	return []geometry.Point2D{m.Left, m.Right}, []string{pointCaption(m.Left), pointCaption(m.Right)}
}

// AuxLineIDs returns the bounded auxiliary lines owned by the measurement.
func (m *Measurement) AuxLineIDs() []int {
	return append([]int(nil), m.auxLines...)
}

func pointCaption(p geometry.Point2D) string {
	return fmt.Sprintf("(%.3f,%.3f)", p.X, p.Y)
}

// MeasurementEngine runs the two-click measurement protocol.
type MeasurementEngine struct {
	chart   *Chart
	ids     *IDAllocator
	items   map[int]*Measurement
	order   []int
	pending *Measurement
	follow  *Measurement
}

func newMeasurementEngine(c *Chart) *MeasurementEngine {
	return &MeasurementEngine{
		chart: c,
		ids:   NewIDAllocator(),
		items: make(map[int]*Measurement),
	}
}

// Click feeds one measurement click. The first click opens a pending
// measurement; the second completes and renders it.
func (e *MeasurementEngine) Click(p geometry.Point2D) (*Measurement, error) {
	if e.pending == nil {
		m := &Measurement{
			ID:     e.ids.Acquire(),
			Type:   e.chart.settings.DefaultMeasureType,
			Color:  colorutil.Blue,
			P1:     p,
			clicks: 1,
		}
		e.pending = m
		e.chart.Emit(EventOverlayChanged, m)
		return m, nil
	}
	m := e.pending
	if p == m.P1 {
		return m, ErrDegenerateMeasurement
	}
	m.P2 = p
	m.clicks = 2
	if m.P1.X <= m.P2.X {
		m.Left, m.Right = m.P1, m.P2
	} else {
		m.Left, m.Right = m.P2, m.P1
	}
	e.pending = nil
	e.items[m.ID] = m
	e.order = append(e.order, m.ID)
	e.render(m)
	e.chart.Emit(EventOverlayChanged, m)
	return m, nil
}

// Pending returns the incomplete measurement, or nil.
func (e *MeasurementEngine) Pending() *Measurement {
	return e.pending
}

// Cancel drops the pending measurement. It reports whether one existed.
func (e *MeasurementEngine) Cancel() bool {
	if e.pending == nil {
		return false
	}
	e.ids.Release(e.pending.ID)
	e.pending = nil
	e.chart.Emit(EventOverlayChanged, nil)
	return true
}

// Get returns a completed measurement.
func (e *MeasurementEngine) Get(id int) (*Measurement, bool) {
	m, ok := e.items[id]
	return m, ok
}

// All returns the completed measurements in creation order.
func (e *MeasurementEngine) All() []*Measurement {
	out := make([]*Measurement, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.items[id])
	}
	return out
}

// HitTest returns the measurement whose line or markers lie within the
// pick radius of p, measured in pixels.
func (e *MeasurementEngine) HitTest(p geometry.Point2D) (*Measurement, bool) {
	mp := e.chart.mapper
	px := mp.DataToViewport(p)
	tol := e.chart.settings.MeasureHitTolerance
	var best *Measurement
	bestDist := math.Inf(1)
	for _, id := range e.order {
		m := e.items[id]
		a := mp.DataToViewport(m.Line[0])
		b := mp.DataToViewport(m.Line[1])
		d := geometry.SegmentDistance(px, a, b)
		for _, q := range []geometry.Point2D{m.Left, m.Right} {
			d = math.Min(d, px.Distance(mp.DataToViewport(q)))
		}
		if d <= tol && d < bestDist {
			best, bestDist = m, d
		}
	}
	return best, best != nil
}

// ChangeType re-renders a measurement from its anchors as type t.
func (e *MeasurementEngine) ChangeType(id int, t MeasureType) error {
	m, ok := e.items[id]
	if !ok {
		return fmt.Errorf("measurement %d: %w", id, ErrNotFound)
	}
	m.Type = t
	e.render(m)
	e.chart.Emit(EventOverlayChanged, m)
	return nil
}

// SetColor changes the pen of a measurement and its owned lines.
func (e *MeasurementEngine) SetColor(id int, c color.RGBA) error {
	m, ok := e.items[id]
	if !ok {
		return fmt.Errorf("measurement %d: %w", id, ErrNotFound)
	}
	m.Color = c
	for _, lid := range m.auxLines {
		if l, ok := e.chart.AuxLines.Get(lid); ok {
			l.Color = c
		}
	}
	e.chart.Emit(EventOverlayChanged, m)
	return nil
}

// BeginLabelMove makes the label of measurement id follow the pointer
// until EndLabelMove.
func (e *MeasurementEngine) BeginLabelMove(id int) error {
	m, ok := e.items[id]
	if !ok {
		return fmt.Errorf("measurement %d: %w", id, ErrNotFound)
	}
	e.follow = m
	return nil
}

// Following returns the measurement whose label is being moved, or nil.
func (e *MeasurementEngine) Following() *Measurement {
	return e.follow
}

// MoveLabel places the followed label at p.
func (e *MeasurementEngine) MoveLabel(p geometry.Point2D) {
	if e.follow == nil {
		return
	}
	e.follow.LabelAnchor = p
	e.follow.LabelPixel = e.chart.mapper.DataToViewport(p)
}

// EndLabelMove drops the label at p and leaves follow mode.
func (e *MeasurementEngine) EndLabelMove(p geometry.Point2D) {
	if e.follow == nil {
		return
	}
	e.MoveLabel(p)
	m := e.follow
	e.follow = nil
	e.chart.Emit(EventOverlayChanged, m)
}

// Destroy removes a measurement with its owned lines and releases its id.
func (e *MeasurementEngine) Destroy(id int) error {
	if e.pending != nil && e.pending.ID == id {
		e.Cancel()
		return nil
	}
	m, ok := e.items[id]
	if !ok {
		return fmt.Errorf("measurement %d: %w", id, ErrNotFound)
	}
	e.chart.AuxLines.destroyOwned(m)
	if e.follow == m {
		e.follow = nil
	}
	delete(e.items, id)
	for i, oid := range e.order {
		if oid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.ids.Release(id)
	e.chart.Emit(EventOverlayChanged, nil)
	return nil
}

// DeleteLast removes the most recently completed measurement.
func (e *MeasurementEngine) DeleteLast() error {
	if len(e.order) == 0 {
		return fmt.Errorf("measurement: %w", ErrNotFound)
	}
	return e.Destroy(e.order[len(e.order)-1])
}

// Clear removes every measurement, pending included.
func (e *MeasurementEngine) Clear() {
	e.Cancel()
	for len(e.order) > 0 {
		e.Destroy(e.order[len(e.order)-1])
	}
}

// Refresh recomputes label pixel positions after a range change.
func (e *MeasurementEngine) Refresh() {
	for _, m := range e.items {
		m.LabelPixel = e.chart.mapper.DataToViewport(m.LabelAnchor)
	}
}

// render computes line, value, label and owned bounded lines from the
// anchors. Aligned types take their reference height from the endpoint with
// the greater y; on a tie the right endpoint is used.
func (e *MeasurementEngine) render(m *Measurement) {
	e.chart.AuxLines.destroyOwned(m)
	left, right := m.Left, m.Right
	ref, other := right, left
	if left.Y > right.Y {
		ref, other = left, right
	}

	m.Value = MeasureValue(m.Type, left, right)
	m.Label = fmt.Sprintf("%s:%.3f", m.Type.prefix(), m.Value)

	switch m.Type {
	case MeasureVertical:
		m.Line = [2]geometry.Point2D{{X: ref.X, Y: ref.Y}, {X: ref.X, Y: other.Y}}
		m.LabelAnchor = geometry.Point2D{X: ref.X, Y: (ref.Y + other.Y) / 2}
		if other.X != ref.X {
			ext := geometry.NewRange(math.Min(ref.X, other.X), math.Max(ref.X, other.X))
			e.own(m, e.chart.AuxLines.addBounded(Horizontal, other.Y, ext, m))
		}
	case MeasureHorizontal:
		m.Line = [2]geometry.Point2D{{X: left.X, Y: ref.Y}, {X: right.X, Y: ref.Y}}
		m.LabelAnchor = geometry.Point2D{X: (left.X + right.X) / 2, Y: ref.Y}
		if other.Y != ref.Y {
			ext := geometry.NewRange(math.Min(ref.Y, other.Y), math.Max(ref.Y, other.Y))
			e.own(m, e.chart.AuxLines.addBounded(Vertical, other.X, ext, m))
		}
	default:
		m.Line = [2]geometry.Point2D{left, right}
		m.LabelAnchor = left.Midpoint(right)
	}
	m.LabelPixel = e.chart.mapper.DataToViewport(m.LabelAnchor)
}

func (e *MeasurementEngine) own(m *Measurement, l *AuxLine) {
	l.Color = m.Color
	m.auxLines = append(m.auxLines, l.ID)
}
