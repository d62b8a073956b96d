package chart

import (
	"fmt"
	"image/color"
	"math"

	"smart-chart/pkg/colorutil"
	"smart-chart/pkg/geometry"
)

// Cursor is a vertical line bound to a series that reports the series'
// interpolated value at its x position.
type Cursor struct {
	ID       int
	SeriesID int
	X        float64
	Y        float64
	HasY     bool
	Visible  bool
	Dragging bool
	Label    string
	Color    color.RGBA

	// Fraction is the position of X within the visible x range, 0..1.
	Fraction float64

	// Pixel anchors, refreshed by UpdateAll.
	HandlePixel geometry.Point2D
	LabelPixel  geometry.Point2D

	mgr  *CursorManager
	link *cursorLink
}

type cursorLink struct {
	peer   *Cursor
	drives bool // moves on this cursor are forwarded to peer
}

// Extension returns the linked cursor on the sub-chart side, or nil.
func (c *Cursor) Extension() *Cursor {
	if c.link == nil {
		return nil
	}
	return c.link.peer
}

// Segment returns the cursor line clipped to the visible y range.
func (c *Cursor) Segment() [2]geometry.Point2D {
	yr := c.mgr.chart.Y.Range
	return [2]geometry.Point2D{{X: c.X, Y: yr.Min}, {X: c.X, Y: yr.Max}}
}

// CursorManager owns the cursors of a chart.
type CursorManager struct {
	chart   *Chart
	ids     *IDAllocator
	cursors map[int]*Cursor
	drag    *Cursor
}

func newCursorManager(c *Chart) *CursorManager {
	return &CursorManager{
		chart:   c,
		ids:     NewIDAllocator(),
		cursors: make(map[int]*Cursor),
	}
}

// Add creates a visible cursor bound to seriesID. A NaN x places it at the
// center of the visible x range.
func (m *CursorManager) Add(seriesID int, x float64) (*Cursor, error) {
	if _, ok := m.chart.Series.Get(seriesID); !ok {
		return nil, fmt.Errorf("cursor series %d: %w", seriesID, ErrNotFound)
	}
	if math.IsNaN(x) {
		x = m.chart.X.Denormalize(0.5)
	}
	id := m.ids.Acquire()
	cur := &Cursor{
		ID:       id,
		SeriesID: seriesID,
		Visible:  true,
		Color:    colorutil.Red,
		mgr:      m,
	}
	m.cursors[id] = cur
	m.update(cur, x)
	m.chart.Emit(EventOverlayChanged, cur)
	return cur, nil
}

// Get returns the cursor with the given id.
func (m *CursorManager) Get(id int) (*Cursor, bool) {
	c, ok := m.cursors[id]
	return c, ok
}

// All returns the cursors ordered by id.
func (m *CursorManager) All() []*Cursor {
	out := make([]*Cursor, 0, len(m.cursors))
	for _, id := range sortedIDs(m.cursors) {
		out = append(out, m.cursors[id])
	}
	return out
}

// Move repositions a cursor and recomputes its readout.
func (m *CursorManager) Move(id int, x float64) error {
	cur, ok := m.cursors[id]
	if !ok {
		return fmt.Errorf("cursor %d: %w", id, ErrNotFound)
	}
	m.update(cur, x)
	return nil
}

// Rebind attaches a cursor to another series.
func (m *CursorManager) Rebind(id, seriesID int) error {
	cur, ok := m.cursors[id]
	if !ok {
		return fmt.Errorf("cursor %d: %w", id, ErrNotFound)
	}
	if _, ok := m.chart.Series.Get(seriesID); !ok {
		return fmt.Errorf("cursor series %d: %w", seriesID, ErrNotFound)
	}
	cur.SeriesID = seriesID
	m.update(cur, cur.X)
	return nil
}

// update sets x, recomputes y and label, then forwards to a driven peer.
func (m *CursorManager) update(cur *Cursor, x float64) {
	if m.chart.settings.LimitCursorToSeries {
		if ser, ok := m.chart.Series.Get(cur.SeriesID); ok {
			if xr, ok := ser.XRange(); ok {
				x = xr.Clamp(x)
			}
		}
	}
	cur.X = x
	cur.Fraction = m.chart.X.Normalize(x)
	y, err := m.chart.Series.Interpolate(cur.SeriesID, x)
	if err != nil {
		cur.Y, cur.HasY, cur.Label = 0, false, ""
	} else {
		cur.Y, cur.HasY = y, true
		cur.Label = fmt.Sprintf("(%.2f,%.2f)", x, y)
	}
	m.place(cur)

	if cur.link != nil && cur.link.drives {
		peer := cur.link.peer
		peer.mgr.update(peer, x)
	}
}

// place refreshes the pixel anchors of a cursor.
func (m *CursorManager) place(cur *Cursor) {
	mp := m.chart.mapper
	top := mp.DataToViewport(geometry.Point2D{X: cur.X, Y: m.chart.Y.Max()})
	cur.HandlePixel = top
	if cur.HasY {
		cur.LabelPixel = mp.DataToViewport(geometry.Point2D{X: cur.X, Y: cur.Y}).Add(geometry.Point2D{X: 6, Y: -6})
	} else {
		cur.LabelPixel = top.Add(geometry.Point2D{X: 6, Y: 14})
	}
}

// UpdateAll recomputes every cursor after a range or size change.
func (m *CursorManager) UpdateAll() {
	for _, cur := range m.cursors {
		m.update(cur, cur.X)
	}
}

// Show makes a cursor visible.
func (m *CursorManager) Show(id int) error {
	cur, ok := m.cursors[id]
	if !ok {
		return fmt.Errorf("cursor %d: %w", id, ErrNotFound)
	}
	cur.Visible = true
	return nil
}

// Hide hides a cursor without deleting it.
func (m *CursorManager) Hide(id int) error {
	cur, ok := m.cursors[id]
	if !ok {
		return fmt.Errorf("cursor %d: %w", id, ErrNotFound)
	}
	cur.Visible = false
	if m.drag == cur {
		m.EndDrag()
	}
	return nil
}

// ShowAll makes every cursor visible.
func (m *CursorManager) ShowAll() {
	for _, cur := range m.cursors {
		cur.Visible = true
	}
}

// HideAll hides every cursor.
func (m *CursorManager) HideAll() {
	m.EndDrag()
	for _, cur := range m.cursors {
		cur.Visible = false
	}
}

// HitTest returns the visible cursor closest to p along x, if within
// the drag tolerance.
func (m *CursorManager) HitTest(p geometry.Point2D) (*Cursor, bool) {
	var best *Cursor
	bestDist := m.chart.settings.CursorTolerance
	for _, id := range sortedIDs(m.cursors) {
		cur := m.cursors[id]
		if !cur.Visible {
			continue
		}
		if d := m.chart.X.RelativeDistance(p.X, cur.X); d <= bestDist {
			best, bestDist = cur, d
		}
	}
	return best, best != nil
}

// BeginDrag grabs the cursor under p.
func (m *CursorManager) BeginDrag(p geometry.Point2D) bool {
	cur, ok := m.HitTest(p)
	if !ok {
		return false
	}
	cur.Dragging = true
	m.drag = cur
	return true
}

// Drag moves the grabbed cursor to p.X while p.X stays within the visible
// x range.
func (m *CursorManager) Drag(p geometry.Point2D) bool {
	if m.drag == nil || !m.chart.X.Range.Contains(p.X) {
		return false
	}
	m.update(m.drag, p.X)
	return true
}

// EndDrag releases the grabbed cursor.
func (m *CursorManager) EndDrag() {
	if m.drag != nil {
		m.drag.Dragging = false
		m.drag = nil
	}
}

// Dragging returns the cursor being dragged, or nil.
func (m *CursorManager) Dragging() *Cursor {
	return m.drag
}

// Link makes cursor id drive cursor peerID of another manager. Moves on the
// driver are forwarded; the link is recorded on both sides.
func (m *CursorManager) Link(id int, other *CursorManager, peerID int) error {
	cur, ok := m.cursors[id]
	if !ok {
		return fmt.Errorf("cursor %d: %w", id, ErrNotFound)
	}
	peer, ok := other.cursors[peerID]
	if !ok {
		return fmt.Errorf("extension cursor %d: %w", peerID, ErrNotFound)
	}
	m.unlink(cur)
	other.unlink(peer)
	cur.link = &cursorLink{peer: peer, drives: true}
	peer.link = &cursorLink{peer: cur}
	other.update(peer, cur.X)
	return nil
}

// Extend creates a cursor on the sub-chart bound to seriesID and links it
// as the extension of cursor id.
func (m *CursorManager) Extend(id int, other *CursorManager, seriesID int) (*Cursor, error) {
	cur, ok := m.cursors[id]
	if !ok {
		return nil, fmt.Errorf("cursor %d: %w", id, ErrNotFound)
	}
	peer, err := other.Add(seriesID, cur.X)
	if err != nil {
		return nil, err
	}
	if err := m.Link(id, other, peer.ID); err != nil {
		other.Destroy(peer.ID)
		return nil, err
	}
	return peer, nil
}

// Unlink clears the extension link of a cursor on both sides.
func (m *CursorManager) Unlink(id int) error {
	cur, ok := m.cursors[id]
	if !ok {
		return fmt.Errorf("cursor %d: %w", id, ErrNotFound)
	}
	m.unlink(cur)
	return nil
}

func (m *CursorManager) unlink(cur *Cursor) {
	if cur.link == nil {
		return
	}
	peer := cur.link.peer
	if peer.link != nil && peer.link.peer == cur {
		peer.link = nil
	}
	cur.link = nil
}

// Destroy removes a cursor, clears any extension link and releases its id.
func (m *CursorManager) Destroy(id int) error {
	cur, ok := m.cursors[id]
	if !ok {
		return fmt.Errorf("cursor %d: %w", id, ErrNotFound)
	}
	if m.drag == cur {
		m.EndDrag()
	}
	m.unlink(cur)
	delete(m.cursors, id)
	m.ids.Release(id)
	m.chart.Emit(EventOverlayChanged, nil)
	return nil
}

// DestroyBoundTo removes every cursor bound to seriesID.
func (m *CursorManager) DestroyBoundTo(seriesID int) {
	for _, id := range sortedIDs(m.cursors) {
		if m.cursors[id].SeriesID == seriesID {
			m.Destroy(id)
		}
	}
}

// Clear removes every cursor.
func (m *CursorManager) Clear() {
	for _, id := range sortedIDs(m.cursors) {
		m.Destroy(id)
	}
}
