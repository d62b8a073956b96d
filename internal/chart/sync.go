package chart

import (
	"fmt"

	"smart-chart/pkg/geometry"
)

// Synchronizer follows the range of a primary chart on a sub-chart.
type Synchronizer struct {
	Primary *Chart
	Sub     *Chart
	SyncX   bool
	SyncY   bool
}

// Propagate copies the primary x range and maps the primary y window,
// taken as fractions of the primary default y range, onto the sub-chart's
// default y range.
func (s *Synchronizer) Propagate() error {
	if !s.SyncX && !s.SyncY {
		return nil
	}
	x, y := s.Sub.X.Range, s.Sub.Y.Range
	if s.SyncX {
		x = s.Primary.X.Range
	}
	if s.SyncY {
		p := s.Primary
		y = ProportionalRange(p.Y.Scale, p.Y.Range, p.defaultY, s.Sub.Y.Scale, s.Sub.defaultY)
	}
	return s.Sub.SetRange(x, y)
}

// ProportionalRange expresses live as fractions of def (in def's scale)
// and returns the same fractions of target (in target's scale).
func ProportionalRange(scale Scale, live, def geometry.Range, targetScale Scale, target geometry.Range) geometry.Range {
	lo := normalize(scale, def, live.Min)
	hi := normalize(scale, def, live.Max)
	return geometry.NewRange(denormalize(targetScale, target, lo), denormalize(targetScale, target, hi))
}

// AttachSubChart links sub so it follows this chart's range changes, and
// aligns it immediately.
func (c *Chart) AttachSubChart(sub *Chart) error {
	if sub == nil || sub == c {
		return fmt.Errorf("attach: %w", ErrNoSubChart)
	}
	c.sync = &Synchronizer{Primary: c, Sub: sub, SyncX: c.settings.SyncX, SyncY: c.settings.SyncY}
	sub.parent = c
	return c.sync.Propagate()
}

// DetachSubChart removes the sub-chart link and any cursor extensions
// pointing into it.
func (c *Chart) DetachSubChart() error {
	if c.sync == nil {
		return ErrNoSubChart
	}
	sub := c.sync.Sub
	for _, cur := range c.Cursors.All() {
		if ext := cur.Extension(); ext != nil && ext.mgr == sub.Cursors {
			c.Cursors.unlink(cur)
		}
	}
	sub.parent = nil
	c.sync = nil
	return nil
}

// SubChart returns the linked sub-chart, or nil.
func (c *Chart) SubChart() *Chart {
	if c.sync == nil {
		return nil
	}
	return c.sync.Sub
}

// Parent returns the chart this one follows, or nil.
func (c *Chart) Parent() *Chart {
	return c.parent
}

// SetSync toggles x and y following on the sub-chart link.
func (c *Chart) SetSync(x, y bool) error {
	c.settings.SyncX, c.settings.SyncY = x, y
	if c.sync == nil {
		return ErrNoSubChart
	}
	c.sync.SyncX, c.sync.SyncY = x, y
	return c.sync.Propagate()
}

// ExtendCursor mirrors cursor id onto the sub-chart, bound to seriesID
// there.
func (c *Chart) ExtendCursor(id, seriesID int) (*Cursor, error) {
	if c.sync == nil {
		return nil, ErrNoSubChart
	}
	return c.Cursors.Extend(id, c.sync.Sub.Cursors, seriesID)
}
