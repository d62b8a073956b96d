// Package chart implements the interactive annotation engine of a chart:
// series, axes, cursors, measurements, auxiliary lines, Nichols grid
// overlays and sub-chart range synchronization.
package chart

import (
	"fmt"
	"log"
	"math"

	"smart-chart/internal/nichols"
	"smart-chart/pkg/geometry"
)

// AxisSettings is the full axis configuration applied from a settings dialog.
type AxisSettings struct {
	XScale Scale
	XRange geometry.Range
	XTitle string
	YScale Scale
	YRange geometry.Range
	YTitle string
}

// Chart is one interactive chart view.
type Chart struct {
	Title string
	X, Y  *Axis

	Series   *SeriesStore
	Cursors  *CursorManager
	Measures *MeasurementEngine
	AuxLines *AuxLineEngine

	settings Settings
	mapper   *Mapper
	grid     *nichols.Grid

	defaultX, defaultY   geometry.Range
	originalX, originalY geometry.Range

	sync    *Synchronizer
	parent  *Chart
	syncing bool

	listeners map[EventType][]EventListener

	tool    Tool
	input   inputState
	readout string
}

// New creates a chart with linear [0,10] axes and an 800x600 viewport.
func New(title string, settings Settings) *Chart {
	c := &Chart{
		Title:     title,
		X:         NewAxis("x", ScaleLinear, 0, 10),
		Y:         NewAxis("y", ScaleLinear, 0, 10),
		settings:  settings,
		listeners: make(map[EventType][]EventListener),
	}
	c.mapper = &Mapper{X: c.X, Y: c.Y, Viewport: geometry.NewRect(0, 0, 800, 600)}
	c.Series = NewSeriesStore(settings.ShadowSamples)
	c.Cursors = newCursorManager(c)
	c.Measures = newMeasurementEngine(c)
	c.AuxLines = newAuxLineEngine(c)
	c.defaultX, c.defaultY = c.X.Range, c.Y.Range
	c.originalX, c.originalY = c.X.Range, c.Y.Range
	return c
}

// Settings returns the behavior settings.
func (c *Chart) Settings() Settings {
	return c.settings
}

// SetSettings replaces the behavior settings.
func (c *Chart) SetSettings(s Settings) {
	c.settings = s
	if c.sync != nil {
		c.sync.SyncX, c.sync.SyncY = s.SyncX, s.SyncY
	}
	c.refresh()
}

// Mapper returns the data/pixel transform.
func (c *Chart) Mapper() *Mapper {
	return c.mapper
}

// SetViewport resizes the plotting area and refreshes pixel anchors.
func (c *Chart) SetViewport(r geometry.Rect) {
	if r.Empty() {
		return
	}
	c.mapper.Viewport = r
	c.refresh()
	c.Emit(EventRangeChanged, c)
}

// Viewport returns the plotting area in pixels.
func (c *Chart) Viewport() geometry.Rect {
	return c.mapper.Viewport
}

// AddSeries stores points as a new series. Points that a logarithmic axis
// cannot show are rejected.
func (c *Chart) AddSeries(points []geometry.Point2D, name string) (int, error) {
	if err := c.checkScales(points); err != nil {
		return 0, err
	}
	id := c.Series.Add(points, name)
	c.Emit(EventSeriesChanged, id)
	return id, nil
}

// UpdateSeries replaces the points of a series and refreshes its cursors.
func (c *Chart) UpdateSeries(id int, points []geometry.Point2D) error {
	if err := c.checkScales(points); err != nil {
		return err
	}
	if err := c.Series.Update(id, points); err != nil {
		return err
	}
	c.Cursors.UpdateAll()
	c.Emit(EventSeriesChanged, id)
	return nil
}

// checkScales rejects non-positive values on a logarithmic axis.
func (c *Chart) checkScales(points []geometry.Point2D) error {
	for _, p := range points {
		if c.X.Scale == ScaleLog && p.X <= 0 {
			return newAxisError("x", "logarithmic scale cannot show x=%g", p.X)
		}
		if c.Y.Scale == ScaleLog && p.Y <= 0 {
			return newAxisError("y", "logarithmic scale cannot show y=%g", p.Y)
		}
	}
	return nil
}

// RemoveSeries deletes a series together with the cursors bound to it.
func (c *Chart) RemoveSeries(id int) error {
	if _, ok := c.Series.Get(id); !ok {
		return fmt.Errorf("series %d: %w", id, ErrNotFound)
	}
	c.Cursors.DestroyBoundTo(id)
	if err := c.Series.Remove(id); err != nil {
		return err
	}
	c.Emit(EventSeriesChanged, id)
	return nil
}

// XRange returns the visible x range.
func (c *Chart) XRange() geometry.Range { return c.X.Range }

// YRange returns the visible y range.
func (c *Chart) YRange() geometry.Range { return c.Y.Range }

// DefaultRange returns the reset baseline.
func (c *Chart) DefaultRange() (x, y geometry.Range) {
	return c.defaultX, c.defaultY
}

// OriginalRange returns the hard restore baseline.
func (c *Chart) OriginalRange() (x, y geometry.Range) {
	return c.originalX, c.originalY
}

// SetRange validates both ranges and applies them together.
func (c *Chart) SetRange(x, y geometry.Range) error {
	if err := validateRange("x", c.X.Scale, x); err != nil {
		return err
	}
	if err := validateRange("y", c.Y.Scale, y); err != nil {
		return err
	}
	c.X.Range, c.Y.Range = x, y
	c.rangeChanged()
	return nil
}

// SetXRange changes only the x range.
func (c *Chart) SetXRange(x geometry.Range) error {
	return c.SetRange(x, c.Y.Range)
}

// SetYRange changes only the y range.
func (c *Chart) SetYRange(y geometry.Range) error {
	return c.SetRange(c.X.Range, y)
}

// SetDefaultRange sets the reset baseline without touching the live range.
func (c *Chart) SetDefaultRange(x, y geometry.Range) error {
	if err := validateRange("x", c.X.Scale, x); err != nil {
		return err
	}
	if err := validateRange("y", c.Y.Scale, y); err != nil {
		return err
	}
	c.defaultX, c.defaultY = x, y
	return nil
}

// UpdateDefaultRange records the live range as both reset and restore
// baselines.
func (c *Chart) UpdateDefaultRange() {
	c.defaultX, c.defaultY = c.X.Range, c.Y.Range
	c.originalX, c.originalY = c.X.Range, c.Y.Range
}

// FitToData sets the live range to the visible data extent padded by
// margin (a fraction of the y span) and records it as both baselines.
func (c *Chart) FitToData(margin float64) error {
	xr, yr, ok := c.Series.DataExtent()
	if !ok {
		return fmt.Errorf("fit: %w", ErrNotFound)
	}
	if xr.Span() == 0 {
		xr = padded(c.X.Scale, xr, 0.5)
	}
	if yr.Span() == 0 {
		yr = padded(c.Y.Scale, yr, 0.5)
	} else {
		yr = padded(c.Y.Scale, yr, margin)
	}
	if err := c.SetRange(xr, yr); err != nil {
		return err
	}
	c.UpdateDefaultRange()
	return nil
}

// padded widens r by frac of its span on each side, or by frac of |mid|
// (at least frac) for a degenerate range. Log ranges are padded by factors.
func padded(scale Scale, r geometry.Range, frac float64) geometry.Range {
	if scale == ScaleLog {
		f := math.Pow(10, frac)
		if r.Span() > 0 {
			lmin, lmax := math.Log10(r.Min), math.Log10(r.Max)
			d := (lmax - lmin) * frac
			return geometry.NewRange(math.Pow(10, lmin-d), math.Pow(10, lmax+d))
		}
		return geometry.NewRange(r.Min/f, r.Max*f)
	}
	d := r.Span() * frac
	if d == 0 {
		d = math.Max(math.Abs(r.Mid())*frac, frac)
	}
	return geometry.NewRange(r.Min-d, r.Max+d)
}

// Reset returns to the default range.
func (c *Chart) Reset() {
	c.X.Range, c.Y.Range = c.defaultX, c.defaultY
	c.rangeChanged()
}

// Restore returns to the original range and makes it the default again.
func (c *Chart) Restore() {
	c.defaultX, c.defaultY = c.originalX, c.originalY
	c.Reset()
}

// Pan shifts the view by a pixel delta. Dragging right moves the data right.
func (c *Chart) Pan(dxPx, dyPx float64) {
	vp := c.mapper.Viewport
	tx := -dxPx / vp.Width
	ty := dyPx / vp.Height
	x := geometry.NewRange(c.X.Denormalize(tx), c.X.Denormalize(1+tx))
	y := geometry.NewRange(c.Y.Denormalize(ty), c.Y.Denormalize(1+ty))
	if err := c.SetRange(x, y); err != nil {
		log.Printf("pan: %v", err)
	}
}

// Zoom scales the view by factor around anchor (a data point). A factor
// above 1 zooms in.
func (c *Chart) Zoom(factor float64, anchor geometry.Point2D) {
	if factor <= 0 {
		return
	}
	zoomAxis := func(a *Axis, v float64) geometry.Range {
		t := a.Normalize(v)
		if math.IsNaN(t) {
			t = 0.5
		}
		return geometry.NewRange(a.Denormalize(t-t/factor), a.Denormalize(t+(1-t)/factor))
	}
	if err := c.SetRange(zoomAxis(c.X, anchor.X), zoomAxis(c.Y, anchor.Y)); err != nil {
		log.Printf("zoom: %v", err)
	}
}

// ZoomIn zooms in by the configured factor.
func (c *Chart) ZoomIn(anchor geometry.Point2D) {
	c.Zoom(c.settings.ZoomFactor, anchor)
}

// ZoomOut zooms out by the configured factor.
func (c *Chart) ZoomOut(anchor geometry.Point2D) {
	c.Zoom(1/c.settings.ZoomFactor, anchor)
}

// ZoomToRect zooms to a rectangle given in viewport pixels.
func (c *Chart) ZoomToRect(px geometry.Rect) error {
	if px.Empty() {
		return fmt.Errorf("zoom rectangle %vx%v: %w", px.Width, px.Height, ErrOutOfRange)
	}
	a := c.mapper.ViewportToData(px.TopLeft())
	b := c.mapper.ViewportToData(px.BottomRight())
	x := geometry.NewRange(math.Min(a.X, b.X), math.Max(a.X, b.X))
	y := geometry.NewRange(math.Min(a.Y, b.Y), math.Max(a.Y, b.Y))
	return c.SetRange(x, y)
}

// SetScale switches one axis between linear and log. Switching to log is
// rejected when any series has a non-positive value on that axis; a range
// reaching zero or below is replaced by the data extent.
func (c *Chart) SetScale(coord geometry.Coord, scale Scale) error {
	s := AxisSettings{
		XScale: c.X.Scale, XRange: c.X.Range, XTitle: c.X.Title,
		YScale: c.Y.Scale, YRange: c.Y.Range, YTitle: c.Y.Title,
	}
	xr, yr, hasData := c.Series.DataExtent()
	if coord == geometry.CoordX {
		s.XScale = scale
		if scale == ScaleLog && s.XRange.Min <= 0 && hasData && xr.Min > 0 {
			s.XRange = xr
		}
	} else {
		s.YScale = scale
		if scale == ScaleLog && s.YRange.Min <= 0 && hasData && yr.Min > 0 {
			s.YRange = yr
		}
	}
	return c.ApplyAxisSettings(s)
}

// ApplyAxisSettings validates a complete axis configuration and applies it
// only when every part is valid.
func (c *Chart) ApplyAxisSettings(s AxisSettings) error {
	if err := validateRange("x", s.XScale, s.XRange); err != nil {
		return err
	}
	if err := validateRange("y", s.YScale, s.YRange); err != nil {
		return err
	}
	if s.XScale == ScaleLog && !c.Series.allPositive(geometry.CoordX) {
		return newAxisError("x", "logarithmic scale needs positive data")
	}
	if s.YScale == ScaleLog && !c.Series.allPositive(geometry.CoordY) {
		return newAxisError("y", "logarithmic scale needs positive data")
	}

	scaleChanged := c.X.Scale != s.XScale || c.Y.Scale != s.YScale
	c.X.Scale, c.X.Range, c.X.Title = s.XScale, s.XRange, s.XTitle
	c.Y.Scale, c.Y.Range, c.Y.Title = s.YScale, s.YRange, s.YTitle
	c.Series.SetLogSpacing(s.XScale == ScaleLog)
	if scaleChanged {
		c.UpdateDefaultRange()
	}
	c.rangeChanged()
	return nil
}

// EnableNicholsGrid shows or hides the M/N contour overlay.
func (c *Chart) EnableNicholsGrid(on bool) {
	if !on {
		c.grid = nil
	} else if c.grid == nil {
		c.grid = nichols.NewGrid()
		c.grid.Refresh(c.X.Range)
	}
	c.Emit(EventOverlayChanged, c.grid)
}

// NicholsGrid returns the contour overlay, or nil when disabled.
func (c *Chart) NicholsGrid() *nichols.Grid {
	return c.grid
}

// NearestNicholsCurve returns the contour label closest to p, if any.
func (c *Chart) NearestNicholsCurve(p geometry.Point2D) (nichols.Curve, bool) {
	if c.grid == nil {
		return nichols.Curve{}, false
	}
	cur, _, ok := c.grid.Nearest(p, c.settings.NicholsLabelThreshold)
	return cur, ok
}

// refresh recomputes every overlay that depends on the ranges or viewport.
func (c *Chart) refresh() {
	c.Cursors.UpdateAll()
	c.AuxLines.Redraw()
	c.Measures.Refresh()
	if c.grid != nil {
		c.grid.Refresh(c.X.Range)
	}
}

// rangeChanged refreshes overlays, notifies listeners and propagates the
// new range to the sub-chart before returning.
func (c *Chart) rangeChanged() {
	c.refresh()
	c.Emit(EventRangeChanged, c)
	if c.sync != nil && !c.syncing {
		c.syncing = true
		if err := c.sync.Propagate(); err != nil {
			log.Printf("sync %q -> %q: %v", c.Title, c.sync.Sub.Title, err)
		}
		c.syncing = false
	}
}
