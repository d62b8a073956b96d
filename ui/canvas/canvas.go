// Package canvas provides the interactive chart widget.
package canvas

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"smart-chart/internal/chart"
	"smart-chart/pkg/geometry"
)

// Plot area insets in device-independent pixels.
const (
	marginLeft   = 64
	marginRight  = 16
	marginTop    = 28
	marginBottom = 44
)

// ChartCanvas draws a chart and feeds mouse input into it.
type ChartCanvas struct {
	widget.BaseWidget

	chart  *chart.Chart
	locker sync.Locker

	// Display state
	raster   *fynecanvas.Raster
	lastSize fyne.Size

	// Interaction state
	pressed   bool
	button    chart.Button
	lastPixel geometry.Point2D

	// Last rendered output for tests and export previews
	lastOutput *image.RGBA

	// Callbacks
	onContextMenu func(menu *chart.ContextMenu, pos fyne.Position)
	onReadout     func(text string)
	onChanged     func()
}

var (
	_ desktop.Mouseable = (*ChartCanvas)(nil)
	_ desktop.Hoverable = (*ChartCanvas)(nil)
	_ fyne.Draggable    = (*ChartCanvas)(nil)
	_ fyne.Scrollable   = (*ChartCanvas)(nil)
)

// NewChartCanvas creates a widget for c. locker, when not nil, is held
// while the chart is read or changed.
func NewChartCanvas(c *chart.Chart, locker sync.Locker) *ChartCanvas {
	cc := &ChartCanvas{chart: c, locker: locker}
	cc.raster = fynecanvas.NewRaster(cc.draw)
	cc.raster.ScaleMode = fynecanvas.ImageScalePixels
	cc.raster.SetMinSize(fyne.NewSize(320, 200))
	cc.ExtendBaseWidget(cc)
	return cc
}

// Chart returns the displayed chart.
func (cc *ChartCanvas) Chart() *chart.Chart {
	return cc.chart
}

// SetChart swaps the displayed chart, e.g. after a layout change.
func (cc *ChartCanvas) SetChart(c *chart.Chart) {
	cc.lock()
	cc.chart = c
	cc.pressed = false
	cc.lastSize = fyne.Size{}
	cc.unlock()
	cc.Refresh()
}

// OnContextMenu sets the callback invoked for a right click.
func (cc *ChartCanvas) OnContextMenu(callback func(menu *chart.ContextMenu, pos fyne.Position)) {
	cc.onContextMenu = callback
}

// OnReadout sets the callback invoked when the hover readout changes.
func (cc *ChartCanvas) OnReadout(callback func(text string)) {
	cc.onReadout = callback
}

// OnChanged sets the callback invoked after input changed the chart.
func (cc *ChartCanvas) OnChanged(callback func()) {
	cc.onChanged = callback
}

// GetRenderedOutput returns the last drawn image.
func (cc *ChartCanvas) GetRenderedOutput() *image.RGBA {
	return cc.lastOutput
}

func (cc *ChartCanvas) lock() {
	if cc.locker != nil {
		cc.locker.Lock()
	}
}

func (cc *ChartCanvas) unlock() {
	if cc.locker != nil {
		cc.locker.Unlock()
	}
}

// syncViewport keeps the chart's viewport equal to the plot area.
func (cc *ChartCanvas) syncViewport(size fyne.Size) {
	if size == cc.lastSize || size.Width <= marginLeft+marginRight || size.Height <= marginTop+marginBottom {
		return
	}
	cc.lastSize = size
	cc.chart.SetViewport(PlotArea(float64(size.Width), float64(size.Height)))
}

// PlotArea returns the plot rectangle inside a widget of the given size.
func PlotArea(w, h float64) geometry.Rect {
	return geometry.NewRect(marginLeft, marginTop, w-marginLeft-marginRight, h-marginTop-marginBottom)
}

func toPixel(pos fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)}
}

func toButton(b desktop.MouseButton) chart.Button {
	switch b {
	case desktop.MouseButtonSecondary:
		return chart.ButtonRight
	case desktop.MouseButtonTertiary:
		return chart.ButtonMiddle
	}
	return chart.ButtonLeft
}

// MouseDown routes a press into the chart.
func (cc *ChartCanvas) MouseDown(ev *desktop.MouseEvent) {
	px := toPixel(ev.Position)
	cc.lock()
	cc.syncViewport(cc.Size())
	cc.pressed, cc.button, cc.lastPixel = true, toButton(ev.Button), px
	menu := cc.chart.Press(cc.button, px)
	cc.unlock()

	if menu != nil && cc.onContextMenu != nil {
		cc.onContextMenu(menu, ev.AbsolutePosition)
	}
	cc.changed()
}

// MouseUp routes a release into the chart.
func (cc *ChartCanvas) MouseUp(ev *desktop.MouseEvent) {
	cc.lock()
	cc.pressed = false
	cc.chart.Release(toButton(ev.Button), toPixel(ev.Position))
	cc.unlock()
	cc.changed()
}

// Dragged moves with a button held.
func (cc *ChartCanvas) Dragged(ev *fyne.DragEvent) {
	cc.move(toPixel(ev.Position))
}

// DragEnd is handled by MouseUp.
func (cc *ChartCanvas) DragEnd() {}

// MouseIn is part of desktop.Hoverable.
func (cc *ChartCanvas) MouseIn(ev *desktop.MouseEvent) {
	cc.move(toPixel(ev.Position))
}

// MouseMoved updates hover state and the readout.
func (cc *ChartCanvas) MouseMoved(ev *desktop.MouseEvent) {
	cc.move(toPixel(ev.Position))
}

// MouseOut is part of desktop.Hoverable.
func (cc *ChartCanvas) MouseOut() {}

func (cc *ChartCanvas) move(px geometry.Point2D) {
	cc.lock()
	cc.syncViewport(cc.Size())
	cc.lastPixel = px
	cc.chart.Move(px)
	readout := cc.chart.Readout()
	cc.unlock()

	if cc.onReadout != nil {
		cc.onReadout(readout)
	}
	cc.Refresh()
}

// Scrolled zooms about the mouse position.
func (cc *ChartCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY == 0 {
		return
	}
	cc.lock()
	cc.syncViewport(cc.Size())
	cc.chart.Wheel(float64(ev.Scrolled.DY), toPixel(ev.Position))
	cc.unlock()
	cc.changed()
}

func (cc *ChartCanvas) changed() {
	if cc.onChanged != nil {
		cc.onChanged()
	}
	cc.Refresh()
}

// Refresh redraws the chart.
func (cc *ChartCanvas) Refresh() {
	cc.raster.Refresh()
}

// draw is the raster drawing function.
func (cc *ChartCanvas) draw(w, h int) image.Image {
	size := cc.Size()
	if size.Width <= 0 || size.Height <= 0 {
		size = fyne.NewSize(float32(w), float32(h))
	}
	cc.lock()
	cc.syncViewport(size)
	scene := cc.chart.Scene()
	m := cc.chart.Mapper()
	xa, ya := *m.X, *m.Y
	mapper := chart.Mapper{X: &xa, Y: &ya, Viewport: m.Viewport}
	cc.unlock()

	scale := float64(w) / float64(size.Width)
	output := Render(scene, &mapper, w, h, scale)
	cc.lastOutput = output
	return output
}

// CreateRenderer implements fyne.Widget.
func (cc *ChartCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &chartCanvasRenderer{canvas: cc}
}

type chartCanvasRenderer struct {
	canvas *ChartCanvas
}

func (r *chartCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
}

func (r *chartCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.raster.MinSize()
}

func (r *chartCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *chartCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *chartCanvasRenderer) Destroy() {}
