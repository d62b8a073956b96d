package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"gonum.org/v1/plot"

	"smart-chart/internal/chart"
	"smart-chart/pkg/colorutil"
	"smart-chart/pkg/geometry"
)

var (
	gridColor   = color.RGBA{R: 225, G: 225, B: 225, A: 255}
	bandColor   = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	handleColor = color.RGBA{R: 80, G: 80, B: 80, A: 255}
)

// renderer rasterizes one scene. Scene coordinates are device-independent
// pixels; scale converts them to raster pixels.
type renderer struct {
	out    *image.RGBA
	mapper *chart.Mapper
	scale  float64
	area   geometry.Rect   // plot area, raster pixels
	clip   image.Rectangle // area as an integer rectangle
}

// Render draws scene into a w x h image.
func Render(scene chart.Scene, m *chart.Mapper, w, h int, scale float64) *image.RGBA {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(colorutil.White), image.Point{}, draw.Src)

	vp := scene.Viewport
	r := &renderer{
		out:    out,
		mapper: m,
		scale:  scale,
		area:   geometry.NewRect(vp.X*scale, vp.Y*scale, vp.Width*scale, vp.Height*scale),
	}
	r.clip = image.Rect(int(r.area.X), int(r.area.Y), int(r.area.X+r.area.Width)+1, int(r.area.Y+r.area.Height)+1)

	r.drawTicks(scene)
	for _, l := range scene.Lines {
		r.drawPolyline(l)
	}
	for _, mk := range scene.Markers {
		r.drawMarker(mk)
	}
	for _, t := range scene.Texts {
		if t.Text == "" {
			continue
		}
		p := r.px(t.Pixel)
		drawLabel(out, t.Text, int(p.X), int(p.Y), t.Color)
	}
	for _, hp := range scene.Handles {
		p := r.px(hp)
		drawHandle(out, int(p.X), int(p.Y), int(3*scale), handleColor)
	}
	if scene.RubberBand != nil {
		b := scene.RubberBand
		a, c := r.px(b.TopLeft()), r.px(b.BottomRight())
		drawSelectionRect(out, int(a.X), int(a.Y), int(c.X), int(c.Y), bandColor)
	}
	r.drawFrame(scene)
	return out
}

func (r *renderer) px(p geometry.Point2D) geometry.Point2D {
	return p.Scale(r.scale)
}

func (r *renderer) dataToPx(p geometry.Point2D) geometry.Point2D {
	return r.px(r.mapper.DataToViewport(p))
}

func (r *renderer) thickness(width float64) int {
	t := int(math.Round(width * r.scale))
	if t < 1 {
		t = 1
	}
	return t
}

func (r *renderer) drawPolyline(l chart.Polyline) {
	th := r.thickness(l.Width)
	for i := 0; i+1 < len(l.Points); i++ {
		a, b, ok := clipSegment(r.dataToPx(l.Points[i]), r.dataToPx(l.Points[i+1]), r.area)
		if !ok {
			continue
		}
		drawLine(r.out, r.clip, int(math.Round(a.X)), int(math.Round(a.Y)),
			int(math.Round(b.X)), int(math.Round(b.Y)), l.Color, th, l.Dashed)
	}
}

func (r *renderer) drawMarker(mk chart.Marker) {
	p := r.dataToPx(mk.Point)
	if !p.IsFinite() || !r.area.Contains(p) {
		return
	}
	drawDot(r.out, r.clip, p.X, p.Y, mk.Radius*r.scale, mk.Color)
	if mk.Label != "" {
		drawLabel(r.out, mk.Label, int(p.X)+6, int(p.Y)-6, colorutil.Black)
	}
}

// ticks returns the gonum tick marks for one axis.
func ticks(a *chart.Axis) []plot.Tick {
	if a.Scale == chart.ScaleLog {
		return plot.LogTicks{Prec: -1}.Ticks(a.Min(), a.Max())
	}
	return plot.DefaultTicks{}.Ticks(a.Min(), a.Max())
}

// drawTicks draws grid lines at major ticks with their labels outside the
// plot area.
func (r *renderer) drawTicks(scene chart.Scene) {
	bottom := int(r.area.Y + r.area.Height)
	left := int(r.area.X)
	for _, t := range ticks(r.mapper.X) {
		if !r.mapper.X.Range.Contains(t.Value) {
			continue
		}
		x := int(math.Round(r.dataToPx(geometry.Point2D{X: t.Value, Y: r.mapper.Y.Min()}).X))
		if t.IsMinor() {
			drawLine(r.out, r.out.Bounds(), x, bottom, x, bottom+3, colorutil.Black, 1, false)
			continue
		}
		drawLine(r.out, r.clip, x, int(r.area.Y), x, bottom, gridColor, 1, false)
		drawLine(r.out, r.out.Bounds(), x, bottom, x, bottom+5, colorutil.Black, 1, false)
		drawCenteredLabel(r.out, t.Label, x, bottom+18, colorutil.Black)
	}
	for _, t := range ticks(r.mapper.Y) {
		if !r.mapper.Y.Range.Contains(t.Value) {
			continue
		}
		y := int(math.Round(r.dataToPx(geometry.Point2D{X: r.mapper.X.Min(), Y: t.Value}).Y))
		if t.IsMinor() {
			drawLine(r.out, r.out.Bounds(), left-3, y, left, y, colorutil.Black, 1, false)
			continue
		}
		drawLine(r.out, r.clip, left, y, int(r.area.X+r.area.Width), y, gridColor, 1, false)
		drawLine(r.out, r.out.Bounds(), left-5, y, left, y, colorutil.Black, 1, false)
		drawLabel(r.out, t.Label, left-8-textWidth(t.Label), y+4, colorutil.Black)
	}
}

// drawFrame draws the plot border, title and axis titles.
func (r *renderer) drawFrame(scene chart.Scene) {
	x1, y1 := int(r.area.X), int(r.area.Y)
	x2, y2 := int(r.area.X+r.area.Width), int(r.area.Y+r.area.Height)
	b := r.out.Bounds()
	drawLine(r.out, b, x1, y1, x2, y1, colorutil.Black, 1, false)
	drawLine(r.out, b, x1, y2, x2, y2, colorutil.Black, 1, false)
	drawLine(r.out, b, x1, y1, x1, y2, colorutil.Black, 1, false)
	drawLine(r.out, b, x2, y1, x2, y2, colorutil.Black, 1, false)

	mid := (x1 + x2) / 2
	if scene.Title != "" {
		drawCenteredLabel(r.out, scene.Title, mid, y1-10, colorutil.Black)
	}
	if scene.X.Title != "" {
		drawCenteredLabel(r.out, scene.X.Title, mid, y2+36, colorutil.Black)
	}
	if scene.Y.Title != "" {
		DrawRotatedLabel(r.out, scene.Y.Title, 10, (y1+y2)/2, colorutil.Black)
	}
	if scene.Readout != "" {
		drawLabel(r.out, scene.Readout, x2-textWidth(scene.Readout)-4, y1+14, colorutil.Gray)
	}
}
