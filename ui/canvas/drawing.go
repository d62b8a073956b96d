package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"smart-chart/pkg/geometry"
)

// labelFace is the bitmap font used for every caption.
var labelFace font.Face = basicfont.Face7x13

// dashPeriod is the on+off length of dashed lines, in steps.
const dashPeriod = 8

// drawLine draws a line between two points using Bresenham's algorithm.
// Pixels outside clip are skipped; a dashed line leaves every other run of
// dashPeriod/2 steps blank.
func drawLine(output *image.RGBA, clip image.Rectangle, x1, y1, x2, y2 int, col color.RGBA, thickness int, dashed bool) {
	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for step := 0; ; step++ {
		if !dashed || step%dashPeriod < dashPeriod/2 {
			// Draw thick point
			for t := -thickness / 2; t <= thickness/2; t++ {
				for s := -thickness / 2; s <= thickness/2; s++ {
					px, py := x1+s, y1+t
					if image.Pt(px, py).In(clip) {
						output.Set(px, py, col)
					}
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// clipSegment trims a-b to the rectangle r (Liang-Barsky). ok is false when
// nothing of the segment is inside or an end is not finite.
func clipSegment(a, b geometry.Point2D, r geometry.Rect) (geometry.Point2D, geometry.Point2D, bool) {
	if !a.IsFinite() || !b.IsFinite() {
		return a, b, false
	}
	t0, t1 := 0.0, 1.0
	dx, dy := b.X-a.X, b.Y-a.Y
	edges := [4][2]float64{
		{-dx, a.X - r.X},
		{dx, r.X + r.Width - a.X},
		{-dy, a.Y - r.Y},
		{dy, r.Y + r.Height - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return geometry.Point2D{X: a.X + t0*dx, Y: a.Y + t0*dy},
		geometry.Point2D{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}

// drawDot draws a filled circle.
func drawDot(output *image.RGBA, clip image.Rectangle, cx, cy, r float64, col color.RGBA) {
	r2 := r * r
	for y := int(cy - r - 1); y <= int(cy+r+1); y++ {
		for x := int(cx - r - 1); x <= int(cx+r+1); x++ {
			if !image.Pt(x, y).In(clip) {
				continue
			}
			dx, dy := float64(x)-cx, float64(y)-cy
			if dx*dx+dy*dy <= r2 {
				output.Set(x, y, col)
			}
		}
	}
}

// drawHandle draws a filled square centered on (cx, cy).
func drawHandle(output *image.RGBA, cx, cy, half int, col color.RGBA) {
	bounds := output.Bounds()
	for y := cy - half; y <= cy+half; y++ {
		for x := cx - half; x <= cx+half; x++ {
			if image.Pt(x, y).In(bounds) {
				output.Set(x, y, col)
			}
		}
	}
}

// drawSelectionRect draws the dashed rubber band.
func drawSelectionRect(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := output.Bounds()
	set := func(x, y int) {
		if (x+y)%4 < 2 && image.Pt(x, y).In(bounds) {
			output.Set(x, y, col)
		}
	}
	for x := x1; x <= x2; x++ {
		set(x, y1)
		set(x, y2)
	}
	for y := y1; y <= y2; y++ {
		set(x1, y)
		set(x2, y)
	}
}

// textWidth returns the rendered width of label in pixels.
func textWidth(label string) int {
	return font.MeasureString(labelFace, label).Ceil()
}

// drawLabel draws label with its baseline-left corner at (x, y).
func drawLabel(output *image.RGBA, label string, x, y int, col color.RGBA) {
	d := &font.Drawer{
		Dst:  output,
		Src:  image.NewUniform(col),
		Face: labelFace,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}

// drawCenteredLabel centers label horizontally on x.
func drawCenteredLabel(output *image.RGBA, label string, x, y int, col color.RGBA) {
	drawLabel(output, label, x-textWidth(label)/2, y, col)
}

// DrawRotatedLabel draws label reading bottom to top, centered on
// (centerX, centerY). Used for the y-axis title.
func DrawRotatedLabel(output *image.RGBA, label string, centerX, centerY int, col color.RGBA) {
	w := textWidth(label)
	h := labelFace.Metrics().Height.Ceil()
	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	drawLabel(tmp, label, 0, labelFace.Metrics().Ascent.Ceil(), col)

	bounds := output.Bounds()
	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < w; tx++ {
			c := tmp.RGBAAt(tx, ty)
			if c.A == 0 {
				continue
			}
			// Rotate 90 degrees counter-clockwise.
			x := centerX - h/2 + ty
			y := centerY + w/2 - tx
			if image.Pt(x, y).In(bounds) {
				output.Set(x, y, c)
			}
		}
	}
}
