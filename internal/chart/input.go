package chart

import (
	"errors"
	"fmt"
	"math"

	"smart-chart/pkg/geometry"
)

// Tool represents the active interaction mode.
type Tool int

const (
	ToolNone Tool = iota
	ToolPan
	ToolZoom
	ToolCursor
	ToolMeasure
	ToolAuxHorizontal
	ToolAuxVertical
)

func (t Tool) String() string {
	switch t {
	case ToolPan:
		return "pan"
	case ToolZoom:
		return "zoom"
	case ToolCursor:
		return "cursor"
	case ToolMeasure:
		return "measure"
	case ToolAuxHorizontal:
		return "horizontal line"
	case ToolAuxVertical:
		return "vertical line"
	}
	return "none"
}

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Target is the kind of object a context menu was opened on.
type Target int

const (
	TargetChart Target = iota
	TargetCursor
	TargetMeasurement
	TargetAuxLine
)

// ContextMenu is the action set offered for a right click.
type ContextMenu struct {
	Target  Target
	ID      int
	At      geometry.Point2D // data space
	Actions []ActionID
}

// minBand is the smallest rubber band, in pixels, that triggers a zoom.
const minBand = 4

type inputState struct {
	panning   bool
	last      geometry.Point2D // pixels
	banding   bool
	bandStart geometry.Point2D
	bandEnd   geometry.Point2D
}

// SetTool changes the interaction mode. Leaving measure mode cancels a
// pending measurement.
func (c *Chart) SetTool(t Tool) {
	if c.tool == ToolMeasure && t != ToolMeasure {
		c.Measures.Cancel()
	}
	c.Cursors.EndDrag()
	c.input = inputState{}
	c.tool = t
	c.Emit(EventToolChanged, t)
}

// Tool returns the interaction mode.
func (c *Chart) Tool() Tool {
	return c.tool
}

// Readout returns the hover readout text.
func (c *Chart) Readout() string {
	return c.readout
}

// RubberBand returns the zoom rectangle being dragged, in pixels.
func (c *Chart) RubberBand() (geometry.Rect, bool) {
	if !c.input.banding {
		return geometry.Rect{}, false
	}
	return geometry.RectFromPoints(c.input.bandStart, c.input.bandEnd), true
}

// Press handles a button press at viewport pixel px. A right click returns
// the context menu to show, or nil.
func (c *Chart) Press(b Button, px geometry.Point2D) *ContextMenu {
	p := c.mapper.ViewportToData(px)
	switch b {
	case ButtonMiddle:
		c.input.panning, c.input.last = true, px
	case ButtonRight:
		return c.contextMenu(p)
	case ButtonLeft:
		if c.Measures.Following() != nil {
			c.Measures.EndLabelMove(p)
			return nil
		}
		c.leftPress(p, px)
	}
	return nil
}

func (c *Chart) leftPress(p, px geometry.Point2D) {
	switch c.tool {
	case ToolPan:
		c.input.panning, c.input.last = true, px
	case ToolZoom:
		c.input.banding, c.input.bandStart, c.input.bandEnd = true, px, px
	case ToolCursor:
		c.Cursors.BeginDrag(p)
	case ToolMeasure:
		m, err := c.Measures.Click(p)
		if errors.Is(err, ErrDegenerateMeasurement) {
			c.Emit(EventStatus, "Measurement points must differ")
		} else if m != nil && m.Complete() {
			c.Emit(EventStatus, m.Label)
		}
	case ToolAuxHorizontal, ToolAuxVertical:
		o, v := Horizontal, p.Y
		if c.tool == ToolAuxVertical {
			o, v = Vertical, p.X
		}
		if _, err := c.AuxLines.Add(o, v); err != nil {
			c.Emit(EventStatus, err.Error())
		}
	}
}

// Move handles pointer motion to viewport pixel px.
func (c *Chart) Move(px geometry.Point2D) {
	p := c.mapper.ViewportToData(px)
	switch {
	case c.input.panning:
		d := px.Sub(c.input.last)
		c.input.last = px
		c.Pan(d.X, d.Y)
	case c.input.banding:
		c.input.bandEnd = px
		c.Emit(EventOverlayChanged, nil)
	case c.Cursors.Dragging() != nil:
		if c.Cursors.Drag(p) {
			c.Emit(EventOverlayChanged, c.Cursors.Dragging())
		}
	case c.Measures.Following() != nil:
		c.Measures.MoveLabel(p)
		c.Emit(EventOverlayChanged, nil)
	default:
		if c.AuxLines.Hover(p) {
			c.Emit(EventOverlayChanged, nil)
		}
	}
	c.updateReadout(p)
}

// Release handles a button release at viewport pixel px.
func (c *Chart) Release(b Button, px geometry.Point2D) {
	if c.input.panning && (b == ButtonMiddle || b == ButtonLeft) {
		c.input.panning = false
	}
	if b != ButtonLeft {
		return
	}
	c.Cursors.EndDrag()
	if c.input.banding {
		c.input.banding = false
		r := geometry.RectFromPoints(c.input.bandStart, px)
		if r.Width >= minBand && r.Height >= minBand {
			if err := c.ZoomToRect(r); err != nil {
				c.Emit(EventStatus, err.Error())
			}
		} else {
			c.Emit(EventOverlayChanged, nil)
		}
	}
}

// Wheel zooms in for positive delta and out for negative, around px.
func (c *Chart) Wheel(delta float64, px geometry.Point2D) {
	if delta == 0 {
		return
	}
	anchor := c.mapper.ViewportToData(px)
	if delta > 0 {
		c.ZoomIn(anchor)
	} else {
		c.ZoomOut(anchor)
	}
}

// contextMenu picks the object under p. On empty canvas a pending
// measurement is cancelled instead of opening the chart menu.
func (c *Chart) contextMenu(p geometry.Point2D) *ContextMenu {
	if m, ok := c.Measures.HitTest(p); ok {
		return &ContextMenu{Target: TargetMeasurement, ID: m.ID, At: p, Actions: measurementActions}
	}
	if l, ok := c.AuxLines.FindNearest(p); ok {
		return &ContextMenu{Target: TargetAuxLine, ID: l.ID, At: p, Actions: auxLineActions}
	}
	if cur, ok := c.Cursors.HitTest(p); ok {
		return &ContextMenu{Target: TargetCursor, ID: cur.ID, At: p, Actions: cursorActions}
	}
	if c.tool == ToolMeasure && c.Measures.Cancel() {
		c.Emit(EventStatus, "Measurement cancelled")
		return nil
	}
	return &ContextMenu{Target: TargetChart, At: p, Actions: chartActions}
}

// updateReadout formats the pointer position, the nearest series point and
// the nearest Nichols contour.
func (c *Chart) updateReadout(p geometry.Point2D) {
	text := fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
	if np, _, ok := c.Series.NearestPoint(p, c.settings.PointHitTolerance, c.mapper.PixelDistance); ok {
		text = fmt.Sprintf("(%.2f, %.2f)", np.X, np.Y)
	}
	if curve, ok := c.NearestNicholsCurve(p); ok {
		text += "  " + curve.Label
	}
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		text = ""
	}
	if text != c.readout {
		c.readout = text
		c.Emit(EventReadout, text)
	}
}
