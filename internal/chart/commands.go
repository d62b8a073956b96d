package chart

import (
	"fmt"
	"image/color"
	"math"

	"smart-chart/pkg/geometry"
)

// ActionID names a user command.
type ActionID string

const (
	ActionReset     ActionID = "view.reset"
	ActionRestore   ActionID = "view.restore"
	ActionFit       ActionID = "view.fit"
	ActionZoomIn    ActionID = "view.zoom-in"
	ActionZoomOut   ActionID = "view.zoom-out"
	ActionSetTool   ActionID = "view.tool"
	ActionLogX      ActionID = "axis.log-x"
	ActionLinearX   ActionID = "axis.linear-x"
	ActionSyncAxes  ActionID = "axis.sync"
	ActionGridOnOff ActionID = "view.nichols-grid"

	ActionCursorAdd     ActionID = "cursor.add"
	ActionCursorDelete  ActionID = "cursor.delete"
	ActionCursorHide    ActionID = "cursor.hide"
	ActionCursorShowAll ActionID = "cursor.show-all"
	ActionCursorHideAll ActionID = "cursor.hide-all"
	ActionCursorExtend  ActionID = "cursor.extend"

	ActionMeasureHorizontal ActionID = "measure.type.horizontal"
	ActionMeasureVertical   ActionID = "measure.type.vertical"
	ActionMeasurePoint      ActionID = "measure.type.point-to-point"
	ActionMeasureColor      ActionID = "measure.color"
	ActionMeasureMoveLabel  ActionID = "measure.move-label"
	ActionMeasureDelete     ActionID = "measure.delete"
	ActionMeasureDeleteLast ActionID = "measure.delete-last"
	ActionMeasureClear      ActionID = "measure.clear"

	ActionAuxAddHorizontal ActionID = "aux.add-horizontal"
	ActionAuxAddVertical   ActionID = "aux.add-vertical"
	ActionAuxMove          ActionID = "aux.move"
	ActionAuxColor         ActionID = "aux.color"
	ActionAuxShowAll       ActionID = "aux.intersections.all"
	ActionAuxShowNext      ActionID = "aux.intersections.next"
	ActionAuxClearPoints   ActionID = "aux.intersections.clear"
	ActionAuxDelete        ActionID = "aux.delete"
	ActionAuxClear         ActionID = "aux.clear"

	ActionExportChart  ActionID = "export.chart"
	ActionExportSeries ActionID = "export.series"
)

// ActionTitles holds the menu caption of each action.
var ActionTitles = map[ActionID]string{
	ActionReset:             "Reset View",
	ActionRestore:           "Restore Original View",
	ActionFit:               "Fit to Data",
	ActionZoomIn:            "Zoom In",
	ActionZoomOut:           "Zoom Out",
	ActionSetTool:           "Select Tool",
	ActionLogX:              "Logarithmic X Axis",
	ActionLinearX:           "Linear X Axis",
	ActionSyncAxes:          "Sync Sub-chart Axes",
	ActionGridOnOff:         "Nichols Grid",
	ActionCursorAdd:         "Add Cursor",
	ActionCursorDelete:      "Delete Cursor",
	ActionCursorHide:        "Hide Cursor",
	ActionCursorShowAll:     "Show All Cursors",
	ActionCursorHideAll:     "Hide All Cursors",
	ActionCursorExtend:      "Extend to Sub-chart",
	ActionMeasureHorizontal: "Horizontal Distance",
	ActionMeasureVertical:   "Vertical Distance",
	ActionMeasurePoint:      "Point to Point Distance",
	ActionMeasureColor:      "Change Color...",
	ActionMeasureMoveLabel:  "Move Text",
	ActionMeasureDelete:     "Delete Measurement",
	ActionMeasureDeleteLast: "Delete Last Measurement",
	ActionMeasureClear:      "Clear Measurements",
	ActionAuxAddHorizontal:  "Add Horizontal Line...",
	ActionAuxAddVertical:    "Add Vertical Line...",
	ActionAuxMove:           "Set Position...",
	ActionAuxColor:          "Change Color...",
	ActionAuxShowAll:        "Show All Intersections",
	ActionAuxShowNext:       "Show Next Intersection",
	ActionAuxClearPoints:    "Clear Intersections",
	ActionAuxDelete:         "Delete Line",
	ActionAuxClear:          "Clear Lines",
	ActionExportChart:       "Export Chart...",
	ActionExportSeries:      "Export Series...",
}

var (
	measurementActions = []ActionID{
		ActionMeasureHorizontal, ActionMeasureVertical, ActionMeasurePoint,
		ActionMeasureColor, ActionMeasureMoveLabel, ActionMeasureDelete,
	}
	auxLineActions = []ActionID{
		ActionAuxMove, ActionAuxColor, ActionAuxShowAll, ActionAuxShowNext,
		ActionAuxClearPoints, ActionAuxDelete,
	}
	cursorActions = []ActionID{ActionCursorExtend, ActionCursorHide, ActionCursorDelete}
	chartActions  = []ActionID{
		ActionReset, ActionRestore, ActionFit, ActionMeasureDeleteLast,
		ActionMeasureClear, ActionExportChart, ActionExportSeries,
	}
)

// ActionArgs carries the operands of a command. Fields not used by an
// action are ignored.
type ActionArgs struct {
	ID       int
	SeriesID int
	Value    float64
	Color    color.RGBA
	Point    geometry.Point2D
	Tool     Tool
	Enabled  bool
	Path     string
}

// Handler executes one command.
type Handler func(args ActionArgs) error

// Dispatcher maps action ids to handlers.
type Dispatcher struct {
	handlers map[ActionID]Handler
}

// NewDispatcher creates a dispatcher with every chart-level action of c
// registered. Export actions are left to the application.
func NewDispatcher(c *Chart) *Dispatcher {
	d := &Dispatcher{handlers: make(map[ActionID]Handler)}

	d.Register(ActionReset, func(ActionArgs) error { c.Reset(); return nil })
	d.Register(ActionRestore, func(ActionArgs) error { c.Restore(); return nil })
	d.Register(ActionFit, func(ActionArgs) error { return c.FitToData(0.05) })
	d.Register(ActionZoomIn, func(a ActionArgs) error { c.ZoomIn(c.anchorOr(a.Point)); return nil })
	d.Register(ActionZoomOut, func(a ActionArgs) error { c.ZoomOut(c.anchorOr(a.Point)); return nil })
	d.Register(ActionSetTool, func(a ActionArgs) error { c.SetTool(a.Tool); return nil })
	d.Register(ActionLogX, func(ActionArgs) error { return c.SetScale(geometry.CoordX, ScaleLog) })
	d.Register(ActionLinearX, func(ActionArgs) error { return c.SetScale(geometry.CoordX, ScaleLinear) })
	d.Register(ActionSyncAxes, func(a ActionArgs) error { return c.SetSync(a.Enabled, c.settings.SyncY) })
	d.Register(ActionGridOnOff, func(a ActionArgs) error { c.EnableNicholsGrid(a.Enabled); return nil })

	d.Register(ActionCursorAdd, func(a ActionArgs) error {
		_, err := c.Cursors.Add(a.SeriesID, a.Value)
		return err
	})
	d.Register(ActionCursorDelete, func(a ActionArgs) error { return c.Cursors.Destroy(a.ID) })
	d.Register(ActionCursorHide, func(a ActionArgs) error { return c.Cursors.Hide(a.ID) })
	d.Register(ActionCursorShowAll, func(ActionArgs) error { c.Cursors.ShowAll(); return nil })
	d.Register(ActionCursorHideAll, func(ActionArgs) error { c.Cursors.HideAll(); return nil })
	d.Register(ActionCursorExtend, func(a ActionArgs) error {
		_, err := c.ExtendCursor(a.ID, a.SeriesID)
		return err
	})

	d.Register(ActionMeasureHorizontal, func(a ActionArgs) error { return c.Measures.ChangeType(a.ID, MeasureHorizontal) })
	d.Register(ActionMeasureVertical, func(a ActionArgs) error { return c.Measures.ChangeType(a.ID, MeasureVertical) })
	d.Register(ActionMeasurePoint, func(a ActionArgs) error { return c.Measures.ChangeType(a.ID, MeasurePointToPoint) })
	d.Register(ActionMeasureColor, func(a ActionArgs) error { return c.Measures.SetColor(a.ID, a.Color) })
	d.Register(ActionMeasureMoveLabel, func(a ActionArgs) error { return c.Measures.BeginLabelMove(a.ID) })
	d.Register(ActionMeasureDelete, func(a ActionArgs) error { return c.Measures.Destroy(a.ID) })
	d.Register(ActionMeasureDeleteLast, func(ActionArgs) error { return c.Measures.DeleteLast() })
	d.Register(ActionMeasureClear, func(ActionArgs) error { c.Measures.Clear(); return nil })

	d.Register(ActionAuxAddHorizontal, func(a ActionArgs) error {
		_, err := c.AuxLines.Add(Horizontal, a.Value)
		return err
	})
	d.Register(ActionAuxAddVertical, func(a ActionArgs) error {
		_, err := c.AuxLines.Add(Vertical, a.Value)
		return err
	})
	d.Register(ActionAuxMove, func(a ActionArgs) error { return c.AuxLines.Move(a.ID, a.Value) })
	d.Register(ActionAuxColor, func(a ActionArgs) error { return c.AuxLines.SetColor(a.ID, a.Color) })
	d.Register(ActionAuxShowAll, func(a ActionArgs) error {
		_, err := c.AuxLines.RevealIntersections(a.ID, a.SeriesID)
		return err
	})
	d.Register(ActionAuxShowNext, func(a ActionArgs) error {
		_, err := c.AuxLines.ShowNextIntersection(a.ID, a.SeriesID)
		return err
	})
	d.Register(ActionAuxClearPoints, func(a ActionArgs) error { return c.AuxLines.ClearIntersections(a.ID) })
	d.Register(ActionAuxDelete, func(a ActionArgs) error { return c.AuxLines.Destroy(a.ID) })
	d.Register(ActionAuxClear, func(ActionArgs) error { c.AuxLines.Clear(); return nil })

	return d
}

// Register binds h to id, replacing any previous handler.
func (d *Dispatcher) Register(id ActionID, h Handler) {
	d.handlers[id] = h
}

// Has reports whether id has a handler.
func (d *Dispatcher) Has(id ActionID) bool {
	_, ok := d.handlers[id]
	return ok
}

// Dispatch runs the handler bound to id.
func (d *Dispatcher) Dispatch(id ActionID, args ActionArgs) error {
	h, ok := d.handlers[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownAction)
	}
	return h(args)
}

// anchorOr returns p, or the view center when p is the zero point.
func (c *Chart) anchorOr(p geometry.Point2D) geometry.Point2D {
	if p == (geometry.Point2D{}) || math.IsNaN(p.X) {
		return geometry.Point2D{X: c.X.Denormalize(0.5), Y: c.Y.Denormalize(0.5)}
	}
	return p
}
