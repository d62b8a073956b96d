package mainwindow

import (
	"smart-chart/internal/app"
	"smart-chart/internal/chart"
)

// chartAreaExtras are offered on empty chart area after the chart's own
// actions.
var chartAreaExtras = []chart.ActionID{
	chart.ActionZoomIn,
	chart.ActionZoomOut,
	chart.ActionCursorAdd,
	chart.ActionCursorShowAll,
	chart.ActionCursorHideAll,
	chart.ActionAuxAddHorizontal,
	chart.ActionAuxAddVertical,
	chart.ActionAuxClear,
	app.ActionGainMargin,
	app.ActionPhaseMargin,
}

// menuActions lists the entries of a context menu opened on c.
func menuActions(c *chart.Chart, m *chart.ContextMenu) []chart.ActionID {
	ids := make([]chart.ActionID, 0, len(m.Actions)+len(chartAreaExtras))
	for _, id := range m.Actions {
		if id == chart.ActionCursorExtend && c.SubChart() == nil {
			continue
		}
		ids = append(ids, id)
	}
	if m.Target == chart.TargetChart {
		ids = append(ids, chartAreaExtras...)
	}
	return ids
}

// actionArgs fills the operands id expects. seriesID is the response series
// on the chart the menu was opened on; subSeriesID the one on its sub-chart.
func actionArgs(id chart.ActionID, m *chart.ContextMenu, seriesID, subSeriesID int) chart.ActionArgs {
	a := chart.ActionArgs{ID: m.ID, Point: m.At}
	switch id {
	case chart.ActionCursorAdd:
		a.SeriesID, a.Value = seriesID, m.At.X
	case chart.ActionCursorExtend:
		a.SeriesID = subSeriesID
	case chart.ActionAuxShowAll, chart.ActionAuxShowNext:
		a.SeriesID = seriesID
	case chart.ActionAuxAddHorizontal:
		a.Value = m.At.Y
	case chart.ActionAuxAddVertical:
		a.Value = m.At.X
	}
	return a
}

// prompt is the extra input an action needs before it can run.
type prompt int

const (
	promptNone prompt = iota
	promptValue
	promptColor
	promptFile
)

func promptFor(id chart.ActionID) prompt {
	switch id {
	case chart.ActionAuxAddHorizontal, chart.ActionAuxAddVertical, chart.ActionAuxMove:
		return promptValue
	case chart.ActionAuxColor, chart.ActionMeasureColor:
		return promptColor
	case chart.ActionExportChart, chart.ActionExportSeries:
		return promptFile
	}
	return promptNone
}

// actionTitle returns the menu caption of id.
func actionTitle(id chart.ActionID) string {
	if t, ok := chart.ActionTitles[id]; ok {
		return t
	}
	return string(id)
}

// toolChoices are the toolbar tool names in display order.
var toolChoices = []chart.Tool{
	chart.ToolNone,
	chart.ToolPan,
	chart.ToolZoom,
	chart.ToolCursor,
	chart.ToolMeasure,
	chart.ToolAuxHorizontal,
	chart.ToolAuxVertical,
}

// parseTool maps a toolbar label back to its tool.
func parseTool(name string) chart.Tool {
	for _, t := range toolChoices {
		if t.String() == name {
			return t
		}
	}
	return chart.ToolNone
}
