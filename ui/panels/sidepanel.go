// Package panels provides UI panels for the application.
package panels

import (
	"log"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"smart-chart/internal/app"
	"smart-chart/internal/chart"
)

// SidePanel shows the overlays of every chart and a summary of the loaded
// response in tabs.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	// Overlays tab
	list     *widget.List
	rows     []Row
	selected int
	deleteBt *widget.Button

	// Response tab
	summary *widget.Label

	onChanged func()
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State) *SidePanel {
	sp := &SidePanel{state: state, selected: -1}

	sp.list = widget.NewList(
		func() int { return len(sp.rows) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(sp.rows) {
				obj.(*widget.Label).SetText(sp.rows[id].Text)
			}
		},
	)
	sp.list.OnSelected = func(id widget.ListItemID) {
		sp.selected = id
		sp.deleteBt.Enable()
	}
	sp.list.OnUnselected = func(widget.ListItemID) {
		sp.selected = -1
		sp.deleteBt.Disable()
	}
	sp.deleteBt = widget.NewButton("Delete", sp.onDelete)
	sp.deleteBt.Disable()

	sp.summary = widget.NewLabel("")
	sp.summary.Wrapping = fyne.TextWrapWord

	sp.container = container.NewAppTabs(
		container.NewTabItem("Overlays", container.NewBorder(nil, sp.deleteBt, nil, nil, sp.list)),
		container.NewTabItem("Response", container.NewVScroll(sp.summary)),
	)
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// OnChanged sets the callback invoked after the panel changed a chart.
func (sp *SidePanel) OnChanged(callback func()) {
	sp.onChanged = callback
}

// Rows returns the listed overlays.
func (sp *SidePanel) Rows() []Row {
	return sp.rows
}

// Refresh re-reads the charts under the state lock. It must not be called
// while the lock is held.
func (sp *SidePanel) Refresh() {
	sp.state.Lock()
	var rows []Row
	for _, c := range sp.state.Charts() {
		rows = append(rows, OverlayRows(c)...)
	}
	summary := ResponseSummary(sp.state.Response)
	sp.state.Unlock()

	sp.rows = rows
	sp.selected = -1
	sp.list.UnselectAll()
	sp.deleteBt.Disable()
	sp.list.Refresh()
	sp.summary.SetText(strings.Join(summary, "\n"))
}

func (sp *SidePanel) dispatcherFor(title string) *chart.Dispatcher {
	if sp.state.Sub != nil && sp.state.Sub.Title == title {
		return sp.state.SubCommands
	}
	return sp.state.Commands
}

func (sp *SidePanel) onDelete() {
	if sp.selected < 0 || sp.selected >= len(sp.rows) {
		return
	}
	row := sp.rows[sp.selected]

	sp.state.Lock()
	err := sp.dispatcherFor(row.Chart).Dispatch(DeleteAction(row), chart.ActionArgs{ID: row.ID})
	sp.state.Unlock()
	if err != nil {
		log.Printf("delete %s %d: %v", row.Kind, row.ID, err)
		sp.state.Status.Show("Delete failed: %v", err)
	}
	if sp.onChanged != nil {
		sp.onChanged()
	}
}
