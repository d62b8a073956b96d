package dialogs

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"smart-chart/internal/chart"
	"smart-chart/pkg/colorutil"
)

// SeriesDialog lists the series of a chart and edits which are visible.
type SeriesDialog struct {
	store  *chart.SeriesStore
	window fyne.Window
	checks *widget.CheckGroup
	names  map[string]int

	onApply func(visible []int)
}

// NewSeriesDialog creates a visibility dialog for store.
func NewSeriesDialog(store *chart.SeriesStore, window fyne.Window, onApply func(visible []int)) *SeriesDialog {
	return &SeriesDialog{store: store, window: window, onApply: onApply}
}

// Show displays the dialog.
func (d *SeriesDialog) Show() {
	dialog.ShowCustomConfirm("Series", "Apply", "Cancel", d.createContent(), func(ok bool) {
		if !ok {
			return
		}
		ids := d.Selected()
		d.store.SetVisible(ids)
		if d.onApply != nil {
			d.onApply(ids)
		}
	}, d.window)
}

// SeriesOptions returns the check labels in series order, keyed to their ids.
func SeriesOptions(store *chart.SeriesStore) ([]string, map[string]int) {
	var labels []string
	names := make(map[string]int)
	for _, s := range store.All() {
		label := s.Name + "  " + colorutil.ToHex(s.Color)
		if _, dup := names[label]; dup {
			continue
		}
		labels = append(labels, label)
		names[label] = s.ID
	}
	return labels, names
}

func (d *SeriesDialog) createContent() fyne.CanvasObject {
	var labels []string
	labels, d.names = SeriesOptions(d.store)
	d.checks = widget.NewCheckGroup(labels, nil)
	var selected []string
	for _, label := range labels {
		if s, ok := d.store.Get(d.names[label]); ok && s.Visible {
			selected = append(selected, label)
		}
	}
	d.checks.SetSelected(selected)
	return container.NewVScroll(d.checks)
}

// Selected returns the ids of the checked series.
func (d *SeriesDialog) Selected() []int {
	var ids []int
	for _, label := range d.checks.Selected {
		ids = append(ids, d.names[label])
	}
	return ids
}
