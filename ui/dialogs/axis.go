// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"smart-chart/internal/chart"
	"smart-chart/pkg/geometry"
)

// AxisFields is the raw text of the axis settings form.
type AxisFields struct {
	XTitle, XScale, XMin, XMax string
	YTitle, YScale, YMin, YMax string
}

// FieldsFromChart fills the form from the chart's current axes.
func FieldsFromChart(c *chart.Chart) AxisFields {
	return AxisFields{
		XTitle: c.X.Title, XScale: c.X.Scale.String(),
		XMin: formatValue(c.X.Min()), XMax: formatValue(c.X.Max()),
		YTitle: c.Y.Title, YScale: c.Y.Scale.String(),
		YMin: formatValue(c.Y.Min()), YMax: formatValue(c.Y.Max()),
	}
}

// Parse converts the form into axis settings. Only syntax is checked here;
// range and scale rules are enforced by the chart when applied.
func (f AxisFields) Parse() (chart.AxisSettings, error) {
	var s chart.AxisSettings
	var ok bool
	if s.XScale, ok = chart.ParseScale(f.XScale); !ok {
		return s, fmt.Errorf("x scale %q is not linear or log", f.XScale)
	}
	if s.YScale, ok = chart.ParseScale(f.YScale); !ok {
		return s, fmt.Errorf("y scale %q is not linear or log", f.YScale)
	}
	var err error
	if s.XRange, err = parseRange("x", f.XMin, f.XMax); err != nil {
		return s, err
	}
	if s.YRange, err = parseRange("y", f.YMin, f.YMax); err != nil {
		return s, err
	}
	s.XTitle, s.YTitle = strings.TrimSpace(f.XTitle), strings.TrimSpace(f.YTitle)
	return s, nil
}

func parseRange(axis, lo, hi string) (geometry.Range, error) {
	min, err := ParseValue(lo)
	if err != nil {
		return geometry.Range{}, fmt.Errorf("%s min: %w", axis, err)
	}
	max, err := ParseValue(hi)
	if err != nil {
		return geometry.Range{}, fmt.Errorf("%s max: %w", axis, err)
	}
	return geometry.NewRange(min, max), nil
}

// ParseValue parses a number typed by the user.
func ParseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// Apply parses the form and applies it to c atomically.
func (f AxisFields) Apply(c *chart.Chart) error {
	s, err := f.Parse()
	if err != nil {
		return err
	}
	return c.ApplyAxisSettings(s)
}

// AxisDialog edits the scale, range and title of both axes. Invalid input
// is reported inline and the dialog stays open.
type AxisDialog struct {
	chart  *chart.Chart
	window fyne.Window

	xTitle, xMin, xMax *widget.Entry
	yTitle, yMin, yMax *widget.Entry
	xScale, yScale     *widget.RadioGroup
	message            *widget.Label

	onApply func()
}

// NewAxisDialog creates an axis settings dialog for c.
func NewAxisDialog(c *chart.Chart, window fyne.Window, onApply func()) *AxisDialog {
	return &AxisDialog{chart: c, window: window, onApply: onApply}
}

// Show displays the dialog.
func (d *AxisDialog) Show() {
	content := d.createContent()
	dlg := dialog.NewCustomWithoutButtons("Axis Settings: "+d.chart.Title, content, d.window)

	apply := widget.NewButtonWithIcon("Apply", theme.ConfirmIcon(), func() {
		if err := d.fields().Apply(d.chart); err != nil {
			d.message.SetText(err.Error())
			return
		}
		d.message.SetText("")
		if d.onApply != nil {
			d.onApply()
		}
		dlg.Hide()
	})
	apply.Importance = widget.HighImportance
	cancel := widget.NewButtonWithIcon("Cancel", theme.CancelIcon(), dlg.Hide)
	dlg.SetButtons([]fyne.CanvasObject{cancel, apply})
	dlg.Resize(fyne.NewSize(420, 420))
	dlg.Show()
}

func (d *AxisDialog) createContent() fyne.CanvasObject {
	f := FieldsFromChart(d.chart)
	scales := []string{chart.ScaleLinear.String(), chart.ScaleLog.String()}

	entry := func(text string) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(text)
		return e
	}
	d.xTitle, d.xMin, d.xMax = entry(f.XTitle), entry(f.XMin), entry(f.XMax)
	d.yTitle, d.yMin, d.yMax = entry(f.YTitle), entry(f.YMin), entry(f.YMax)
	d.xScale = widget.NewRadioGroup(scales, nil)
	d.xScale.Horizontal = true
	d.xScale.SetSelected(f.XScale)
	d.yScale = widget.NewRadioGroup(scales, nil)
	d.yScale.Horizontal = true
	d.yScale.SetSelected(f.YScale)

	d.message = widget.NewLabel("")
	d.message.Importance = widget.DangerImportance
	d.message.Wrapping = fyne.TextWrapWord

	xForm := widget.NewForm(
		widget.NewFormItem("Title", d.xTitle),
		widget.NewFormItem("Scale", d.xScale),
		widget.NewFormItem("Minimum", d.xMin),
		widget.NewFormItem("Maximum", d.xMax),
	)
	yForm := widget.NewForm(
		widget.NewFormItem("Title", d.yTitle),
		widget.NewFormItem("Scale", d.yScale),
		widget.NewFormItem("Minimum", d.yMin),
		widget.NewFormItem("Maximum", d.yMax),
	)
	return container.NewVBox(
		widget.NewCard("X Axis", "", xForm),
		widget.NewCard("Y Axis", "", yForm),
		d.message,
	)
}

func (d *AxisDialog) fields() AxisFields {
	return AxisFields{
		XTitle: d.xTitle.Text, XScale: d.xScale.Selected, XMin: d.xMin.Text, XMax: d.xMax.Text,
		YTitle: d.yTitle.Text, YScale: d.yScale.Selected, YMin: d.yMin.Text, YMax: d.yMax.Text,
	}
}
