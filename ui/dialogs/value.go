package dialogs

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// ShowValueDialog asks for one number, e.g. an auxiliary line position.
// When onValue returns an error the message is shown and the dialog stays
// open.
func ShowValueDialog(title, label, initial string, window fyne.Window, onValue func(v float64) error) {
	entry := widget.NewEntry()
	entry.SetText(initial)
	message := widget.NewLabel("")
	message.Importance = widget.DangerImportance

	form := widget.NewForm(
		widget.NewFormItem(label, entry),
		widget.NewFormItem("", message),
	)
	dlg := dialog.NewCustomWithoutButtons(title, form, window)

	submit := func() {
		v, err := ParseValue(entry.Text)
		if err == nil {
			err = onValue(v)
		}
		if err != nil {
			message.SetText(err.Error())
			return
		}
		dlg.Hide()
	}
	entry.OnSubmitted = func(string) { submit() }

	ok := widget.NewButton("OK", submit)
	ok.Importance = widget.HighImportance
	dlg.SetButtons([]fyne.CanvasObject{widget.NewButton("Cancel", dlg.Hide), ok})
	dlg.Resize(fyne.NewSize(320, 160))
	dlg.Show()
	window.Canvas().Focus(entry)
}
