// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"image/color"
	"log"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"smart-chart/internal/app"
	"smart-chart/internal/chart"
	"smart-chart/internal/version"
	"smart-chart/pkg/colorutil"
	"smart-chart/ui/canvas"
	"smart-chart/ui/dialogs"
	"smart-chart/ui/panels"
	"smart-chart/ui/prefs"
)

// watchDebounce coalesces bursts of writes from tools that save in steps.
const watchDebounce = 300 * time.Millisecond

var (
	responseExtensions = []string{".csv", ".txt", ".json", ".yaml", ".yml"}
	sessionExtension   = ".smartchart"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs

	primary *canvas.ChartCanvas
	sub     *canvas.ChartCanvas

	chartArea   *fyne.Container
	sidePanel   *panels.SidePanel
	statusBar   *widget.Label
	readout     *widget.Label
	toolSelect  *widget.Select
	measureType *widget.Select

	// Menu items that need state tracking
	watchItem *fyne.MenuItem
	gridItem  *fyne.MenuItem
	syncXItem *fyne.MenuItem
	bodeItem  *fyne.MenuItem
	nichItem  *fyne.MenuItem

	sessionPath string
	syncX       bool
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Smart Chart")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
		syncX:  state.Config.Sync.X,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.watchItem.Checked = p.Watch()

	w, h := p.WindowSize(1100, 760)
	mw.Resize(fyne.NewSize(float32(w), float32(h)))
	mw.SetCloseIntercept(func() {
		mw.SavePreferences()
		mw.state.Close()
		mw.Close()
	})

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.statusBar = widget.NewLabel("Ready")
	mw.readout = widget.NewLabel("")
	mw.chartArea = container.NewStack()
	mw.buildCanvases()

	mw.sidePanel = panels.NewSidePanel(mw.state)
	mw.sidePanel.OnChanged(mw.refreshCharts)

	toolbar := mw.createToolbar()

	// Chart area | side panel
	split := container.NewHSplit(mw.chartArea, mw.sidePanel.Container())
	split.SetOffset(0.78)

	content := container.NewBorder(
		toolbar, // top
		container.NewPadded(container.NewBorder(nil, nil, nil, mw.readout, mw.statusBar)), // bottom
		nil,   // left
		nil,   // right
		split, // center
	)

	mw.SetContent(content)
}

// buildCanvases creates the chart widgets for the current layout.
func (mw *MainWindow) buildCanvases() {
	mw.primary = mw.newCanvas(mw.state.Primary, mw.state.PrimarySeries)
	mw.sub = nil

	var area fyne.CanvasObject = mw.primary
	if mw.state.Sub != nil {
		mw.sub = mw.newCanvas(mw.state.Sub, mw.state.SubSeries)
		split := container.NewVSplit(mw.primary, mw.sub)
		split.SetOffset(0.55)
		area = split
	}
	mw.chartArea.Objects = []fyne.CanvasObject{area}
	mw.chartArea.Refresh()
}

func (mw *MainWindow) newCanvas(c *chart.Chart, series func() int) *canvas.ChartCanvas {
	cc := canvas.NewChartCanvas(c, mw.state)
	cc.OnReadout(func(text string) {
		mw.readout.SetText(text)
	})
	cc.OnChanged(mw.refreshCharts)
	cc.OnContextMenu(func(menu *chart.ContextMenu, pos fyne.Position) {
		mw.showContextMenu(cc, menu, series, pos)
	})
	return cc
}

// refreshCharts redraws every chart, since a change on one may move its
// peer, and re-reads the side panel. It takes the state lock.
func (mw *MainWindow) refreshCharts() {
	for _, cc := range mw.canvases() {
		cc.Refresh()
	}
	if mw.sidePanel != nil {
		mw.sidePanel.Refresh()
	}
}

func (mw *MainWindow) canvases() []*canvas.ChartCanvas {
	if mw.sub != nil {
		return []*canvas.ChartCanvas{mw.primary, mw.sub}
	}
	return []*canvas.ChartCanvas{mw.primary}
}

// createToolbar creates the toolbar with tool selection and view controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	names := make([]string, len(toolChoices))
	for i, t := range toolChoices {
		names[i] = t.String()
	}
	mw.toolSelect = widget.NewSelect(names, func(name string) {
		mw.setTool(parseTool(name))
	})
	mw.toolSelect.SetSelected(chart.ToolNone.String())

	types := []string{
		chart.MeasureHorizontal.String(),
		chart.MeasureVertical.String(),
		chart.MeasurePointToPoint.String(),
	}
	mw.measureType = widget.NewSelect(types, mw.onMeasureType)
	mw.measureType.SetSelected(mw.state.Primary.Settings().DefaultMeasureType.String())

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		mw.toolSelect,
		widget.NewLabel("Measure:"),
		mw.measureType,
		widget.NewSeparator(),
		widget.NewButton("-", func() { mw.dispatchAll(chart.ActionZoomOut) }),
		widget.NewButton("+", func() { mw.dispatchAll(chart.ActionZoomIn) }),
		widget.NewButton("Fit", func() { mw.dispatchAll(chart.ActionFit) }),
		widget.NewButton("Reset", func() { mw.dispatchAll(chart.ActionReset) }),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	mw.watchItem = fyne.NewMenuItem("Watch Response File", mw.onToggleWatch)

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Response...", mw.onOpenResponse),
		fyne.NewMenuItem("Reload Response", mw.onReloadResponse),
		mw.watchItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Session...", mw.onOpenSession),
		fyne.NewMenuItem("Save Session", mw.onSaveSession),
		fyne.NewMenuItem("Save Session As...", mw.onSaveSessionAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Chart...", func() { mw.onExport(mw.state.Primary, chart.ActionExportChart) }),
		fyne.NewMenuItem("Export Series...", func() { mw.onExport(mw.state.Primary, chart.ActionExportSeries) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			mw.SavePreferences()
			mw.state.Close()
			mw.app.Quit()
		}),
	)

	mw.gridItem = fyne.NewMenuItem("Nichols Grid", mw.onToggleGrid)
	mw.syncXItem = fyne.NewMenuItem("Sync Phase X Axis", mw.onToggleSyncX)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.dispatchAll(chart.ActionZoomIn) }),
		fyne.NewMenuItem("Zoom Out", func() { mw.dispatchAll(chart.ActionZoomOut) }),
		fyne.NewMenuItem("Fit to Data", func() { mw.dispatchAll(chart.ActionFit) }),
		fyne.NewMenuItem("Reset View", func() { mw.dispatchAll(chart.ActionReset) }),
		fyne.NewMenuItem("Restore Original View", func() { mw.dispatchAll(chart.ActionRestore) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Axis Settings...", func() { mw.onAxisSettings(mw.state.Primary) }),
		fyne.NewMenuItem("Phase Axis Settings...", func() {
			if mw.state.Sub != nil {
				mw.onAxisSettings(mw.state.Sub)
			}
		}),
		fyne.NewMenuItem("Series...", mw.onSeries),
		fyne.NewMenuItemSeparator(),
		mw.gridItem,
		mw.syncXItem,
	)

	mw.bodeItem = fyne.NewMenuItem("Bode", func() { mw.onPlotType(app.PlotBode) })
	mw.nichItem = fyne.NewMenuItem("Nichols", func() { mw.onPlotType(app.PlotNichols) })
	plotMenu := fyne.NewMenu("Plot", mw.bodeItem, mw.nichItem)

	analysisMenu := fyne.NewMenu("Analysis",
		fyne.NewMenuItem(actionTitle(app.ActionGainMargin), func() { mw.dispatch(mw.state.Commands, app.ActionGainMargin, chart.ActionArgs{}) }),
		fyne.NewMenuItem(actionTitle(app.ActionPhaseMargin), func() { mw.dispatch(mw.state.Commands, app.ActionPhaseMargin, chart.ActionArgs{}) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem(actionTitle(chart.ActionCursorShowAll), func() { mw.dispatchAll(chart.ActionCursorShowAll) }),
		fyne.NewMenuItem(actionTitle(chart.ActionCursorHideAll), func() { mw.dispatchAll(chart.ActionCursorHideAll) }),
		fyne.NewMenuItem(actionTitle(chart.ActionMeasureClear), func() { mw.dispatchAll(chart.ActionMeasureClear) }),
		fyne.NewMenuItem(actionTitle(chart.ActionAuxClear), func() { mw.dispatchAll(chart.ActionAuxClear) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, plotMenu, analysisMenu, helpMenu))
	mw.updateMenuChecks()
}

// updateMenuChecks mirrors the state into the checkable menu items.
func (mw *MainWindow) updateMenuChecks() {
	mw.gridItem.Checked = mw.state.Primary.NicholsGrid() != nil
	mw.gridItem.Disabled = mw.state.PlotType != app.PlotNichols
	mw.syncXItem.Checked = mw.state.Sub != nil && mw.syncX
	mw.syncXItem.Disabled = mw.state.Sub == nil
	mw.bodeItem.Checked = mw.state.PlotType == app.PlotBode
	mw.nichItem.Checked = mw.state.PlotType == app.PlotNichols
	if menu := mw.MainMenu(); menu != nil {
		menu.Refresh()
	}
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.Status.OnChange(func(text string) {
		if text == "" {
			text = "Ready"
		}
		mw.statusBar.SetText(text)
	})

	mw.state.On(app.EventResponseLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle("Smart Chart - " + filepath.Base(path))
			mw.prefs.AddRecent(path)
		}
	})

	// State events are emitted with the state lock held; the code that
	// took the lock refreshes once it is released. Reloads come from the
	// watcher goroutine and refresh on their own.
	mw.state.On(app.EventResponseReloaded, func(interface{}) {
		go mw.refreshCharts()
	})

	mw.state.On(app.EventLayoutChanged, func(interface{}) {
		mw.buildCanvases()
		mw.applyTool(parseTool(mw.toolSelect.Selected))
		if t, err := chart.ParseMeasureType(mw.measureType.Selected); err == nil {
			mw.applyMeasureType(t)
		}
		mw.resync()
		mw.updateMenuChecks()
	})

	mw.state.On(app.EventSessionLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.sessionPath = path
		}
		mw.updateMenuChecks()
	})
}

// SavePreferences stores the window size and watch toggle.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetWindowSize(float64(size.Width), float64(size.Height))
	mw.prefs.SetWatch(mw.watchItem.Checked)
	if err := mw.prefs.Save(); err != nil {
		log.Printf("save preferences: %v", err)
	}
}

// RestoreLastResponse reopens the previously loaded response, if any.
func (mw *MainWindow) RestoreLastResponse() {
	path := mw.prefs.LastResponse()
	if path == "" || mw.state.Response != nil {
		return
	}
	if err := mw.OpenResponse(path); err != nil {
		log.Printf("restore %s: %v", path, err)
		mw.prefs.RemoveRecent(path)
	}
}

// dispatch runs one action under the state lock and redraws.
func (mw *MainWindow) dispatch(d *chart.Dispatcher, id chart.ActionID, args chart.ActionArgs) {
	if d == nil {
		return
	}
	mw.state.Lock()
	err := d.Dispatch(id, args)
	mw.state.Unlock()
	if err != nil {
		log.Printf("%s: %v", id, err)
		mw.state.Status.Show("%s: %v", actionTitle(id), err)
	}
	mw.refreshCharts()
}

// dispatchAll runs id on every chart, then lets the primary chart drive
// the synchronized axes of its sub-chart again.
func (mw *MainWindow) dispatchAll(id chart.ActionID) {
	mw.dispatch(mw.state.Commands, id, chart.ActionArgs{})
	if mw.state.SubCommands == nil {
		return
	}
	mw.dispatch(mw.state.SubCommands, id, chart.ActionArgs{})
	mw.state.Lock()
	mw.resync()
	mw.state.Unlock()
	mw.refreshCharts()
}

// resync reapplies the sync flags. The caller holds the state lock.
func (mw *MainWindow) resync() {
	if mw.state.Sub == nil {
		return
	}
	if err := mw.state.Primary.SetSync(mw.syncX, mw.state.Config.Sync.Y); err != nil {
		log.Printf("sync: %v", err)
	}
}

func (mw *MainWindow) setTool(t chart.Tool) {
	mw.state.Lock()
	mw.applyTool(t)
	mw.state.Unlock()
	mw.refreshCharts()
}

func (mw *MainWindow) applyTool(t chart.Tool) {
	for _, c := range mw.state.Charts() {
		c.SetTool(t)
	}
}

func (mw *MainWindow) onMeasureType(name string) {
	t, err := chart.ParseMeasureType(name)
	if err != nil {
		return
	}
	mw.state.Lock()
	mw.applyMeasureType(t)
	mw.state.Unlock()
}

func (mw *MainWindow) applyMeasureType(t chart.MeasureType) {
	for _, c := range mw.state.Charts() {
		s := c.Settings()
		s.DefaultMeasureType = t
		c.SetSettings(s)
	}
}

// commandsFor returns the dispatcher bound to c.
func (mw *MainWindow) commandsFor(c *chart.Chart) *chart.Dispatcher {
	if c == mw.state.Sub {
		return mw.state.SubCommands
	}
	return mw.state.Commands
}

// showContextMenu pops up the actions for a right click on cc.
func (mw *MainWindow) showContextMenu(cc *canvas.ChartCanvas, menu *chart.ContextMenu, series func() int, pos fyne.Position) {
	c := cc.Chart()
	var items []*fyne.MenuItem
	for _, id := range menuActions(c, menu) {
		id := id
		items = append(items, fyne.NewMenuItem(actionTitle(id), func() {
			mw.runAction(c, id, actionArgs(id, menu, series(), mw.state.SubSeries()))
		}))
	}
	widget.ShowPopUpMenuAtPosition(fyne.NewMenu("", items...), mw.Canvas(), pos)
}

// runAction collects any extra input id needs, then dispatches it on c.
func (mw *MainWindow) runAction(c *chart.Chart, id chart.ActionID, args chart.ActionArgs) {
	d := mw.commandsFor(c)
	switch promptFor(id) {
	case promptValue:
		initial := args.Value
		if id == chart.ActionAuxMove {
			if l, ok := c.AuxLines.Get(args.ID); ok {
				initial = l.Value
			}
		}
		dialogs.ShowValueDialog(actionTitle(id), "Value", fmt.Sprintf("%g", initial), mw.Window, func(v float64) error {
			args.Value = v
			mw.state.Lock()
			err := d.Dispatch(id, args)
			mw.state.Unlock()
			mw.refreshCharts()
			return err
		})
	case promptColor:
		picker := dialog.NewColorPicker("Choose Color", actionTitle(id), func(col color.Color) {
			args.Color = colorutil.FromColor(col)
			mw.dispatch(d, id, args)
		}, mw.Window)
		picker.Advanced = true
		picker.Show()
	case promptFile:
		mw.onExport(c, id)
	default:
		mw.dispatch(d, id, args)
	}
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.LastDir()
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetLastDir(filePath)
}

// IsSessionFile reports whether path names a saved session.
func IsSessionFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), sessionExtension)
}

// Menu action handlers

// OpenResponse loads a response file, watching it when enabled.
func (mw *MainWindow) OpenResponse(path string) error {
	mw.state.Lock()
	err := mw.state.LoadResponse(path)
	mw.state.Unlock()
	mw.refreshCharts()
	if err != nil {
		return err
	}
	if mw.watchItem.Checked {
		mw.startWatching()
	}
	return nil
}

// OpenSession restores a saved session.
func (mw *MainWindow) OpenSession(path string) error {
	mw.state.Lock()
	err := mw.state.LoadSession(path)
	mw.state.Unlock()
	mw.refreshCharts()
	return err
}

func (mw *MainWindow) onOpenResponse() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.OpenResponse(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(responseExtensions))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onReloadResponse() {
	mw.state.Lock()
	err := mw.state.ReloadResponse()
	mw.state.Unlock()
	mw.refreshCharts()
	if err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onToggleWatch() {
	if mw.watchItem.Checked {
		mw.state.StopWatching()
		mw.watchItem.Checked = false
		mw.state.Status.Show("Stopped watching")
		mw.MainMenu().Refresh()
		return
	}
	mw.watchItem.Checked = true
	mw.startWatching()
	mw.MainMenu().Refresh()
}

func (mw *MainWindow) startWatching() {
	if err := mw.state.Watch(watchDebounce); err != nil {
		mw.state.Status.Show("Watch: %v", err)
		return
	}
	mw.state.Status.Show("Watching %s", filepath.Base(mw.state.ResponsePath))
}

func (mw *MainWindow) onOpenSession() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.OpenSession(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{sessionExtension}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveSession() {
	if mw.sessionPath == "" {
		mw.onSaveSessionAs()
		return
	}
	mw.saveSession(mw.sessionPath)
}

func (mw *MainWindow) onSaveSessionAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != sessionExtension {
			path += sessionExtension
		}
		mw.saveLastDir(path)
		mw.saveSession(path)
	}, mw.Window)
	fd.SetFileName("session" + sessionExtension)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) saveSession(path string) {
	mw.state.Lock()
	err := mw.state.SaveSession(path)
	mw.state.Unlock()
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.sessionPath = path
	mw.state.Status.Show("Session saved to %s", filepath.Base(path))
}

// onExport asks for a target file and runs an export action on c.
func (mw *MainWindow) onExport(c *chart.Chart, id chart.ActionID) {
	d := mw.commandsFor(c)
	name := "chart." + mw.state.Config.Export.Format
	if id == chart.ActionExportSeries {
		name = "series.csv"
	}
	if mw.state.Response != nil {
		base := strings.ToLower(strings.ReplaceAll(mw.state.Response.Name, " ", "-"))
		name = base + filepath.Ext(name)
	}

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		mw.saveLastDir(path)
		mw.dispatch(d, id, chart.ActionArgs{Path: path})
	}, mw.Window)
	fd.SetFileName(name)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onAxisSettings(c *chart.Chart) {
	dialogs.NewAxisDialog(c, mw.Window, mw.refreshCharts).Show()
}

func (mw *MainWindow) onSeries() {
	dialogs.NewSeriesDialog(mw.state.Primary.Series, mw.Window, func([]int) {
		mw.refreshCharts()
	}).Show()
}

func (mw *MainWindow) onToggleGrid() {
	mw.dispatch(mw.state.Commands, chart.ActionGridOnOff, chart.ActionArgs{Enabled: !mw.gridItem.Checked})
	mw.updateMenuChecks()
}

func (mw *MainWindow) onToggleSyncX() {
	mw.syncX = !mw.syncX
	mw.dispatch(mw.state.Commands, chart.ActionSyncAxes, chart.ActionArgs{Enabled: mw.syncX})
	mw.updateMenuChecks()
}

func (mw *MainWindow) onPlotType(pt app.PlotType) {
	mw.state.Lock()
	err := mw.state.SetPlotType(pt)
	mw.state.Unlock()
	mw.refreshCharts()
	if err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Smart Chart",
		fmt.Sprintf("Smart Chart v%s\n\n"+
			"Interactive Bode and Nichols charts with cursors,\n"+
			"measurements and auxiliary lines.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
