// Package app provides application lifecycle management, chart layout, and events.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/plot/vg"

	"smart-chart/internal/chart"
	"smart-chart/internal/config"
	"smart-chart/internal/export"
	"smart-chart/internal/freqresp"
	"smart-chart/internal/margin"
	"smart-chart/pkg/geometry"
)

// ErrNoResponse is returned by operations that need loaded data.
var ErrNoResponse = errors.New("no frequency response loaded")

// PlotType selects the chart layout.
type PlotType int

const (
	PlotBode    PlotType = iota // magnitude chart with a phase sub-chart
	PlotNichols                 // single chart, phase against magnitude
)

func (p PlotType) String() string {
	if p == PlotNichols {
		return "nichols"
	}
	return "bode"
}

// ParsePlotType accepts "bode" or "nichols".
func ParsePlotType(s string) (PlotType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bode":
		return PlotBode, nil
	case "nichols":
		return PlotNichols, nil
	}
	return PlotBode, fmt.Errorf("unknown plot type %q", s)
}

// Application-level commands, dispatched next to the chart ones.
const (
	ActionGainMargin  chart.ActionID = "analysis.gain-margin"
	ActionPhaseMargin chart.ActionID = "analysis.phase-margin"
)

func init() {
	chart.ActionTitles[ActionGainMargin] = "Show Gain Margin"
	chart.ActionTitles[ActionPhaseMargin] = "Show Phase Margin"
}

// fitMargin pads the y extent when a response is first plotted.
const fitMargin = 0.05

// State holds the application state: configuration, loaded response and
// the charts that display it.
type State struct {
	mu sync.Mutex

	Config   config.Config
	PlotType PlotType

	// Response
	ResponsePath string
	Response     *freqresp.Response
	Modified     bool

	// Charts. Sub is nil for the Nichols layout.
	Primary     *chart.Chart
	Sub         *chart.Chart
	Commands    *chart.Dispatcher
	SubCommands *chart.Dispatcher

	// Series ids of the plotted response, 0 when nothing is plotted.
	primarySeries int
	subSeries     int

	Status  *Status
	watcher *DataWatcher

	// Event listeners
	lmu       sync.RWMutex
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventResponseLoaded EventType = iota
	EventResponseReloaded
	EventLayoutChanged
	EventMarginShown
	EventExported
	EventSessionLoaded
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state for cfg.
func NewState(cfg config.Config) *State {
	pt, err := ParsePlotType(cfg.Plot)
	if err != nil {
		log.Printf("config: %v, using bode", err)
	}
	s := &State{
		Config:    cfg,
		PlotType:  pt,
		Status:    NewStatus(cfg.Status.TTL),
		listeners: make(map[EventType][]EventListener),
	}
	s.buildLayout()
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.lmu.RLock()
	listeners := s.listeners[event]
	s.lmu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Lock serializes chart access between the UI and the data watcher.
func (s *State) Lock() { s.mu.Lock() }

// Unlock releases Lock.
func (s *State) Unlock() { s.mu.Unlock() }

// Charts returns the charts of the current layout, primary first.
func (s *State) Charts() []*chart.Chart {
	if s.Sub != nil {
		return []*chart.Chart{s.Primary, s.Sub}
	}
	return []*chart.Chart{s.Primary}
}

// buildLayout creates fresh charts for the current plot type.
func (s *State) buildLayout() {
	settings := s.Config.ChartSettings()
	s.primarySeries, s.subSeries = 0, 0
	s.Sub, s.SubCommands = nil, nil

	switch s.PlotType {
	case PlotNichols:
		s.Primary = chart.New("Nichols Chart", settings)
		s.Primary.X.Title = "Open-Loop Phase (deg)"
		s.Primary.Y.Title = "Open-Loop Gain (dB)"
		s.Primary.EnableNicholsGrid(s.Config.Chart.NicholsGrid)
	default:
		s.Primary = chart.New("Bode Magnitude", settings)
		s.Primary.Y.Title = "Magnitude (dB)"
		s.Sub = chart.New("Bode Phase", settings)
		s.Sub.Y.Title = "Phase (deg)"
		for _, c := range s.Charts() {
			c.X.Title = "Frequency (Hz)"
		}
		if err := s.Primary.AttachSubChart(s.Sub); err != nil {
			log.Printf("attach phase chart: %v", err)
		}
	}

	s.Commands = s.dispatcher(s.Primary)
	if s.Sub != nil {
		s.SubCommands = s.dispatcher(s.Sub)
	}
	for _, c := range s.Charts() {
		c.On(chart.EventStatus, func(data interface{}) {
			s.Status.Show("%v", data)
		})
	}
}

// dispatcher registers the application actions on top of the chart ones.
func (s *State) dispatcher(c *chart.Chart) *chart.Dispatcher {
	d := chart.NewDispatcher(c)
	d.Register(chart.ActionExportChart, func(a chart.ActionArgs) error {
		return s.ExportChart(c, a.Path)
	})
	d.Register(chart.ActionExportSeries, func(a chart.ActionArgs) error {
		var ids []int
		if a.SeriesID != 0 {
			ids = []int{a.SeriesID}
		}
		return s.ExportSeries(c, ids, a.Path)
	})
	d.Register(ActionGainMargin, func(chart.ActionArgs) error {
		_, err := s.ShowGainMargin()
		return err
	})
	d.Register(ActionPhaseMargin, func(chart.ActionArgs) error {
		_, err := s.ShowPhaseMargin()
		return err
	})
	return d
}

// SetPlotType switches between Bode and Nichols layouts and replots the
// loaded response. Overlays do not survive a layout change.
func (s *State) SetPlotType(pt PlotType) error {
	if pt == s.PlotType {
		return nil
	}
	s.PlotType = pt
	s.buildLayout()
	if s.Response != nil {
		if err := s.plot(s.Response, false); err != nil {
			return err
		}
	}
	s.Emit(EventLayoutChanged, pt)
	return nil
}

// LoadResponse reads a response file and plots it.
func (s *State) LoadResponse(path string) error {
	r, err := freqresp.Load(path)
	if err != nil {
		log.Printf("load response: %v", err)
		s.Status.Show("Load failed: %v", err)
		return err
	}
	if err := s.SetResponse(r); err != nil {
		return err
	}
	s.ResponsePath = path
	log.Printf("Loaded %d samples from %s", r.Len(), path)
	s.Emit(EventResponseLoaded, path)
	return nil
}

// SetResponse plots r, replacing any previous response, and fits the
// view to it.
func (s *State) SetResponse(r *freqresp.Response) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := s.plot(r, false); err != nil {
		return err
	}
	s.Response = r
	s.Modified = false
	return nil
}

// ReloadResponse re-reads the response file and updates the plotted series
// in place, keeping their ids, names, visibility and the current view.
func (s *State) ReloadResponse() error {
	if s.ResponsePath == "" {
		return ErrNoResponse
	}
	r, err := freqresp.Load(s.ResponsePath)
	if err != nil {
		return err
	}
	if err := s.plot(r, true); err != nil {
		return err
	}
	s.Response = r
	s.Emit(EventResponseReloaded, s.ResponsePath)
	return nil
}

// plot puts r on the charts. With keepView the existing series are
// updated and the ranges left alone.
func (s *State) plot(r *freqresp.Response, keepView bool) error {
	var err error
	switch s.PlotType {
	case PlotNichols:
		s.primarySeries, err = putSeries(s.Primary, s.primarySeries, r.NicholsPoints(), r.Name)
		if err != nil {
			return err
		}
		if !keepView {
			return s.Primary.FitToData(fitMargin)
		}
	default:
		s.subSeries, err = putSeries(s.Sub, s.subSeries, r.PhasePoints(), r.Name)
		if err != nil {
			return err
		}
		s.primarySeries, err = putSeries(s.Primary, s.primarySeries, r.MagnitudePoints(), r.Name)
		if err != nil {
			return err
		}
		if !keepView {
			// Sub first so the primary's range change lands on a log axis.
			for _, c := range []*chart.Chart{s.Sub, s.Primary} {
				if err := fitLogFrequency(c); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// putSeries updates series id on c, or adds a new one when id is unset or
// gone.
func putSeries(c *chart.Chart, id int, pts []geometry.Point2D, name string) (int, error) {
	if id != 0 {
		if _, ok := c.Series.Get(id); ok {
			return id, c.UpdateSeries(id, pts)
		}
	}
	return c.AddSeries(pts, name)
}

// fitLogFrequency puts the x axis on a log scale over the data and fits y.
func fitLogFrequency(c *chart.Chart) error {
	xr, yr, ok := c.Series.DataExtent()
	if !ok {
		return ErrNoResponse
	}
	if xr.Span() == 0 {
		xr = geometry.NewRange(xr.Min/10, xr.Max*10)
	}
	if yr.Span() == 0 {
		yr = geometry.NewRange(yr.Min-1, yr.Max+1)
	}
	err := c.ApplyAxisSettings(chart.AxisSettings{
		XScale: chart.ScaleLog, XRange: xr, XTitle: c.X.Title,
		YScale: c.Y.Scale, YRange: yr, YTitle: c.Y.Title,
	})
	if err != nil {
		return err
	}
	return c.FitToData(fitMargin)
}

// PrimarySeries returns the id of the response series on the primary chart.
func (s *State) PrimarySeries() int { return s.primarySeries }

// SubSeries returns the id of the phase series, 0 without a sub-chart.
func (s *State) SubSeries() int { return s.subSeries }

// ShowGainMargin computes the gain margin and marks where it is read.
func (s *State) ShowGainMargin() (margin.Result, error) {
	if s.Response == nil {
		return margin.Result{}, ErrNoResponse
	}
	r := s.Response
	res, err := margin.GainMargin(r.Frequency, r.Magnitude, r.Phase)
	if err != nil {
		log.Printf("gain margin: %v", err)
		s.Status.Show("Gain margin: not found")
		return res, err
	}
	if s.PlotType == PlotNichols {
		err = s.markCrossing(s.Primary, s.primarySeries, chart.Vertical, res.Phase)
	} else {
		err = s.markFrequency(res.Frequency)
	}
	if err != nil {
		return res, err
	}
	s.Status.Show("Gain margin %.2f dB at %.4g Hz", res.Margin, res.Frequency)
	s.Emit(EventMarginShown, res)
	return res, nil
}

// ShowPhaseMargin computes the phase margin and marks where it is read.
func (s *State) ShowPhaseMargin() (margin.Result, error) {
	if s.Response == nil {
		return margin.Result{}, ErrNoResponse
	}
	r := s.Response
	res, err := margin.PhaseMargin(r.Frequency, r.Magnitude, r.Phase)
	if err != nil {
		log.Printf("phase margin: %v", err)
		s.Status.Show("Phase margin: not found")
		return res, err
	}
	if s.PlotType == PlotNichols {
		err = s.markCrossing(s.Primary, s.primarySeries, chart.Horizontal, 0)
	} else {
		err = s.markFrequency(res.Frequency)
	}
	if err != nil {
		return res, err
	}
	s.Status.Show("Phase margin %.2f deg at %.4g Hz", res.Margin, res.Frequency)
	s.Emit(EventMarginShown, res)
	return res, nil
}

// markFrequency drops a vertical line at f on both Bode charts.
func (s *State) markFrequency(f float64) error {
	if err := s.markCrossing(s.Primary, s.primarySeries, chart.Vertical, f); err != nil {
		return err
	}
	return s.markCrossing(s.Sub, s.subSeries, chart.Vertical, f)
}

func (s *State) markCrossing(c *chart.Chart, seriesID int, o chart.Orientation, v float64) error {
	l, err := c.AuxLines.Add(o, v)
	if err != nil {
		return err
	}
	if _, err := c.AuxLines.RevealIntersections(l.ID, seriesID); err != nil {
		log.Printf("margin marker on %q: %v", c.Title, err)
	}
	return nil
}

// exportOptions converts the configured page size.
func (s *State) exportOptions() export.Options {
	e := s.Config.Export
	if e.WidthIn <= 0 || e.HeightIn <= 0 {
		return export.DefaultOptions()
	}
	return export.Options{Width: vg.Length(e.WidthIn) * vg.Inch, Height: vg.Length(e.HeightIn) * vg.Inch}
}

// resolveExport fills in the configured directory and format.
func (s *State) resolveExport(path, fallbackExt string) string {
	if path == "" {
		path = s.defaultName()
	}
	if filepath.Ext(path) == "" {
		path += "." + fallbackExt
	}
	if !filepath.IsAbs(path) && s.Config.Export.Dir != "" {
		path = filepath.Join(s.Config.Export.Dir, path)
	}
	return path
}

func (s *State) defaultName() string {
	name := "chart"
	if s.Response != nil && s.Response.Name != "" {
		name = s.Response.Name
	}
	return fmt.Sprintf("%s-%s", name, time.Now().Format("20060102-150405"))
}

// ExportChart renders c to path. Failures are reported on the status line
// and leave the chart untouched.
func (s *State) ExportChart(c *chart.Chart, path string) error {
	path = s.resolveExport(path, s.Config.Export.Format)
	if err := export.Chart(c, path, s.exportOptions()); err != nil {
		log.Printf("export chart: %v", err)
		s.Status.Show("Export failed: %v", err)
		return err
	}
	s.Status.Show("Chart saved to %s", path)
	s.Emit(EventExported, path)
	return nil
}

// ExportSeries writes the series ids of c (all when empty) to path.
func (s *State) ExportSeries(c *chart.Chart, ids []int, path string) error {
	path = s.resolveExport(path, "csv")
	if err := export.Series(c.Series, ids, path); err != nil {
		log.Printf("export series: %v", err)
		s.Status.Show("Export failed: %v", err)
		return err
	}
	s.Status.Show("Series saved to %s", path)
	s.Emit(EventExported, path)
	return nil
}

// Watch reloads the response whenever its file changes on disk.
func (s *State) Watch(debounce time.Duration) error {
	if s.ResponsePath == "" {
		return ErrNoResponse
	}
	s.StopWatching()
	w, err := NewDataWatcher(s.ResponsePath, debounce)
	if err != nil {
		return err
	}
	w.OnChange(func(path string) {
		s.Lock()
		err := s.ReloadResponse()
		s.Unlock()
		if err != nil {
			log.Printf("reload %s: %v", path, err)
			s.Status.Show("Reload failed: %v", err)
			return
		}
		log.Printf("Reloaded %s", path)
		s.Status.Show("Reloaded %s", filepath.Base(path))
	})
	w.Start()
	s.watcher = w
	return nil
}

// StopWatching stops the data watcher, if running.
func (s *State) StopWatching() {
	if s.watcher == nil {
		return
	}
	if err := s.watcher.Stop(); err != nil {
		log.Printf("stop watcher: %v", err)
	}
	s.watcher = nil
}

// Close releases background resources.
func (s *State) Close() {
	s.StopWatching()
	s.Status.Clear()
}

// SessionFile is the saved view: which response, which layout, and the
// visible ranges.
type SessionFile struct {
	Version      int             `json:"version"`
	PlotType     string          `json:"plot_type"`
	ResponsePath string          `json:"response_path,omitempty"`
	XRange       geometry.Range  `json:"x_range"`
	YRange       geometry.Range  `json:"y_range"`
	SubYRange    *geometry.Range `json:"sub_y_range,omitempty"`
	NicholsGrid  bool            `json:"nichols_grid,omitempty"`
}

// SaveSession saves the session to the specified path. The response path
// is stored relative to the session file when possible.
func (s *State) SaveSession(path string) error {
	sess := SessionFile{
		Version:     1,
		PlotType:    s.PlotType.String(),
		XRange:      s.Primary.XRange(),
		YRange:      s.Primary.YRange(),
		NicholsGrid: s.Primary.NicholsGrid() != nil,
	}
	if s.Sub != nil {
		r := s.Sub.YRange()
		sess.SubYRange = &r
	}
	if s.ResponsePath != "" {
		sess.ResponsePath = s.ResponsePath
		if rel, err := filepath.Rel(filepath.Dir(path), s.ResponsePath); err == nil {
			sess.ResponsePath = rel
		}
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	s.Modified = false
	return nil
}

// LoadSession restores a saved session: layout, response and ranges.
func (s *State) LoadSession(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var sess SessionFile
	if err := json.Unmarshal(data, &sess); err != nil {
		return err
	}
	pt, err := ParsePlotType(sess.PlotType)
	if err != nil {
		return err
	}
	if err := s.SetPlotType(pt); err != nil {
		return err
	}
	if sess.ResponsePath != "" {
		rp := sess.ResponsePath
		if !filepath.IsAbs(rp) {
			rp = filepath.Join(filepath.Dir(path), rp)
		}
		if err := s.LoadResponse(rp); err != nil {
			return err
		}
	}
	if pt == PlotNichols {
		s.Primary.EnableNicholsGrid(sess.NicholsGrid)
	}
	if err := s.Primary.SetRange(sess.XRange, sess.YRange); err != nil {
		return err
	}
	if s.Sub != nil && sess.SubYRange != nil {
		if err := s.Sub.SetYRange(*sess.SubYRange); err != nil {
			return err
		}
	}
	s.Emit(EventSessionLoaded, path)
	return nil
}
