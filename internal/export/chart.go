// Package export writes charts as images or documents and series as
// spreadsheets.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"smart-chart/internal/chart"
	"smart-chart/pkg/geometry"
)

// ErrUnsupportedFormat is returned for an unknown export format.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is a chart image or document format.
type Format string

const (
	FormatPNG Format = "png"
	FormatJPG Format = "jpg"
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
)

// Formats lists the supported chart formats.
var Formats = []Format{FormatPNG, FormatJPG, FormatPDF, FormatSVG}

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPG, nil
	case "pdf":
		return FormatPDF, nil
	case "svg":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnsupportedFormat)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Options sizes the exported chart.
type Options struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions is an 8x5 inch page.
func DefaultOptions() Options {
	return Options{Width: 8 * vg.Inch, Height: 5 * vg.Inch}
}

// Chart renders c to path; the format follows the file extension.
func Chart(c *chart.Chart, path string, opts Options) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteChart(out, c, f, opts); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	return out.Close()
}

// WriteChart renders c to w in format f.
func WriteChart(w io.Writer, c *chart.Chart, f Format, opts Options) error {
	if _, err := ParseFormat(string(f)); err != nil {
		return err
	}
	p, err := BuildPlot(c)
	if err != nil {
		return err
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultOptions()
	}
	wt, err := p.WriterTo(opts.Width, opts.Height, string(f))
	if err != nil {
		return fmt.Errorf("render %s: %w", f, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}
	return nil
}

// BuildPlot converts the chart scene into a gonum plot with the same axes,
// series, grid contours and overlays.
func BuildPlot(c *chart.Chart) (*plot.Plot, error) {
	scene := c.Scene()
	p := plot.New()
	p.Title.Text = scene.Title
	p.X.Label.Text = scene.X.Title
	p.Y.Label.Text = scene.Y.Title
	configureAxis(&p.X, scene.X)
	configureAxis(&p.Y, scene.Y)
	p.Add(plotter.NewGrid())

	keep := positiveFilter(scene.X.Scale, scene.Y.Scale)
	for _, l := range scene.Lines {
		xys := toXYs(l.Points, keep)
		if len(xys) < 2 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l.Name, err)
		}
		line.LineStyle.Color = l.Color
		line.LineStyle.Width = vg.Points(l.Width)
		if l.Dashed {
			line.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		}
		p.Add(line)
		if l.Kind == chart.LayerSeries {
			p.Legend.Add(l.Name, line)
		}
	}

	if err := addMarkers(p, scene.Markers, keep); err != nil {
		return nil, err
	}
	if err := addCaptions(p, c, scene.Texts, keep); err != nil {
		return nil, err
	}

	// Pin the visible window after plotters widened the data range.
	p.X.Min, p.X.Max = scene.X.Range.Min, scene.X.Range.Max
	p.Y.Min, p.Y.Max = scene.Y.Range.Min, scene.Y.Range.Max
	return p, nil
}

func configureAxis(a *plot.Axis, spec chart.AxisSpec) {
	if spec.Scale == chart.ScaleLog {
		a.Scale = plot.LogScale{}
		a.Tick.Marker = plot.LogTicks{}
	}
}

// positiveFilter drops points a log axis cannot place.
func positiveFilter(xs, ys chart.Scale) func(geometry.Point2D) bool {
	return func(p geometry.Point2D) bool {
		if !p.IsFinite() {
			return false
		}
		if xs == chart.ScaleLog && p.X <= 0 {
			return false
		}
		if ys == chart.ScaleLog && p.Y <= 0 {
			return false
		}
		return true
	}
}

func toXYs(points []geometry.Point2D, keep func(geometry.Point2D) bool) plotter.XYs {
	xys := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		if keep(pt) {
			xys = append(xys, plotter.XY{X: pt.X, Y: pt.Y})
		}
	}
	return xys
}

func addMarkers(p *plot.Plot, markers []chart.Marker, keep func(geometry.Point2D) bool) error {
	var labels plotter.XYLabels
	for _, m := range markers {
		if !keep(m.Point) {
			continue
		}
		xy := plotter.XYs{{X: m.Point.X, Y: m.Point.Y}}
		sc, err := plotter.NewScatter(xy)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = m.Color
		sc.GlyphStyle.Radius = vg.Points(m.Radius)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		if m.Label != "" {
			labels.XYs = append(labels.XYs, xy[0])
			labels.Labels = append(labels.Labels, m.Label)
		}
	}
	return addLabels(p, labels, color.Black)
}

// addCaptions places pixel-anchored texts back in data space.
func addCaptions(p *plot.Plot, c *chart.Chart, texts []chart.Text, keep func(geometry.Point2D) bool) error {
	var labels plotter.XYLabels
	for _, t := range texts {
		d := c.Mapper().ViewportToData(t.Pixel)
		if !keep(d) {
			continue
		}
		labels.XYs = append(labels.XYs, plotter.XY{X: d.X, Y: d.Y})
		labels.Labels = append(labels.Labels, t.Text)
	}
	return addLabels(p, labels, color.Black)
}

func addLabels(p *plot.Plot, labels plotter.XYLabels, col color.Color) error {
	if len(labels.Labels) == 0 {
		return nil
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].Color = col
	}
	l.Offset = vg.Point{X: vg.Points(4), Y: vg.Points(4)}
	p.Add(l)
	return nil
}
