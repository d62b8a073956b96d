// Command bodeplot renders a frequency response as a Bode or Nichols chart
// without opening a window, and reports its stability margins.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"smart-chart/internal/app"
	"smart-chart/internal/config"
	"smart-chart/internal/margin"
	"smart-chart/internal/version"
)

type options struct {
	configPath string
	plotType   string
	outputPath string
	phasePath  string
	seriesPath string
	markMargin bool
	grid       bool
	quiet      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:     "bodeplot [response file]",
		Short:   "Plot a frequency response and report its stability margins",
		Long: `bodeplot reads a frequency response (.csv, .json or .yaml with frequency,
magnitude in dB and phase in degrees), prints its gain and phase margins and
optionally writes the chart and the plotted series to files.`,
		Version: version.Version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), args[0], opts)
		},
		SilenceUsage: true,
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", config.DefaultPath(), "Settings file")
	f.StringVar(&opts.plotType, "plot", "", "Plot type: bode or nichols (default from settings)")
	f.StringVarP(&opts.outputPath, "output", "o", "", "Chart output file (.png, .jpg, .svg, .pdf)")
	f.StringVar(&opts.phasePath, "phase-output", "", "Phase chart output file (bode only)")
	f.StringVar(&opts.seriesPath, "series", "", "Series output file (.csv or .xlsx)")
	f.BoolVar(&opts.markMargin, "mark-margins", true, "Draw margin marker lines on the chart")
	f.BoolVar(&opts.grid, "grid", true, "Draw the Nichols grid (nichols only)")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not log progress")
	return cmd
}

func run(out io.Writer, responsePath string, opts *options) error {
	if opts.quiet {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if opts.plotType != "" {
		if _, err := app.ParsePlotType(opts.plotType); err != nil {
			return err
		}
		cfg.Plot = opts.plotType
	}
	cfg.Chart.NicholsGrid = opts.grid
	// Messages are read once at the end; nothing needs to expire.
	cfg.Status.TTL = 0

	state := app.NewState(cfg)
	defer state.Close()

	if err := state.LoadResponse(responsePath); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d samples, %.4g to %.4g Hz\n",
		state.Response.Name, state.Response.Len(),
		state.Response.Frequency[0], state.Response.Frequency[state.Response.Len()-1])

	gm, gmErr := reportMargin(out, "Gain margin", "dB", state.ShowGainMargin)
	pm, pmErr := reportMargin(out, "Phase margin", "deg", state.ShowPhaseMargin)
	if !opts.markMargin {
		for _, c := range state.Charts() {
			c.AuxLines.Clear()
		}
	}
	if gmErr == nil && pmErr == nil {
		if gm.Margin > 0 && pm.Margin > 0 {
			fmt.Fprintln(out, "Closed loop: stable")
		} else {
			fmt.Fprintln(out, "Closed loop: unstable")
		}
	}

	if opts.outputPath != "" {
		if err := state.ExportChart(state.Primary, opts.outputPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Chart written to %s\n", opts.outputPath)
	}
	if opts.phasePath != "" {
		if state.Sub == nil {
			return errors.New("--phase-output needs the bode plot")
		}
		if err := state.ExportChart(state.Sub, opts.phasePath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Phase chart written to %s\n", opts.phasePath)
	}
	if opts.seriesPath != "" {
		if err := state.ExportSeries(state.Primary, nil, opts.seriesPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Series written to %s\n", opts.seriesPath)
	}
	return nil
}

// reportMargin prints one margin line. A missing crossing is reported, not
// returned as a failure.
func reportMargin(out io.Writer, name, unit string, show func() (margin.Result, error)) (margin.Result, error) {
	res, err := show()
	switch {
	case errors.Is(err, margin.ErrNoCrossing):
		fmt.Fprintf(out, "%s: no crossing\n", name)
	case err != nil:
		fmt.Fprintf(out, "%s: %v\n", name, err)
	default:
		fmt.Fprintf(out, "%s: %.2f %s at %.4g Hz\n", name, res.Margin, unit, res.Frequency)
	}
	return res, err
}
