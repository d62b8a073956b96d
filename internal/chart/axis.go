package chart

import (
	"math"

	"smart-chart/pkg/geometry"
)

// Scale identifies how an axis maps values onto its length.
type Scale int

const (
	ScaleLinear Scale = iota
	ScaleLog
)

func (s Scale) String() string {
	if s == ScaleLog {
		return "log"
	}
	return "linear"
}

// ParseScale converts "linear" or "log" to a Scale.
func ParseScale(s string) (Scale, bool) {
	switch s {
	case "linear", "lin", "":
		return ScaleLinear, true
	case "log", "logarithmic":
		return ScaleLog, true
	}
	return ScaleLinear, false
}

// Axis is one chart axis: scale, visible range and title.
type Axis struct {
	Scale Scale
	Range geometry.Range
	Title string

	name string // "x" or "y", used in errors
}

// NewAxis creates an axis. The range is not validated.
func NewAxis(name string, scale Scale, min, max float64) *Axis {
	return &Axis{Scale: scale, Range: geometry.NewRange(min, max), name: name}
}

// Min returns the lower bound of the visible range.
func (a *Axis) Min() float64 { return a.Range.Min }

// Max returns the upper bound of the visible range.
func (a *Axis) Max() float64 { return a.Range.Max }

// Name returns "x" or "y".
func (a *Axis) Name() string { return a.name }

// SetRange validates and applies a new visible range.
func (a *Axis) SetRange(min, max float64) error {
	r := geometry.NewRange(min, max)
	if err := validateRange(a.name, a.Scale, r); err != nil {
		return err
	}
	a.Range = r
	return nil
}

// Normalize maps v to [0,1] over the visible range (values outside map
// outside the unit interval). Non-positive values on a log axis map to NaN.
func (a *Axis) Normalize(v float64) float64 {
	return normalize(a.Scale, a.Range, v)
}

// Denormalize is the inverse of Normalize.
func (a *Axis) Denormalize(t float64) float64 {
	return denormalize(a.Scale, a.Range, t)
}

// RelativeDistance returns |a-b| as a fraction of the visible span, measured
// in the axis' own scale so log axes behave like linear ones.
func (a *Axis) RelativeDistance(u, v float64) float64 {
	d := math.Abs(a.Normalize(u) - a.Normalize(v))
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}

func validateRange(axis string, scale Scale, r geometry.Range) error {
	if !r.Valid() {
		return newAxisError(axis, "range [%g, %g] must satisfy min < max", r.Min, r.Max)
	}
	if scale == ScaleLog && r.Min <= 0 {
		return newAxisError(axis, "logarithmic range [%g, %g] needs min > 0", r.Min, r.Max)
	}
	return nil
}

func normalize(scale Scale, r geometry.Range, v float64) float64 {
	if scale == ScaleLog {
		if v <= 0 || r.Min <= 0 {
			return math.NaN()
		}
		lmin := math.Log10(r.Min)
		return (math.Log10(v) - lmin) / (math.Log10(r.Max) - lmin)
	}
	return (v - r.Min) / (r.Max - r.Min)
}

func denormalize(scale Scale, r geometry.Range, t float64) float64 {
	if scale == ScaleLog {
		lmin := math.Log10(r.Min)
		return math.Pow(10, lmin+t*(math.Log10(r.Max)-lmin))
	}
	return r.Min + t*(r.Max-r.Min)
}
