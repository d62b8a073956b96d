// Package freqresp holds a sampled open-loop frequency response and its
// Bode and Nichols projections.
package freqresp

import (
	"errors"
	"fmt"
	"math"

	"smart-chart/internal/nichols"
	"smart-chart/pkg/geometry"
)

var (
	// ErrShape is returned when the arrays differ in length or are too short.
	ErrShape = errors.New("frequency response arrays malformed")
	// ErrNotAscending is returned when frequencies do not strictly increase.
	ErrNotAscending = errors.New("frequencies must be positive and strictly ascending")
)

// Response is three parallel arrays: frequency in Hz (ascending),
// magnitude in dB and phase in degrees.
type Response struct {
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	Frequency []float64 `json:"frequency" yaml:"frequency"`
	Magnitude []float64 `json:"magnitude" yaml:"magnitude"`
	Phase     []float64 `json:"phase" yaml:"phase"`
}

// New validates and wraps the three arrays.
func New(name string, freq, magDB, phaseDeg []float64) (*Response, error) {
	r := &Response{Name: name, Frequency: freq, Magnitude: magDB, Phase: phaseDeg}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks lengths, finiteness and frequency ordering.
func (r *Response) Validate() error {
	n := len(r.Frequency)
	if n < 2 || len(r.Magnitude) != n || len(r.Phase) != n {
		return fmt.Errorf("%d/%d/%d samples: %w", n, len(r.Magnitude), len(r.Phase), ErrShape)
	}
	for i := 0; i < n; i++ {
		for _, v := range []float64{r.Frequency[i], r.Magnitude[i], r.Phase[i]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("sample %d is not finite: %w", i, ErrShape)
			}
		}
		if r.Frequency[i] <= 0 || (i > 0 && r.Frequency[i] <= r.Frequency[i-1]) {
			return fmt.Errorf("sample %d (%g Hz): %w", i, r.Frequency[i], ErrNotAscending)
		}
	}
	return nil
}

// Len returns the number of samples.
func (r *Response) Len() int {
	return len(r.Frequency)
}

// MagnitudePoints returns (frequency, magnitude) pairs.
func (r *Response) MagnitudePoints() []geometry.Point2D {
	return zip(r.Frequency, r.Magnitude)
}

// PhasePoints returns (frequency, phase) pairs.
func (r *Response) PhasePoints() []geometry.Point2D {
	return zip(r.Frequency, r.Phase)
}

// NicholsPoints returns (phase, magnitude) pairs in frequency order.
func (r *Response) NicholsPoints() []geometry.Point2D {
	return zip(r.Phase, r.Magnitude)
}

// Unwrapped returns a copy with continuous phase.
func (r *Response) Unwrapped() *Response {
	out := *r
	out.Phase = nichols.Unwrap(r.Phase)
	return &out
}

// Wrapped returns a copy with phase folded into (-180, 180].
func (r *Response) Wrapped() *Response {
	out := *r
	out.Phase = Wrap(r.Phase)
	return &out
}

// Wrap folds each phase into (-180, 180].
func Wrap(deg []float64) []float64 {
	out := make([]float64, len(deg))
	for i, d := range deg {
		w := math.Mod(d+180, 360)
		if w <= 0 {
			w += 360
		}
		out[i] = w - 180
	}
	return out
}

func zip(xs, ys []float64) []geometry.Point2D {
	out := make([]geometry.Point2D, len(xs))
	for i := range xs {
		out[i] = geometry.Point2D{X: xs[i], Y: ys[i]}
	}
	return out
}
