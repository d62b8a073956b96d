// Package margin computes gain and phase stability margins from sampled
// frequency responses.
package margin

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCrossing is returned when the response never reaches the
	// crossover level inside the sampled range.
	ErrNoCrossing = errors.New("no crossing in sampled range")
	// ErrLengthMismatch is returned when the input arrays differ in length.
	ErrLengthMismatch = errors.New("frequency, magnitude and phase lengths differ")
	// ErrTooFewSamples is returned for fewer than two samples.
	ErrTooFewSamples = errors.New("need at least two samples")
)

// Result is a margin and the frequency where it was read.
type Result struct {
	Margin    float64
	Frequency float64
	// Magnitude and Phase are the interpolated response at Frequency.
	Magnitude float64
	Phase     float64
}

func (r Result) String() string {
	return fmt.Sprintf("%.3f at %.4g", r.Margin, r.Frequency)
}

// GainMargin scans the phase for the first crossing of -180 deg,
// interpolates the crossing frequency and the magnitude there, and returns
// 0 - magnitude.
func GainMargin(freq, magDB, phaseDeg []float64) (Result, error) {
	if err := check(freq, magDB, phaseDeg); err != nil {
		return Result{}, err
	}
	f, ok := crossing(freq, phaseDeg, -180)
	if !ok {
		return Result{}, fmt.Errorf("gain margin: phase never crosses -180 deg: %w", ErrNoCrossing)
	}
	mag := at(freq, magDB, f)
	return Result{Margin: 0 - mag, Frequency: f, Magnitude: mag, Phase: -180}, nil
}

// PhaseMargin scans the magnitude for the first 0 dB crossing and returns
// the interpolated phase there plus 180.
func PhaseMargin(freq, magDB, phaseDeg []float64) (Result, error) {
	if err := check(freq, magDB, phaseDeg); err != nil {
		return Result{}, err
	}
	f, ok := crossing(freq, magDB, 0)
	if !ok {
		return Result{}, fmt.Errorf("phase margin: magnitude never crosses 0 dB: %w", ErrNoCrossing)
	}
	phase := at(freq, phaseDeg, f)
	return Result{Margin: phase + 180, Frequency: f, Magnitude: 0, Phase: phase}, nil
}

func check(freq, mag, phase []float64) error {
	if len(freq) != len(mag) || len(freq) != len(phase) {
		return ErrLengthMismatch
	}
	if len(freq) < 2 {
		return ErrTooFewSamples
	}
	return nil
}

// crossing returns the interpolated frequency of the first sample pair
// that straddles or touches level.
func crossing(freq, vals []float64, level float64) (float64, bool) {
	for i := 0; i < len(vals)-1; i++ {
		a, b := vals[i]-level, vals[i+1]-level
		if a == 0 {
			return freq[i], true
		}
		if a*b < 0 {
			t := a / (a - b)
			return freq[i] + t*(freq[i+1]-freq[i]), true
		}
	}
	if vals[len(vals)-1] == level {
		return freq[len(freq)-1], true
	}
	return 0, false
}

// at linearly interpolates vals at frequency f over the segment holding f.
func at(freq, vals []float64, f float64) float64 {
	for i := 0; i < len(freq)-1; i++ {
		f0, f1 := freq[i], freq[i+1]
		if f == f0 {
			return vals[i]
		}
		if (f0 < f && f < f1) || (f1 < f && f < f0) {
			return vals[i] + (f-f0)*(vals[i+1]-vals[i])/(f1-f0)
		}
	}
	return vals[len(vals)-1]
}
