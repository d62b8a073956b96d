// Package nichols generates the constant closed-loop magnitude (M) and
// phase (N) contours of a Nichols chart.
package nichols

import (
	"fmt"
	"math"
	"math/cmplx"

	"smart-chart/pkg/geometry"
)

// MCircleDB is the catalog of closed-loop magnitudes, in dB.
var MCircleDB = []float64{0, 0.25, 0.5, 3, 6, -1, -3, -6, -12, -20}

// NCircleDeg is the catalog of closed-loop phases, in degrees.
var NCircleDeg = []float64{1, 5, 10, 20, 30, 40, 60, 80, 100, 120, 140, 150, 160, 170, 175, 179}

// MinMagnitudeDB bounds the curves from below.
const MinMagnitudeDB = -40

// step is the parametrization step in degrees.
const step = 1.0

// Kind tells M contours from N contours.
type Kind int

const (
	KindM Kind = iota
	KindN
)

func (k Kind) String() string {
	if k == KindN {
		return "N"
	}
	return "M"
}

// Circle is one contour in the Nichols plane, centered near -180 deg.
// X is open-loop phase in degrees and Y open-loop magnitude in dB.
type Circle struct {
	Kind   Kind
	Value  float64
	Label  string
	Points []geometry.Point2D
}

// ToNichols converts a complex open-loop value to (phase deg, magnitude dB).
func ToNichols(z complex128) geometry.Point2D {
	return geometry.Point2D{
		X: cmplx.Phase(z) * 180 / math.Pi,
		Y: 20 * math.Log10(cmplx.Abs(z)),
	}
}

// Unwrap removes jumps larger than 180 degrees between consecutive phases.
func Unwrap(deg []float64) []float64 {
	out := make([]float64, len(deg))
	if len(deg) == 0 {
		return out
	}
	out[0] = deg[0]
	offset := 0.0
	for i := 1; i < len(deg); i++ {
		d := deg[i] - deg[i-1]
		if d > 180 {
			offset -= 360 * math.Ceil((d-180)/360)
		} else if d < -180 {
			offset += 360 * math.Ceil((-d-180)/360)
		}
		out[i] = deg[i] + offset
	}
	return out
}

// MCircle builds the contour |G/(1+G)| = 10^(db/20).
func MCircle(db float64) Circle {
	m := math.Pow(10, db/20)
	var zs []complex128
	if db == 0 {
		// m = 1 degenerates to the line Re = -1/2.
		for a := -89.0; a <= 89; a += step {
			zs = append(zs, complex(-0.5, 0.5*math.Tan(a*math.Pi/180)))
		}
	} else {
		m2 := m * m
		c := -m2 / (m2 - 1)
		r := math.Abs(m / (m2 - 1))
		for _, p := range geometry.GenerateCirclePoints(c, 0, r, int(360/step)) {
			zs = append(zs, complex(p.X, p.Y))
		}
		zs = append(zs, zs[0])
	}
	return Circle{Kind: KindM, Value: db, Label: formatDB(db), Points: project(zs)}
}

// NCircle builds the contour arg(G/(1+G)) = alpha. The circle passes
// through the origin; the parameter is laid out so that point sits at 270
// deg, which is skipped and the arc is walked from there.
func NCircle(alpha float64) Circle {
	n := math.Tan(alpha * math.Pi / 180)
	k := 1 / (2 * n)
	cx, cy := -0.5, k
	r := math.Sqrt(0.25 + k*k)
	origin := math.Atan2(-cy, -cx)

	var zs []complex128
	for a := step; a < 360; a += step {
		t := origin + a*math.Pi/180
		zs = append(zs, complex(cx+r*math.Cos(t), cy+r*math.Sin(t)))
	}
	return Circle{Kind: KindN, Value: alpha, Label: formatDeg(alpha), Points: project(zs)}
}

// Catalog returns every M and N contour.
func Catalog() []Circle {
	out := make([]Circle, 0, len(MCircleDB)+len(NCircleDeg))
	for _, db := range MCircleDB {
		out = append(out, MCircle(db))
	}
	for _, a := range NCircleDeg {
		out = append(out, NCircle(a))
	}
	return out
}

// project maps complex samples to the Nichols plane, drops samples below
// MinMagnitudeDB, unwraps the phase and centers the curve on -180 deg.
func project(zs []complex128) []geometry.Point2D {
	var pts []geometry.Point2D
	for _, z := range zs {
		p := ToNichols(z)
		if p.Y < MinMagnitudeDB || !p.IsFinite() {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) == 0 {
		return nil
	}
	phase := Unwrap(geometry.Xs(pts))
	lo, hi := phase[0], phase[0]
	for _, v := range phase {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	shift := 360 * math.Round((-180-(lo+hi)/2)/360)
	for i := range pts {
		pts[i].X = phase[i] + shift
	}
	return pts
}

func formatDB(v float64) string {
	return fmt.Sprintf("%g dB", v)
}

func formatDeg(v float64) string {
	return fmt.Sprintf("%g deg", v)
}
