package chart

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"sort"

	"smart-chart/pkg/colorutil"
	"smart-chart/pkg/geometry"
)

// Series is one named polyline in a chart.
type Series struct {
	ID      int
	Name    string
	Points  []geometry.Point2D
	Visible bool
	Color   color.RGBA
	Width   float64

	shadow []geometry.Point2D
}

// Shadow returns the densified copy used for hit-testing, or nil.
func (s *Series) Shadow() []geometry.Point2D {
	return s.shadow
}

// XRange returns the x extent of the series.
func (s *Series) XRange() (geometry.Range, bool) {
	return geometry.Extent(s.Points, geometry.CoordX)
}

// YRange returns the y extent of the series.
func (s *Series) YRange() (geometry.Range, bool) {
	return geometry.Extent(s.Points, geometry.CoordY)
}

// SeriesStore owns the ordered polylines of one chart.
// Points are kept in insertion order and never sorted, so a Nichols
// locus with non-monotonic phase keeps its shape.
type SeriesStore struct {
	ids     *IDAllocator
	byID    map[int]*Series
	order   []int
	samples int
	logX    bool
}

// NewSeriesStore creates an empty store. samples is the shadow density;
// 0 disables shadows.
func NewSeriesStore(samples int) *SeriesStore {
	return &SeriesStore{
		ids:     NewIDAllocator(),
		byID:    make(map[int]*Series),
		samples: samples,
	}
}

// Add stores a copy of points under a fresh id and returns the id.
func (s *SeriesStore) Add(points []geometry.Point2D, name string) int {
	id := s.ids.Acquire()
	if name == "" {
		name = fmt.Sprintf("Series %d", id)
	}
	ser := &Series{
		ID:      id,
		Name:    name,
		Points:  append([]geometry.Point2D(nil), points...),
		Visible: true,
		Color:   colorutil.SeriesColor(len(s.order)),
		Width:   1.5,
	}
	s.buildShadow(ser)
	s.byID[id] = ser
	s.order = append(s.order, id)
	return id
}

// Remove deletes a series and releases its id.
func (s *SeriesStore) Remove(id int) error {
	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("series %d: %w", id, ErrNotFound)
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.ids.Release(id)
	return nil
}

// Update replaces the points of a series, keeping id, name and visibility.
func (s *SeriesStore) Update(id int, points []geometry.Point2D) error {
	ser, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("series %d: %w", id, ErrNotFound)
	}
	ser.Points = append(ser.Points[:0:0], points...)
	s.buildShadow(ser)
	return nil
}

// Rename changes the display name of a series.
func (s *SeriesStore) Rename(id int, name string) error {
	ser, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("series %d: %w", id, ErrNotFound)
	}
	ser.Name = name
	return nil
}

// SetColor changes the pen of a series.
func (s *SeriesStore) SetColor(id int, c color.RGBA) error {
	ser, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("series %d: %w", id, ErrNotFound)
	}
	ser.Color = c
	return nil
}

// Get returns the series with the given id.
func (s *SeriesStore) Get(id int) (*Series, bool) {
	ser, ok := s.byID[id]
	return ser, ok
}

// Len returns the number of series.
func (s *SeriesStore) Len() int {
	return len(s.order)
}

// All returns every series in insertion order.
func (s *SeriesStore) All() []*Series {
	out := make([]*Series, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Visible returns the visible series in insertion order.
func (s *SeriesStore) Visible() []*Series {
	var out []*Series
	for _, id := range s.order {
		if ser := s.byID[id]; ser.Visible {
			out = append(out, ser)
		}
	}
	return out
}

// SetVisible shows exactly the series listed in ids and hides the rest.
func (s *SeriesStore) SetVisible(ids []int) {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, ser := range s.byID {
		ser.Visible = want[ser.ID]
	}
}

// IDs returns all series ids in insertion order.
func (s *SeriesStore) IDs() []int {
	return append([]int(nil), s.order...)
}

// Interpolate returns the y of series id at x. It wraps ErrOutOfRange when
// x lies outside the series' x extent.
func (s *SeriesStore) Interpolate(id int, x float64) (float64, error) {
	ser, ok := s.byID[id]
	if !ok {
		return 0, fmt.Errorf("series %d: %w", id, ErrNotFound)
	}
	y, ok := geometry.Interpolate(ser.Points, x)
	if !ok {
		return 0, fmt.Errorf("series %d at x=%g: %w", id, x, ErrOutOfRange)
	}
	return y, nil
}

// Metric measures the distance between two data points, usually in pixels.
type Metric func(a, b geometry.Point2D) float64

// NearestPoint searches the visible series for a point within maxDistance
// of target. Each series contributes the first qualifying point in its own
// order (shadow samples when available); among those the closest wins.
func (s *SeriesStore) NearestPoint(target geometry.Point2D, maxDistance float64, dist Metric) (geometry.Point2D, int, bool) {
	var (
		best     geometry.Point2D
		bestID   int
		bestDist = math.Inf(1)
		found    bool
	)
	for _, ser := range s.Visible() {
		pts := ser.shadow
		if len(pts) == 0 {
			pts = ser.Points
		}
		for _, p := range pts {
			d := dist(target, p)
			if math.IsNaN(d) || d > maxDistance {
				continue
			}
			if d < bestDist {
				best, bestID, bestDist, found = p, ser.ID, d, true
			}
			break
		}
	}
	return best, bestID, found
}

// DataExtent returns the x and y extent over the visible series.
func (s *SeriesStore) DataExtent() (x, y geometry.Range, ok bool) {
	var all []geometry.Point2D
	for _, ser := range s.Visible() {
		all = append(all, ser.Points...)
	}
	if len(all) == 0 {
		return x, y, false
	}
	b := geometry.BoundingBox(all)
	return geometry.NewRange(b.X, b.X+b.Width), geometry.NewRange(b.Y, b.Y+b.Height), true
}

// allPositive reports whether every point of every series has a positive
// value in coordinate c.
func (s *SeriesStore) allPositive(c geometry.Coord) bool {
	for _, ser := range s.byID {
		for _, p := range ser.Points {
			if c.Of(p) <= 0 {
				return false
			}
		}
	}
	return true
}

// SetLogSpacing switches shadow sampling between linear and log x spacing.
func (s *SeriesStore) SetLogSpacing(logX bool) {
	if s.logX == logX {
		return
	}
	s.logX = logX
	for _, ser := range s.byID {
		s.buildShadow(ser)
	}
}

// buildShadow densifies a strictly increasing series. Other shapes keep no
// shadow and hit-test against the raw points.
func (s *SeriesStore) buildShadow(ser *Series) {
	ser.shadow = nil
	if s.samples < 2 || len(ser.Points) < 2 || !geometry.IsStrictlyIncreasing(ser.Points) {
		return
	}
	n := s.samples
	if n < len(ser.Points) {
		n = len(ser.Points)
	}
	shadow, err := geometry.Resample(ser.Points, n, s.logX)
	if err != nil {
		log.Printf("series %d: shadow resample: %v", ser.ID, err)
		return
	}
	ser.shadow = shadow
}

// sortedIDs returns the ids of a map in ascending order.
func sortedIDs[T any](m map[int]T) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
