package chart

// Settings groups the chart-wide behavior switches and tolerances that
// the overlay managers read.
type Settings struct {
	// CursorTolerance is the grab distance for a cursor, as a fraction of
	// the visible x span.
	CursorTolerance float64
	// AuxLineThreshold is the hit distance for auxiliary lines, as a
	// fraction of the relevant axis span.
	AuxLineThreshold float64
	// NicholsLabelThreshold is the hover distance for grid circles, as a
	// fraction of the x span.
	NicholsLabelThreshold float64
	// PointHitTolerance is the nearest-point search radius in pixels.
	PointHitTolerance float64
	// MeasureHitTolerance is the measurement pick radius in pixels.
	MeasureHitTolerance float64
	// ShadowSamples is the densified sample count per series; 0 disables it.
	ShadowSamples int
	// LimitCursorToSeries clamps cursors to their series' x domain.
	LimitCursorToSeries bool
	// SyncX and SyncY control range propagation to a sub-chart.
	SyncX bool
	SyncY bool
	// ZoomFactor is the wheel zoom step.
	ZoomFactor float64
	// DefaultMeasureType is used for new measurements.
	DefaultMeasureType MeasureType
	// HighlightWidth is the pen width of a hovered auxiliary line.
	HighlightWidth float64
}

// DefaultSettings returns the stock tolerances.
func DefaultSettings() Settings {
	return Settings{
		CursorTolerance:       0.05,
		AuxLineThreshold:      0.08,
		NicholsLabelThreshold: 0.08,
		PointHitTolerance:     10,
		MeasureHitTolerance:   8,
		ShadowSamples:         1000,
		SyncX:                 true,
		SyncY:                 false,
		ZoomFactor:            2,
		DefaultMeasureType:    MeasurePointToPoint,
		HighlightWidth:        3,
	}
}
