package chart

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates an unknown series or overlay id.
var ErrNotFound = errors.New("not found")

// ErrOutOfRange indicates a query outside the domain of a series.
var ErrOutOfRange = errors.New("outside series domain")

// ErrInvalidAxis indicates a rejected axis configuration.
var ErrInvalidAxis = errors.New("invalid axis configuration")

// ErrDegenerateMeasurement indicates a measurement whose two anchors coincide.
var ErrDegenerateMeasurement = errors.New("measurement anchors coincide")

// ErrNoSubChart indicates an operation that needs a linked sub-chart.
var ErrNoSubChart = errors.New("no sub-chart attached")

// ErrUnknownAction indicates a command id with no registered handler.
var ErrUnknownAction = errors.New("unknown action")

// AxisError describes why an axis configuration was rejected.
type AxisError struct {
	Axis   string // "x" or "y"
	Reason string
}

func (e *AxisError) Error() string {
	return fmt.Sprintf("invalid %s axis: %s", e.Axis, e.Reason)
}

func (e *AxisError) Unwrap() error {
	return ErrInvalidAxis
}

func newAxisError(axis, format string, args ...interface{}) *AxisError {
	return &AxisError{Axis: axis, Reason: fmt.Sprintf(format, args...)}
}
