package curve

import "errors"

var (
	// ErrOutOfRange is returned when a temperature lies outside the sampled
	// range of a curve and extrapolation was not requested.
	ErrOutOfRange = errors.New("curve: temperature outside sampled range")
	// ErrInsufficientData is returned when too few samples are available for
	// the requested operation.
	ErrInsufficientData = errors.New("curve: insufficient data")
	// ErrDuplicateTemperature is returned when two samples share a temperature.
	ErrDuplicateTemperature = errors.New("curve: duplicate temperature")
	// ErrNotMonotonic is returned when temperatures change direction.
	ErrNotMonotonic = errors.New("curve: temperatures not monotonic")
	// ErrLengthMismatch is returned when temperature and susceptibility
	// slices differ in length.
	ErrLengthMismatch = errors.New("curve: temperature and susceptibility lengths differ")
	// ErrNonFinite is returned for NaN or infinite sample values.
	ErrNonFinite = errors.New("curve: non-finite sample")
)
