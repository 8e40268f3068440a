package curve

import (
	"fmt"
	"sort"
)

// Extrapolation selects how [Curve.InterpolateWith] treats temperatures
// outside the sampled range.
type Extrapolation int

const (
	// ExtrapolateNone rejects out-of-range temperatures with ErrOutOfRange.
	ExtrapolateNone Extrapolation = iota
	// ExtrapolateClamp returns the value of the nearest end sample.
	ExtrapolateClamp
	// ExtrapolateLinear extends the first or last segment.
	ExtrapolateLinear
)

// Interpolate returns the linearly interpolated susceptibility at t.
// At a sample temperature the sample value is returned exactly.
func (c Curve) Interpolate(t float64) (float64, error) {
	return c.InterpolateWith(t, ExtrapolateNone)
}

// InterpolateWith is like Interpolate but applies mode outside the sampled
// range.
func (c Curve) InterpolateWith(t float64, mode Extrapolation) (float64, error) {
	n := len(c.xs)
	if n < 2 {
		return 0, ErrInsufficientData
	}

	if c.Contains(t) {
		return c.lin.Predict(t), nil
	}

	switch mode {
	case ExtrapolateClamp:
		return c.lin.Predict(t), nil
	case ExtrapolateLinear:
		i := 0
		if t > c.xs[n-1] {
			i = n - 2
		}
		slope := (c.ys[i+1] - c.ys[i]) / (c.xs[i+1] - c.xs[i])
		return c.ys[i] + slope*(t-c.xs[i]), nil
	default:
		return 0, c.rangeError(t)
	}
}

func (c Curve) rangeError(t float64) error {
	lo, hi := c.Domain()
	return fmt.Errorf("%w: %g not in [%g, %g]", ErrOutOfRange, t, lo, hi)
}

// nodeSlope returns the finite-difference derivative at ascending index j:
// central over the two neighbours, one-sided at the ends.
func (c Curve) nodeSlope(j int) float64 {
	n := len(c.xs)
	lo, hi := j-1, j+1
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return (c.ys[hi] - c.ys[lo]) / (c.xs[hi] - c.xs[lo])
}

// Derivative returns dχ/dT at t. Node derivatives are finite differences on
// neighbouring samples; between samples they are interpolated linearly.
func (c Curve) Derivative(t float64) (float64, error) {
	n := len(c.xs)
	if n < 2 {
		return 0, ErrInsufficientData
	}
	if !c.Contains(t) {
		return 0, c.rangeError(t)
	}

	j := sort.SearchFloat64s(c.xs, t)
	if j < n && c.xs[j] == t {
		return c.nodeSlope(j), nil
	}

	i := j - 1
	d0, d1 := c.nodeSlope(i), c.nodeSlope(j)
	frac := (t - c.xs[i]) / (c.xs[j] - c.xs[i])
	return d0 + frac*(d1-d0), nil
}

// Derivatives returns the finite-difference derivative at every sample
// temperature as a curve with the same direction.
func (c Curve) Derivatives() Curve {
	ds := make([]float64, len(c.xs))
	for j := range ds {
		ds[j] = c.nodeSlope(j)
	}
	return c.with(ds)
}
