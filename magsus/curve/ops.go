package curve

import (
	"fmt"
	"slices"
)

// with returns a curve sharing c's temperatures and direction with new
// ascending-order values ys.
func (c Curve) with(ys []float64) Curve {
	out, err := build(c.xs, ys, c.dir)
	if err != nil {
		// xs already passed validation when c was built.
		panic(err)
	}
	return out
}

// Subtract returns a curve with χ(T_i) - other(T_i) at every sample
// temperature of c. other must cover c's temperature range.
func (c Curve) Subtract(other Curve) (Curve, error) {
	if c.Len() < 2 {
		return Curve{}, ErrInsufficientData
	}

	ys := make([]float64, len(c.xs))
	for j, t := range c.xs {
		v, err := other.Interpolate(t)
		if err != nil {
			return Curve{}, fmt.Errorf("curve: subtract at %g: %w", t, err)
		}
		ys[j] = c.ys[j] - v
	}
	return c.with(ys), nil
}

// Chop keeps the samples with min <= T <= max.
func (c Curve) Chop(min, max float64) (Curve, error) {
	if min > max {
		min, max = max, min
	}

	lo := 0
	for lo < len(c.xs) && c.xs[lo] < min {
		lo++
	}
	hi := len(c.xs)
	for hi > lo && c.xs[hi-1] > max {
		hi--
	}
	if hi-lo < 2 {
		return Curve{}, fmt.Errorf("%w: %d samples in [%g, %g]", ErrInsufficientData, hi-lo, min, max)
	}

	return build(slices.Clone(c.xs[lo:hi]), slices.Clone(c.ys[lo:hi]), c.dir)
}

// Scale multiplies every susceptibility by k.
func (c Curve) Scale(k float64) Curve {
	return c.mapChi(func(v float64) float64 { return v * k })
}

// Shift adds offset to every susceptibility.
func (c Curve) Shift(offset float64) Curve {
	return c.mapChi(func(v float64) float64 { return v + offset })
}

// ShiftNonNegative raises the curve so that its minimum is zero. Curves that
// are already non-negative are returned unchanged.
func (c Curve) ShiftNonNegative() Curve {
	if len(c.ys) == 0 {
		return c
	}
	minimum := slices.Min(c.ys)
	if minimum >= 0 {
		return c
	}
	return c.Shift(-minimum)
}

func (c Curve) mapChi(f func(float64) float64) Curve {
	ys := make([]float64, len(c.ys))
	for j, v := range c.ys {
		ys[j] = f(v)
	}
	return c.with(ys)
}

// Reverse returns the same samples in the opposite direction.
func (c Curve) Reverse() Curve {
	dir := Ascending
	if c.dir == Ascending {
		dir = Descending
	}
	out := c
	out.dir = dir
	return out
}

// Ascending returns c in ascending temperature order.
func (c Curve) Ascending() Curve {
	if c.dir == Ascending {
		return c
	}
	return c.Reverse()
}

// Descending returns c in descending temperature order.
func (c Curve) Descending() Curve {
	if c.dir == Descending {
		return c
	}
	return c.Reverse()
}

// Resample interpolates c onto n evenly spaced temperatures spanning its
// range, keeping its direction.
func (c Curve) Resample(n int) (Curve, error) {
	if n < 2 || c.Len() < 2 {
		return Curve{}, fmt.Errorf("%w: resample to %d points", ErrInsufficientData, n)
	}

	lo, hi := c.Domain()
	step := (hi - lo) / float64(n-1)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = lo + float64(i)*step
		ys[i] = c.lin.Predict(xs[i])
	}
	xs[n-1] = hi
	ys[n-1] = c.ys[len(c.ys)-1]

	return build(xs, ys, c.dir)
}
