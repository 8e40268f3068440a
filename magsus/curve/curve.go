package curve

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/interp"

	"github.com/cwbudde/algo-magsus/internal/numeric"
)

// Direction is the temperature order of a branch.
type Direction int

const (
	// Ascending samples run from low to high temperature (heating).
	Ascending Direction = iota
	// Descending samples run from high to low temperature (cooling).
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Point is a single (temperature, susceptibility) sample.
type Point struct {
	T   float64
	Chi float64
}

// Curve is an immutable temperature/susceptibility sequence.
//
// Samples are kept internally in ascending temperature order; dir records
// the order in which they were supplied and is honoured by every accessor
// and by every derived curve.
type Curve struct {
	xs  []float64
	ys  []float64
	dir Direction
	lin interp.PiecewiseLinear
}

// New builds a curve from parallel temperature and susceptibility slices.
// Temperatures must be strictly increasing or strictly decreasing. The
// inputs are copied.
func New(temps, chis []float64) (Curve, error) {
	if len(temps) != len(chis) {
		return Curve{}, fmt.Errorf("%w: %d temperatures, %d values", ErrLengthMismatch, len(temps), len(chis))
	}
	if len(temps) < 2 {
		return Curve{}, fmt.Errorf("%w: %d samples, need at least 2", ErrInsufficientData, len(temps))
	}
	if !numeric.AllFinite(temps) || !numeric.AllFinite(chis) {
		return Curve{}, ErrNonFinite
	}

	dir, err := direction(temps)
	if err != nil {
		return Curve{}, err
	}

	xs := slices.Clone(temps)
	ys := slices.Clone(chis)
	if dir == Descending {
		slices.Reverse(xs)
		slices.Reverse(ys)
	}
	return build(xs, ys, dir)
}

// FromPoints builds a curve from a sample sequence.
func FromPoints(points []Point) (Curve, error) {
	temps := make([]float64, len(points))
	chis := make([]float64, len(points))
	for i, p := range points {
		temps[i] = p.T
		chis[i] = p.Chi
	}
	return New(temps, chis)
}

// Normalize builds a curve from raw instrument samples that may be out of
// order or repeat a temperature. Samples are sorted into dir order and
// samples sharing a temperature are averaged.
func Normalize(temps, chis []float64, dir Direction) (Curve, error) {
	if len(temps) != len(chis) {
		return Curve{}, fmt.Errorf("%w: %d temperatures, %d values", ErrLengthMismatch, len(temps), len(chis))
	}
	if !numeric.AllFinite(temps) || !numeric.AllFinite(chis) {
		return Curve{}, ErrNonFinite
	}

	idx := make([]int, len(temps))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return temps[idx[a]] < temps[idx[b]] })

	xs := make([]float64, 0, len(temps))
	ys := make([]float64, 0, len(temps))
	for start := 0; start < len(idx); {
		end := start
		sum := 0.0
		for end < len(idx) && temps[idx[end]] == temps[idx[start]] {
			sum += chis[idx[end]]
			end++
		}
		xs = append(xs, temps[idx[start]])
		ys = append(ys, sum/float64(end-start))
		start = end
	}

	if len(xs) < 2 {
		return Curve{}, fmt.Errorf("%w: %d distinct temperatures, need at least 2", ErrInsufficientData, len(xs))
	}
	return build(xs, ys, dir)
}

// build takes ownership of ascending xs/ys.
func build(xs, ys []float64, dir Direction) (Curve, error) {
	c := Curve{xs: xs, ys: ys, dir: dir}
	if err := c.lin.Fit(xs, ys); err != nil {
		return Curve{}, fmt.Errorf("curve: %w", err)
	}
	return c, nil
}

func direction(temps []float64) (Direction, error) {
	dir := Ascending
	if temps[1] < temps[0] {
		dir = Descending
	}

	for i := 1; i < len(temps); i++ {
		d := temps[i] - temps[i-1]
		switch {
		case d == 0:
			return dir, fmt.Errorf("%w: %g at samples %d and %d", ErrDuplicateTemperature, temps[i], i-1, i)
		case (d > 0) != (dir == Ascending):
			return dir, fmt.Errorf("%w: sample %d (%g) after %g", ErrNotMonotonic, i, temps[i], temps[i-1])
		}
	}
	return dir, nil
}

// Len returns the number of samples.
func (c Curve) Len() int { return len(c.xs) }

// Direction returns the temperature order of the curve.
func (c Curve) Direction() Direction { return c.dir }

// index maps a position in supplied order to the ascending storage index.
func (c Curve) index(i int) int {
	if c.dir == Descending {
		return len(c.xs) - 1 - i
	}
	return i
}

// At returns the i-th sample in curve order.
func (c Curve) At(i int) Point {
	j := c.index(i)
	return Point{T: c.xs[j], Chi: c.ys[j]}
}

// First returns the first sample in curve order.
func (c Curve) First() Point { return c.At(0) }

// Last returns the last sample in curve order.
func (c Curve) Last() Point { return c.At(c.Len() - 1) }

// Points returns a copy of the samples in curve order.
func (c Curve) Points() []Point {
	out := make([]Point, c.Len())
	for i := range out {
		out[i] = c.At(i)
	}
	return out
}

// Temperatures returns a copy of the sample temperatures in curve order.
func (c Curve) Temperatures() []float64 {
	out := slices.Clone(c.xs)
	if c.dir == Descending {
		slices.Reverse(out)
	}
	return out
}

// Susceptibilities returns a copy of the sample values in curve order.
func (c Curve) Susceptibilities() []float64 {
	out := slices.Clone(c.ys)
	if c.dir == Descending {
		slices.Reverse(out)
	}
	return out
}

// Domain returns the lowest and highest sampled temperatures.
func (c Curve) Domain() (lo, hi float64) {
	if len(c.xs) == 0 {
		return math.NaN(), math.NaN()
	}
	return c.xs[0], c.xs[len(c.xs)-1]
}

// Contains reports whether t lies within the sampled range.
func (c Curve) Contains(t float64) bool {
	lo, hi := c.Domain()
	return t >= lo && t <= hi
}

// MaxTemperature returns the highest sampled temperature.
func (c Curve) MaxTemperature() float64 {
	_, hi := c.Domain()
	return hi
}
