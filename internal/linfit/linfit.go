// Package linfit fits straight lines by weighted least squares.
package linfit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrTooFewPoints is returned when fewer than two points are supplied.
	ErrTooFewPoints = errors.New("linfit: at least two points required")
	// ErrLengthMismatch is returned when x, y and weights differ in length.
	ErrLengthMismatch = errors.New("linfit: x, y and weights must have the same length")
	// ErrDegenerate is returned when the abscissae have no spread or two lines
	// are parallel.
	ErrDegenerate = errors.New("linfit: degenerate geometry")
)

// Line is y = Intercept + Slope*x.
type Line struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// Fit computes the least-squares line through (x[i], y[i]). weights may be
// nil; otherwise weights[i] multiplies the squared residual of point i.
func Fit(x, y, weights []float64) (Line, error) {
	if len(x) != len(y) || (weights != nil && len(weights) != len(x)) {
		return Line{}, ErrLengthMismatch
	}
	if len(x) < 2 {
		return Line{}, ErrTooFewPoints
	}
	if constant(x) {
		return Line{}, fmt.Errorf("%w: all x equal to %g", ErrDegenerate, x[0])
	}

	alpha, beta := stat.LinearRegression(x, y, weights, false)
	l := Line{Slope: beta, Intercept: alpha, RSquared: 1}
	if !constant(y) {
		l.RSquared = stat.RSquared(x, y, weights, alpha, beta)
	}
	return l, nil
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// Root returns the x-axis intercept of the line.
func (l Line) Root() (float64, error) {
	if l.Slope == 0 {
		return 0, fmt.Errorf("%w: horizontal line has no root", ErrDegenerate)
	}
	return -l.Intercept / l.Slope, nil
}

// Intersect returns the abscissa at which a and b cross.
func Intersect(a, b Line) (float64, error) {
	ds := a.Slope - b.Slope
	scale := math.Max(math.Abs(a.Slope), math.Abs(b.Slope))
	if ds == 0 || math.Abs(ds) <= 1e-12*scale {
		return 0, fmt.Errorf("%w: lines are parallel (slope %g)", ErrDegenerate, a.Slope)
	}
	return (b.Intercept - a.Intercept) / ds, nil
}

// SSE returns the sum of weighted squared residuals of y about l.
func (l Line) SSE(x, y, weights []float64) float64 {
	var sum float64
	for i := range x {
		r := y[i] - l.At(x[i])
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		sum += w * r * r
	}
	return sum
}

func constant(xs []float64) bool {
	for _, v := range xs[1:] {
		if v != xs[0] {
			return false
		}
	}
	return true
}
