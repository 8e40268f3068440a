package spline

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/cwbudde/algo-magsus/magsus/curve"
)

// ErrOrder is returned for derivative orders outside 0..3.
var ErrOrder = errors.New("spline: unsupported derivative order")

// Model is a fitted natural cubic smoothing spline. It is immutable and safe
// for concurrent use.
type Model struct {
	xs, ys   []float64
	g        []float64
	m        []float64
	strength float64
	lambda   float64
	residual float64
}

// Crossing is a sign change of the second derivative.
type Crossing struct {
	// T is the temperature of the zero of g″.
	T float64
	// Third is g‴ on the segment containing the zero.
	Third float64
	// Curvature is the smaller of the two peak |g″| values on either side of
	// the zero, bounded by the neighbouring crossings.
	Curvature float64
}

// Strength returns the smoothing strength the model was fitted with.
func (m *Model) Strength() float64 { return m.strength }

// Lambda returns the penalty weight. It is +Inf for the straight-line limit.
func (m *Model) Lambda() float64 { return m.lambda }

// Residual returns Σ (w·(y−g))² over the knots.
func (m *Model) Residual() float64 { return m.residual }

// Domain returns the knot range.
func (m *Model) Domain() (lo, hi float64) {
	return m.xs[0], m.xs[len(m.xs)-1]
}

// Knots returns the knot temperatures and the fitted values there.
func (m *Model) Knots() (temps, values []float64) {
	return slices.Clone(m.xs), slices.Clone(m.g)
}

// SecondDerivatives returns g″ at the knots. The end values are zero.
func (m *Model) SecondDerivatives() []float64 {
	return slices.Clone(m.m)
}

// Evaluate returns g(t).
func (m *Model) Evaluate(t float64) (float64, error) {
	return m.Derivative(t, 0)
}

// Derivative returns the order-th derivative of g at t. At a knot the
// segment to its right is used, except at the last knot.
func (m *Model) Derivative(t float64, order int) (float64, error) {
	if order < 0 || order > 3 {
		return 0, fmt.Errorf("%w: %d", ErrOrder, order)
	}
	lo, hi := m.Domain()
	if math.IsNaN(t) || t < lo || t > hi {
		return 0, fmt.Errorf("spline: %w: %g not in [%g, %g]", curve.ErrOutOfRange, t, lo, hi)
	}
	return m.eval(m.segment(t), t, order), nil
}

// segment returns i such that xs[i] <= t < xs[i+1], clamped to the last
// segment.
func (m *Model) segment(t float64) int {
	i := sort.SearchFloat64s(m.xs, t)
	if i < len(m.xs) && m.xs[i] == t {
		return min(i, len(m.xs)-2)
	}
	return max(i-1, 0)
}

func (m *Model) eval(i int, t float64, order int) float64 {
	h := m.xs[i+1] - m.xs[i]
	a := m.xs[i+1] - t
	b := t - m.xs[i]
	mi, mj := m.m[i], m.m[i+1]
	ci := m.g[i]/h - mi*h/6
	cj := m.g[i+1]/h - mj*h/6

	switch order {
	case 0:
		return mi*a*a*a/(6*h) + mj*b*b*b/(6*h) + ci*a + cj*b
	case 1:
		return -mi*a*a/(2*h) + mj*b*b/(2*h) - ci + cj
	case 2:
		return (mi*a + mj*b) / h
	default:
		return (mj - mi) / h
	}
}

// Sample evaluates g at temps and returns the result as a curve.
func (m *Model) Sample(temps []float64) (curve.Curve, error) {
	chis := make([]float64, len(temps))
	for i, t := range temps {
		v, err := m.Evaluate(t)
		if err != nil {
			return curve.Curve{}, err
		}
		chis[i] = v
	}
	return curve.New(temps, chis)
}

// SecondDerivativeRoots returns the zero crossings of g″ in ascending
// temperature order.
func (m *Model) SecondDerivativeRoots() []Crossing {
	type bracket struct {
		t    float64
		l, r int // knots on either side of the zero
	}

	n := len(m.xs)
	var bs []bracket
	for i := 0; i+1 < n; i++ {
		mi, mj := m.m[i], m.m[i+1]
		if mi*mj < 0 {
			h := m.xs[i+1] - m.xs[i]
			bs = append(bs, bracket{t: m.xs[i] + h*mi/(mi-mj), l: i, r: i + 1})
		}
	}
	for i := 1; i+1 < n; i++ {
		if m.m[i] == 0 && m.m[i-1]*m.m[i+1] < 0 {
			bs = append(bs, bracket{t: m.xs[i], l: i - 1, r: i + 1})
		}
	}
	sort.Slice(bs, func(a, b int) bool { return bs[a].t < bs[b].t })

	out := make([]Crossing, len(bs))
	for k, b := range bs {
		from, to := 0, n-1
		if k > 0 {
			from = bs[k-1].r
		}
		if k+1 < len(bs) {
			to = bs[k+1].l
		}
		left := peakAbs(m.m[min(from, b.l) : b.l+1])
		right := peakAbs(m.m[b.r : max(to, b.r)+1])
		seg := b.l
		if b.r-b.l == 2 {
			seg = b.l + 1
		}
		out[k] = Crossing{
			T:         b.t,
			Third:     m.eval(seg, b.t, 3),
			Curvature: min(left, right),
		}
	}
	return out
}

// Roots returns the zeros of g in ascending order.
func (m *Model) Roots() []float64 {
	var roots []float64
	for i := 0; i+1 < len(m.xs); i++ {
		roots = append(roots, m.segmentRoots(i)...)
	}
	return roots
}

// segmentRoots finds sign changes of g on segment i by subdividing it and
// refining each bracket by bisection.
func (m *Model) segmentRoots(i int) []float64 {
	const (
		subdivisions = 8
		iterations   = 60
	)
	x0, x1 := m.xs[i], m.xs[i+1]
	step := (x1 - x0) / subdivisions

	var roots []float64
	a := x0
	fa := m.eval(i, a, 0)
	if fa == 0 {
		roots = append(roots, a)
	}
	for k := 1; k <= subdivisions; k++ {
		b := x0 + float64(k)*step
		if k == subdivisions {
			b = x1
		}
		fb := m.eval(i, b, 0)
		if fa*fb < 0 {
			lo, hi, flo := a, b, fa
			for range iterations {
				mid := 0.5 * (lo + hi)
				fm := m.eval(i, mid, 0)
				if fm == 0 {
					lo, hi = mid, mid
					break
				}
				if flo*fm < 0 {
					hi = mid
				} else {
					lo, flo = mid, fm
				}
			}
			roots = append(roots, 0.5*(lo+hi))
		} else if fb == 0 && k < subdivisions {
			roots = append(roots, b)
		}
		a, fa = b, fb
	}
	if i == len(m.xs)-2 && fa == 0 {
		roots = append(roots, x1)
	}
	return roots
}

func peakAbs(xs []float64) float64 {
	var p float64
	for _, v := range xs {
		p = max(p, math.Abs(v))
	}
	return p
}
