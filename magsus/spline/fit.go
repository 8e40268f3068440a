package spline

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-magsus/internal/linfit"
	"github.com/cwbudde/algo-magsus/internal/numeric"
	"github.com/cwbudde/algo-magsus/magsus/curve"
	"github.com/cwbudde/algo-magsus/measure/noise"
)

// ErrFitFailure is returned when the smoothing problem is numerically
// degenerate or its inputs are invalid.
var ErrFitFailure = errors.New("spline: fit failure")

const (
	// residualTolerance is the relative accuracy of the penalty search.
	residualTolerance = 1e-6
	maxBracketSteps   = 60
	maxBisections     = 200
)

// problem holds the fixed parts of the penalty system for one data set.
type problem struct {
	xs, ys []float64
	w      []float64 // weights
	d      []float64 // 1/w²
	h      []float64 // knot spacing
	rhs    []float64 // Qᵀy
}

// solution is the spline for one penalty λ.
type solution struct {
	lambda   float64
	g        []float64 // fitted values at the knots
	m        []float64 // second derivatives at the knots
	residual float64   // Σ (w·(y−g))²
}

// Fit fits a smoothing spline to c.
func Fit(c curve.Curve, opts ...Option) (*Model, error) {
	cfg := applyOptions(opts)

	asc := c.Ascending()
	if asc.Len() < 2 {
		return nil, fmt.Errorf("spline: %w", curve.ErrInsufficientData)
	}

	strength := cfg.strength
	if cfg.auto {
		s, err := noise.Strength(asc)
		if err != nil {
			return nil, fmt.Errorf("spline: automatic strength: %w", err)
		}
		strength = s
	}
	if !numeric.IsFinite(strength) || strength < 0 {
		return nil, fmt.Errorf("%w: invalid strength %g", ErrFitFailure, strength)
	}

	p, err := newProblem(asc, cfg.weights, c.Direction())
	if err != nil {
		return nil, err
	}

	sol, err := p.search(strength)
	if err != nil {
		return nil, err
	}
	if !numeric.AllFinite(sol.g) || !numeric.AllFinite(sol.m) {
		return nil, fmt.Errorf("%w: non-finite spline coefficients", ErrFitFailure)
	}

	return &Model{
		xs:       p.xs,
		ys:       p.ys,
		g:        sol.g,
		m:        sol.m,
		strength: strength,
		lambda:   sol.lambda,
		residual: sol.residual,
	}, nil
}

func newProblem(asc curve.Curve, weights []float64, dir curve.Direction) (*problem, error) {
	n := asc.Len()
	p := &problem{
		xs: asc.Temperatures(),
		ys: asc.Susceptibilities(),
		w:  make([]float64, n),
		d:  make([]float64, n),
		h:  make([]float64, n-1),
	}

	switch {
	case weights == nil:
		for i := range p.w {
			p.w[i] = 1
		}
	case len(weights) != n:
		return nil, fmt.Errorf("%w: %d weights for %d samples", ErrFitFailure, len(weights), n)
	default:
		copy(p.w, weights)
		if dir == curve.Descending {
			slices.Reverse(p.w)
		}
	}

	for i, w := range p.w {
		if !numeric.IsFinite(w) || w <= 0 {
			return nil, fmt.Errorf("%w: weight %g at sample %d", ErrFitFailure, w, i)
		}
		p.d[i] = 1 / (w * w)
	}

	for i := range p.h {
		p.h[i] = p.xs[i+1] - p.xs[i]
	}

	if n > 2 {
		p.rhs = make([]float64, n-2)
		for c := range p.rhs {
			j := c + 1
			p.rhs[c] = (p.ys[j+1]-p.ys[j])/p.h[j] - (p.ys[j]-p.ys[j-1])/p.h[j-1]
		}
	}
	return p, nil
}

// search finds the penalty whose residual matches strength.
func (p *problem) search(strength float64) (solution, error) {
	n := len(p.xs)
	if n == 2 || strength == 0 {
		return p.solve(0)
	}

	line, limit, err := p.lineLimit()
	if err != nil {
		return solution{}, err
	}
	if strength >= limit {
		return line, nil
	}

	span := p.xs[n-1] - p.xs[0]
	step := span / float64(n-1)
	lo := step * step * step
	hi := lo

	for i := 0; ; i++ {
		sol, err := p.solve(lo)
		if err != nil {
			return solution{}, err
		}
		if sol.residual <= strength {
			break
		}
		if i == maxBracketSteps {
			return solution{}, fmt.Errorf("%w: no penalty small enough for strength %g", ErrFitFailure, strength)
		}
		lo /= 10
	}

	for i := 0; i < maxBracketSteps; i++ {
		sol, err := p.solve(hi)
		if err != nil {
			return solution{}, err
		}
		if sol.residual >= strength {
			break
		}
		hi *= 10
	}

	var sol solution
	for i := 0; i < maxBisections; i++ {
		mid := math.Sqrt(lo * hi)
		sol, err = p.solve(mid)
		if err != nil {
			return solution{}, err
		}
		if math.Abs(sol.residual-strength) <= residualTolerance*strength {
			break
		}
		if sol.residual < strength {
			lo = mid
		} else {
			hi = mid
		}
		if hi/lo < 1+1e-12 {
			break
		}
	}
	return sol, nil
}

// lineLimit returns the λ → ∞ solution, the weighted least-squares line,
// and its residual.
func (p *problem) lineLimit() (solution, float64, error) {
	ww := make([]float64, len(p.w))
	vecmath.MulBlock(ww, p.w, p.w)

	l, err := linfit.Fit(p.xs, p.ys, ww)
	if err != nil {
		return solution{}, 0, fmt.Errorf("%w: %v", ErrFitFailure, err)
	}

	g := make([]float64, len(p.xs))
	for i, x := range p.xs {
		g[i] = l.At(x)
	}
	residual := l.SSE(p.xs, p.ys, ww)
	return solution{
		lambda:   math.Inf(1),
		g:        g,
		m:        make([]float64, len(p.xs)),
		residual: residual,
	}, residual, nil
}

// solve computes the spline for penalty lambda.
func (p *problem) solve(lambda float64) (solution, error) {
	n := len(p.xs)
	sol := solution{
		lambda: lambda,
		g:      slices.Clone(p.ys),
		m:      make([]float64, n),
	}
	if n == 2 {
		return sol, nil
	}

	gamma, err := p.solveGamma(lambda)
	if err != nil {
		return solution{}, err
	}
	copy(sol.m[1:n-1], gamma)
	if lambda == 0 {
		return sol, nil
	}

	// r = λ·W⁻²·Q·γ is the residual y − g.
	qg := make([]float64, n)
	for c, v := range gamma {
		j := c + 1
		a, b := 1/p.h[j-1], 1/p.h[j]
		qg[j-1] += v * a
		qg[j] -= v * (a + b)
		qg[j+1] += v * b
	}

	r := make([]float64, n)
	for i := range r {
		r[i] = lambda * p.d[i] * qg[i]
		sol.g[i] = p.ys[i] - r[i]
	}

	wr := make([]float64, n)
	vecmath.MulBlock(wr, p.w, r)
	sol.residual = floats.Dot(wr, wr)
	return sol, nil
}

// solveGamma solves (R + λ·Qᵀ D Q) γ = Qᵀ y for the interior second
// derivatives.
func (p *problem) solveGamma(lambda float64) ([]float64, error) {
	m := len(p.xs) - 2
	bw := min(2, m-1)
	stride := bw + 1
	data := make([]float64, m*stride)
	h, d := p.h, p.d

	for c := 0; c < m; c++ {
		j := c + 1
		a, b := 1/h[j-1], 1/h[j]
		data[c*stride] = (h[j-1]+h[j])/3 + lambda*(d[j-1]*a*a+d[j]*(a+b)*(a+b)+d[j+1]*b*b)
		if bw >= 1 && c+1 < m {
			next := 1 / h[j+1]
			data[c*stride+1] = h[j]/6 - lambda*(d[j]*(a+b)*b+d[j+1]*b*(b+next))
		}
		if bw >= 2 && c+2 < m {
			data[c*stride+2] = lambda * d[j+1] * b / h[j+1]
		}
	}

	var chol mat.BandCholesky
	if ok := chol.Factorize(mat.NewSymBandDense(m, bw, data)); !ok {
		return nil, fmt.Errorf("%w: penalty system not positive definite (λ=%g)", ErrFitFailure, lambda)
	}

	var gamma mat.VecDense
	if err := chol.SolveVecTo(&gamma, mat.NewVecDense(m, slices.Clone(p.rhs))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFitFailure, err)
	}

	out := make([]float64, m)
	for i := range out {
		out[i] = gamma.AtVec(i)
	}
	return out, nil
}
