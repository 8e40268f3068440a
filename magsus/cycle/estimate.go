package cycle

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-magsus/internal/linfit"
	"github.com/cwbudde/algo-magsus/magsus/curve"
	"github.com/cwbudde/algo-magsus/magsus/spline"
)

const (
	// steepFraction bounds the steep segment: |g'| ≥ steepFraction·max.
	steepFraction = 0.5
	// plateauFraction starts the plateau: |g'| ≤ plateauFraction·max.
	plateauFraction = 0.1
	// noiseCurvature is the relative lobe curvature below which a g″
	// crossing is ignored.
	noiseCurvature = 1e-9
)

// Estimate is the result of one disordering-temperature method.
type Estimate struct {
	Method      Method
	Temperature float64
	// Min and Max are the scan range that was searched.
	Min, Max float64
	// Samples is the number of heating samples in the scan range.
	Samples int

	// Curvature is the lobe curvature of the selected g″ crossing
	// (Inflection).
	Curvature float64
	// Slope is dχ/dT at the selected point (DerivativePeak), or the spline
	// slope at the steepest sample (TangentIntersection).
	Slope float64
	// Steep and Plateau are the fitted tangents (TangentIntersection).
	Steep, Plateau linfit.Line
	// Paramagnetic is the fit of 1/χ against T (InverseSusceptibility).
	Paramagnetic linfit.Line
}

// DisorderingTemperature estimates the Curie or Néel temperature of the
// corrected heating branch with method.
func (c *Cycle) DisorderingTemperature(method Method, opts ...ScanOption) (float64, error) {
	e, err := c.Estimate(method, opts...)
	if err != nil {
		return 0, err
	}
	return e.Temperature, nil
}

// Estimate runs method over the scan range (the whole heating branch by
// default) and returns the detailed result.
func (c *Cycle) Estimate(method Method, opts ...ScanOption) (Estimate, error) {
	if !method.valid() {
		return Estimate{}, fmt.Errorf("%w: %v", ErrUnknownMethod, method)
	}

	lo, hi := c.heat.Domain()
	sc := scan{min: lo, max: hi}
	for _, opt := range opts {
		if opt != nil {
			opt(&sc)
		}
	}

	pts := c.window(sc)
	e := Estimate{Method: method, Min: sc.min, Max: sc.max, Samples: len(pts)}
	if need := method.minSamples(); len(pts) < need {
		return e, fmt.Errorf("cycle: %v: %w: %d samples in [%g, %g], need %d",
			method, curve.ErrInsufficientData, len(pts), sc.min, sc.max, need)
	}

	var err error
	switch method {
	case Inflection:
		err = c.inflection(&e)
	case TangentIntersection:
		err = c.tangent(&e, pts)
	case DerivativePeak:
		err = c.derivativePeak(&e)
	case InverseSusceptibility:
		err = c.paramagnetic(&e, pts)
	}
	if err != nil {
		return e, fmt.Errorf("cycle: %v: %w", method, err)
	}
	return e, nil
}

// window returns the corrected heating samples inside the scan range.
// Unlike curve.Chop it accepts fewer than two samples, so that the count
// can be reported against each method's minimum.
func (c *Cycle) window(sc scan) []curve.Point {
	var pts []curve.Point
	for _, p := range c.heat.Points() {
		if p.T >= sc.min && p.T <= sc.max {
			pts = append(pts, p)
		}
	}
	return pts
}

func (c *Cycle) inflection(e *Estimate) error {
	m, err := c.Smoothed()
	if err != nil {
		return err
	}

	// Crossings this far below the strongest curvature are rounding noise
	// in flat stretches of the curve.
	var floor float64
	for _, v := range m.SecondDerivatives() {
		floor = math.Max(floor, math.Abs(v))
	}
	floor *= noiseCurvature

	found := false
	for _, r := range m.SecondDerivativeRoots() {
		if r.T < e.Min || r.T > e.Max || r.Curvature <= floor {
			continue
		}
		// Roots are ascending, so strict comparison keeps the lowest
		// temperature on ties.
		if !found || r.Curvature > e.Curvature {
			e.Temperature = r.T
			e.Curvature = r.Curvature
			found = true
		}
	}
	if !found {
		return ErrNoTransition
	}
	return nil
}

func (c *Cycle) tangent(e *Estimate, pts []curve.Point) error {
	m, err := c.Smoothed()
	if err != nil {
		return err
	}

	d := make([]float64, len(pts))
	k := 0
	for i, p := range pts {
		if d[i], err = m.Derivative(p.T, 1); err != nil {
			return err
		}
		if math.Abs(d[i]) > math.Abs(d[k]) {
			k = i
		}
	}
	peak := math.Abs(d[k])
	if peak == 0 {
		return ErrNoTransition
	}
	e.Slope = d[k]

	first, last := k, k
	for first > 0 && math.Abs(d[first-1]) >= steepFraction*peak {
		first--
	}
	for last+1 < len(d) && math.Abs(d[last+1]) >= steepFraction*peak {
		last++
	}

	plateau := -1
	for i := last + 1; i < len(d); i++ {
		if math.Abs(d[i]) <= plateauFraction*peak {
			plateau = i
			break
		}
	}
	if last == first || plateau < 0 || plateau == len(pts)-1 {
		return fmt.Errorf("%w: no steep segment and plateau with two samples each", curve.ErrInsufficientData)
	}

	if e.Steep, err = fitPoints(pts[first : last+1]); err != nil {
		return err
	}
	if e.Plateau, err = fitPoints(pts[plateau:]); err != nil {
		return err
	}
	t, err := linfit.Intersect(e.Steep, e.Plateau)
	if err != nil {
		return fmt.Errorf("%w: %v", spline.ErrFitFailure, err)
	}
	e.Temperature = t
	return nil
}

func fitPoints(pts []curve.Point) (linfit.Line, error) {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.T, p.Chi
	}
	l, err := linfit.Fit(xs, ys, nil)
	if err != nil {
		return linfit.Line{}, fmt.Errorf("%w: %v", spline.ErrFitFailure, err)
	}
	return l, nil
}

func (c *Cycle) derivativePeak(e *Estimate) error {
	found := false
	for _, p := range c.heat.Derivatives().Points() {
		if p.T < e.Min || p.T > e.Max {
			continue
		}
		if !found || math.Abs(p.Chi) > math.Abs(e.Slope) {
			e.Temperature = p.T
			e.Slope = p.Chi
			found = true
		}
	}
	if !found || e.Slope == 0 {
		return ErrNoTransition
	}
	return nil
}

// ParamagneticFit fits 1/χ against T over the positive susceptibilities in
// the scan range.
func (c *Cycle) ParamagneticFit(opts ...ScanOption) (linfit.Line, error) {
	e, err := c.Estimate(InverseSusceptibility, opts...)
	if err != nil {
		return linfit.Line{}, err
	}
	return e.Paramagnetic, nil
}

func (c *Cycle) paramagnetic(e *Estimate, pts []curve.Point) error {
	var xs, ys []float64
	for _, p := range pts {
		if p.Chi > 0 {
			xs = append(xs, p.T)
			ys = append(ys, 1/p.Chi)
		}
	}
	if len(xs) < InverseSusceptibility.minSamples() {
		return fmt.Errorf("%w: %d positive susceptibilities", curve.ErrInsufficientData, len(xs))
	}

	l, err := linfit.Fit(xs, ys, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", spline.ErrFitFailure, err)
	}
	e.Paramagnetic = l

	t, err := l.Root()
	if errors.Is(err, linfit.ErrDegenerate) {
		return ErrNoTransition
	}
	if err != nil {
		return err
	}
	e.Temperature = t
	return nil
}
