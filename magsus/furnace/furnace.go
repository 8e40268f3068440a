package furnace

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-magsus/internal/numeric"
	"github.com/cwbudde/algo-magsus/magsus/curve"
	"github.com/cwbudde/algo-magsus/magsus/spline"
	"github.com/cwbudde/algo-magsus/measure/noise"
)

// ErrInvalidGrid is returned by [Furnace.SplineData] for an empty or
// non-advancing temperature grid.
var ErrInvalidGrid = errors.New("furnace: invalid sampling grid")

// Furnace is the smoothed empty-apparatus susceptibility.
type Furnace struct {
	heating curve.Curve
	cooling curve.Curve
	heat    *branchModel
	cool    *branchModel // nil without a cooling run
	strict  bool
}

type branchModel struct {
	model  *spline.Model
	lo, hi float64 // measured range before padding
}

// New builds a furnace from a single empty run. The same baseline corrects
// both heating and cooling branches.
func New(empty curve.Curve, opts ...Option) (*Furnace, error) {
	cfg := applyOptions(opts)

	heat, err := fitBranch(empty, cfg)
	if err != nil {
		return nil, fmt.Errorf("furnace: empty run: %w", err)
	}
	return &Furnace{heating: empty, heat: heat, strict: cfg.strict}, nil
}

// NewRun builds a furnace from the heating and cooling branches of an empty
// run. Cooling sample branches are corrected with the cooling baseline.
func NewRun(heating, cooling curve.Curve, opts ...Option) (*Furnace, error) {
	cfg := applyOptions(opts)

	heat, err := fitBranch(heating, cfg)
	if err != nil {
		return nil, fmt.Errorf("furnace: heating run: %w", err)
	}
	cool, err := fitBranch(cooling, cfg)
	if err != nil {
		return nil, fmt.Errorf("furnace: cooling run: %w", err)
	}
	return &Furnace{
		heating: heating,
		cooling: cooling,
		heat:    heat,
		cool:    cool,
		strict:  cfg.strict,
	}, nil
}

func fitBranch(c curve.Curve, cfg config) (*branchModel, error) {
	if c.Len() < 2 {
		return nil, fmt.Errorf("furnace: %w: %d samples", curve.ErrInsufficientData, c.Len())
	}
	lo, hi := c.Domain()
	padded, err := pad(c.Ascending(), cfg.padPoints, cfg.padStep)
	if err != nil {
		return nil, err
	}

	s := cfg.strength
	if cfg.auto {
		// The padding is flat and would bias the noise estimate.
		s, err = autoStrength(c, padded.Len())
		if err != nil {
			return nil, err
		}
	}

	m, err := spline.Fit(padded, spline.WithStrength(s))
	if err != nil {
		return nil, err
	}
	return &branchModel{model: m, lo: lo, hi: hi}, nil
}

// pad extends an ascending curve at both ends with copies of the end values.
func pad(c curve.Curve, points int, step float64) (curve.Curve, error) {
	if points == 0 {
		return c, nil
	}
	n := c.Len()
	temps := make([]float64, 0, n+2*points)
	chis := make([]float64, 0, n+2*points)

	first, last := c.First(), c.Last()
	for k := points; k >= 1; k-- {
		temps = append(temps, first.T-float64(k)*step)
		chis = append(chis, first.Chi)
	}
	temps = append(temps, c.Temperatures()...)
	chis = append(chis, c.Susceptibilities()...)
	for k := 1; k <= points; k++ {
		temps = append(temps, last.T+float64(k)*step)
		chis = append(chis, last.Chi)
	}
	return curve.New(temps, chis)
}

// autoStrength scales the noise power of the unpadded run to n samples.
func autoStrength(c curve.Curve, n int) (float64, error) {
	v, err := noise.Analyze(c)
	if err != nil {
		return 0, err
	}
	return float64(n) * v.Variance(), nil
}

// Correction returns the heating baseline at t.
func (f *Furnace) Correction(t float64) (float64, error) {
	return f.CorrectionFor(curve.Ascending, t)
}

// CorrectionFor returns the baseline for a branch of the given direction.
// Descending branches use the cooling baseline when the furnace has one.
func (f *Furnace) CorrectionFor(dir curve.Direction, t float64) (float64, error) {
	b := f.heat
	if dir == curve.Descending && f.cool != nil {
		b = f.cool
	}
	return b.correction(t, f.strict)
}

func (b *branchModel) correction(t float64, strict bool) (float64, error) {
	if math.IsNaN(t) {
		return 0, fmt.Errorf("furnace: %w: NaN", curve.ErrOutOfRange)
	}
	if t < b.lo || t > b.hi {
		if strict {
			return 0, fmt.Errorf("furnace: %w: %g not in [%g, %g]", curve.ErrOutOfRange, t, b.lo, b.hi)
		}
		t = numeric.Clamp(t, b.lo, b.hi)
	}
	return b.model.Evaluate(t)
}

// Apply subtracts the baseline from sample at each of its temperatures.
func (f *Furnace) Apply(sample curve.Curve) (curve.Curve, error) {
	temps := sample.Temperatures()
	corr := make([]float64, len(temps))
	for i, t := range temps {
		v, err := f.CorrectionFor(sample.Direction(), t)
		if err != nil {
			return curve.Curve{}, err
		}
		corr[i] = v
	}

	baseline, err := curve.New(temps, corr)
	if err != nil {
		return curve.Curve{}, fmt.Errorf("furnace: baseline: %w", err)
	}
	return sample.Subtract(baseline)
}

// Raw returns the unsmoothed empty run (its heating branch for [NewRun]).
func (f *Furnace) Raw() curve.Curve { return f.heating }

// RawCooling returns the unsmoothed cooling branch of the empty run, if any.
func (f *Furnace) RawCooling() (curve.Curve, bool) {
	return f.cooling, f.cool != nil
}

// HasCooling reports whether the furnace carries a separate cooling baseline.
func (f *Furnace) HasCooling() bool { return f.cool != nil }

// Model returns the heating baseline spline.
func (f *Furnace) Model() *spline.Model { return f.heat.model }

// Domain returns the measured temperature range of the heating run.
func (f *Furnace) Domain() (lo, hi float64) { return f.heat.lo, f.heat.hi }

// Row is one line of [Furnace.SplineData].
type Row struct {
	T       float64
	Heating float64
	Cooling float64
}

// SplineData samples both baselines on the grid from, from+step, ... up to
// to inclusive. Without a cooling run both columns hold the heating
// baseline.
func (f *Furnace) SplineData(from, to, step float64) ([]Row, error) {
	if !(step > 0) || !numeric.IsFinite(from) || !numeric.IsFinite(to) || to < from {
		return nil, fmt.Errorf("%w: from %g to %g step %g", ErrInvalidGrid, from, to, step)
	}

	n := int(math.Floor((to-from)/step+1e-9)) + 1
	rows := make([]Row, n)
	for i := range rows {
		t := from + float64(i)*step
		h, err := f.CorrectionFor(curve.Ascending, t)
		if err != nil {
			return nil, err
		}
		c, err := f.CorrectionFor(curve.Descending, t)
		if err != nil {
			return nil, err
		}
		rows[i] = Row{T: t, Heating: h, Cooling: c}
	}
	return rows, nil
}
