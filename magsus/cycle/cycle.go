package cycle

import (
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/algo-magsus/magsus/curve"
	"github.com/cwbudde/algo-magsus/magsus/furnace"
	"github.com/cwbudde/algo-magsus/magsus/spline"
	"github.com/cwbudde/algo-magsus/measure/noise"
)

// Cycle is one heating/cooling run of a sample. It is immutable after
// construction and safe for concurrent use.
type Cycle struct {
	rawHeat curve.Curve
	rawCool curve.Curve
	heat    curve.Curve
	cool    curve.Curve

	furnace  *furnace.Furnace
	scale    float64
	strength float64
	auto     bool

	once   sync.Once
	model  *spline.Model
	fitErr error
}

// New builds a cycle from raw heating and cooling branches. Heating is
// reordered ascending and cooling descending.
func New(heating, cooling curve.Curve, opts ...Option) (*Cycle, error) {
	if heating.Len() < 2 || cooling.Len() < 2 {
		return nil, fmt.Errorf("cycle: %w: heating %d, cooling %d samples",
			curve.ErrInsufficientData, heating.Len(), cooling.Len())
	}

	cfg := applyOptions(opts)
	c := &Cycle{
		rawHeat:  heating.Ascending(),
		rawCool:  cooling.Descending(),
		furnace:  cfg.furnace,
		scale:    cfg.scale,
		strength: cfg.strength,
		auto:     cfg.auto,
	}

	var err error
	if c.heat, err = c.correct(c.rawHeat); err != nil {
		return nil, fmt.Errorf("cycle: heating: %w", err)
	}
	if c.cool, err = c.correct(c.rawCool); err != nil {
		return nil, fmt.Errorf("cycle: cooling: %w", err)
	}
	return c, nil
}

func (c *Cycle) correct(raw curve.Curve) (curve.Curve, error) {
	out := raw
	if c.furnace != nil {
		var err error
		if out, err = c.furnace.Apply(raw); err != nil {
			return curve.Curve{}, err
		}
	}
	if c.scale != 1 {
		out = out.Scale(c.scale)
	}
	return out, nil
}

// derive returns a copy of c with new corrected branches and a fresh
// spline cache.
func (c *Cycle) derive(rawHeat, rawCool, heat, cool curve.Curve) *Cycle {
	return &Cycle{
		rawHeat:  rawHeat,
		rawCool:  rawCool,
		heat:     heat,
		cool:     cool,
		furnace:  c.furnace,
		scale:    c.scale,
		strength: c.strength,
		auto:     c.auto,
	}
}

// Heating returns the corrected heating branch, ascending.
func (c *Cycle) Heating() curve.Curve { return c.heat }

// Cooling returns the corrected cooling branch, descending.
func (c *Cycle) Cooling() curve.Curve { return c.cool }

// RawHeating returns the heating branch before correction.
func (c *Cycle) RawHeating() curve.Curve { return c.rawHeat }

// RawCooling returns the cooling branch before correction.
func (c *Cycle) RawCooling() curve.Curve { return c.rawCool }

// Furnace returns the attached furnace, or nil in uncorrected mode.
func (c *Cycle) Furnace() *furnace.Furnace { return c.furnace }

// VolumeScale returns the volume normalisation factor.
func (c *Cycle) VolumeScale() float64 { return c.scale }

// PeakTemperature returns the highest temperature reached in either branch.
func (c *Cycle) PeakTemperature() float64 {
	return math.Max(c.heat.MaxTemperature(), c.cool.MaxTemperature())
}

// Smoothed returns the smoothing spline through the corrected heating
// branch. It is fitted on first use. With automatic smoothing, branches
// shorter than noise.MinSamples are interpolated.
func (c *Cycle) Smoothed() (*spline.Model, error) {
	c.once.Do(func() {
		opt := spline.WithAutoStrength()
		switch {
		case !c.auto:
			opt = spline.WithStrength(c.strength)
		case c.heat.Len() < noise.MinSamples:
			// Too short to separate noise from signal.
			opt = spline.WithStrength(0)
		}
		c.model, c.fitErr = spline.Fit(c.heat, opt)
		if c.fitErr != nil {
			c.fitErr = fmt.Errorf("cycle: smoothing heating branch: %w", c.fitErr)
		}
	})
	return c.model, c.fitErr
}

// AlterationIndex compares the susceptibility after the cycle with the one
// before it: (χ_cooling_end − χ_heating_start) / χ_heating_start, using the
// corrected branches. Positive values mean the sample gained susceptibility.
func (c *Cycle) AlterationIndex() (float64, error) {
	ref := c.heat.First().Chi
	if ref == 0 {
		return 0, ErrZeroReference
	}
	return (c.cool.Last().Chi - ref) / ref, nil
}

// HopkinsonPeak returns the temperature of the largest corrected heating
// susceptibility. Ties go to the lowest temperature.
func (c *Cycle) HopkinsonPeak() float64 {
	best := c.heat.First()
	for _, p := range c.heat.Points()[1:] {
		if p.Chi > best.Chi {
			best = p
		}
	}
	return best.T
}

// Shift returns a cycle whose corrected branches are offset by d. Raw
// branches are unchanged.
func (c *Cycle) Shift(d float64) *Cycle {
	return c.derive(c.rawHeat, c.rawCool, c.heat.Shift(d), c.cool.Shift(d))
}

// Scale returns a cycle with raw and corrected susceptibilities multiplied
// by k, as for a change of units.
func (c *Cycle) Scale(k float64) *Cycle {
	return c.derive(c.rawHeat.Scale(k), c.rawCool.Scale(k), c.heat.Scale(k), c.cool.Scale(k))
}
