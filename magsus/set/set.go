package set

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/cwbudde/algo-magsus/magsus/curve"
	"github.com/cwbudde/algo-magsus/magsus/cycle"
	"github.com/cwbudde/algo-magsus/magsus/furnace"
)

// DefaultOrder is the decimal order of magnitude of raw bridge readings
// (10⁻⁶ SI).
const DefaultOrder = -6

var (
	// ErrDuplicatePeakTemperature is returned when two cycles reach the same
	// peak temperature.
	ErrDuplicatePeakTemperature = errors.New("set: duplicate peak temperature")
	// ErrKeyNotFound is returned when no cycle has the requested peak.
	ErrKeyNotFound = errors.New("set: no cycle with that peak temperature")
)

// Input is one raw cycle to be added to a set.
type Input struct {
	Heating curve.Curve
	Cooling curve.Curve
	// Label identifies the input in errors, typically a file name.
	Label string
}

// Set is a collection of cycles keyed by peak temperature. Reads are safe
// for concurrent use; Insert, ZeroAt and Rescale are not.
type Set struct {
	cycles  map[float64]*cycle.Cycle
	furnace *furnace.Furnace
	order   int
}

// Build creates one cycle per input. f may be nil for uncorrected cycles;
// opts apply to every cycle.
func Build(inputs []Input, f *furnace.Furnace, opts ...cycle.Option) (*Set, error) {
	s := &Set{
		cycles:  make(map[float64]*cycle.Cycle, len(inputs)),
		furnace: f,
		order:   DefaultOrder,
	}
	opts = append(slices.Clone(opts), cycle.WithFurnace(f))
	for i, in := range inputs {
		c, err := cycle.New(in.Heating, in.Cooling, opts...)
		if err != nil {
			return nil, fmt.Errorf("set: input %s: %w", label(in, i), err)
		}
		if err := s.Insert(c); err != nil {
			return nil, fmt.Errorf("set: input %s: %w", label(in, i), err)
		}
	}
	return s, nil
}

func label(in Input, i int) string {
	if in.Label != "" {
		return in.Label
	}
	return fmt.Sprintf("#%d", i)
}

// Insert adds c under its peak temperature.
func (s *Set) Insert(c *cycle.Cycle) error {
	peak := c.PeakTemperature()
	if _, ok := s.cycles[peak]; ok {
		return fmt.Errorf("%w: %g", ErrDuplicatePeakTemperature, peak)
	}
	s.cycles[peak] = c
	return nil
}

// Get returns the cycle whose peak temperature equals peak exactly. The
// error for a miss lists the peak temperatures present.
func (s *Set) Get(peak float64) (*cycle.Cycle, error) {
	c, ok := s.cycles[peak]
	if !ok {
		return nil, fmt.Errorf("%w: %g (have %v)", ErrKeyNotFound, peak, s.PeakTemperatures())
	}
	return c, nil
}

// Len returns the number of cycles.
func (s *Set) Len() int { return len(s.cycles) }

// Furnace returns the shared furnace, or nil.
func (s *Set) Furnace() *furnace.Furnace { return s.furnace }

// Order returns the current decimal order of magnitude of susceptibilities.
func (s *Set) Order() int { return s.order }

// PeakTemperatures returns the keys in ascending order.
func (s *Set) PeakTemperatures() []float64 {
	return slices.Sorted(maps.Keys(s.cycles))
}

// OrderedCycles returns the cycles by ascending peak temperature.
func (s *Set) OrderedCycles() []*cycle.Cycle {
	peaks := s.PeakTemperatures()
	out := make([]*cycle.Cycle, len(peaks))
	for i, p := range peaks {
		out[i] = s.cycles[p]
	}
	return out
}

// Alteration is the alteration index of one cycle.
type Alteration struct {
	Peak  float64
	Index float64
	Err   error
}

// Alterations returns the alteration index of every cycle by ascending
// peak temperature.
func (s *Set) Alterations() []Alteration {
	out := make([]Alteration, 0, len(s.cycles))
	for _, p := range s.PeakTemperatures() {
		idx, err := s.cycles[p].AlterationIndex()
		out = append(out, Alteration{Peak: p, Index: idx, Err: err})
	}
	return out
}

// ZeroAt shifts every cycle by the same offset so that the minimum of the
// last n heating susceptibilities of the cycle at peak becomes zero. This
// removes the paramagnetic background measured above the Curie point of
// the hottest step.
func (s *Set) ZeroAt(peak float64, n int) error {
	ref, err := s.Get(peak)
	if err != nil {
		return err
	}
	chis := ref.Heating().Susceptibilities()
	if n < 1 || n > len(chis) {
		return fmt.Errorf("set: %w: %d reference samples of %d", curve.ErrInsufficientData, n, len(chis))
	}

	offset := -slices.Min(chis[len(chis)-n:])
	for p, c := range s.cycles {
		s.cycles[p] = c.Shift(offset)
	}
	return nil
}

// Rescale converts every cycle to the decimal order of magnitude order.
// Going from 10⁻⁶ to 10⁻⁵ divides all values by ten.
func (s *Set) Rescale(order int) {
	k := math.Pow(10, float64(s.order-order))
	for p, c := range s.cycles {
		s.cycles[p] = c.Scale(k)
	}
	s.order = order
}
