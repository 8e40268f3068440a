package curve

import (
	"errors"
	"math"
	"testing"
)

func mustNew(t *testing.T, temps, chis []float64) Curve {
	t.Helper()
	c, err := New(temps, chis)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name  string
		temps []float64
		chis  []float64
		want  error
	}{
		{name: "length mismatch", temps: []float64{1, 2}, chis: []float64{1}, want: ErrLengthMismatch},
		{name: "single sample", temps: []float64{1}, chis: []float64{1}, want: ErrInsufficientData},
		{name: "duplicate", temps: []float64{1, 2, 2}, chis: []float64{1, 2, 3}, want: ErrDuplicateTemperature},
		{name: "turnaround", temps: []float64{1, 3, 2}, chis: []float64{1, 2, 3}, want: ErrNotMonotonic},
		{name: "nan", temps: []float64{1, 2}, chis: []float64{1, math.NaN()}, want: ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.temps, tt.chis)
			if !errors.Is(err, tt.want) {
				t.Fatalf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDirectionAndAccessors(t *testing.T) {
	c := mustNew(t, []float64{600, 300, 20}, []float64{1, 2, 3})
	if c.Direction() != Descending {
		t.Fatalf("Direction() = %v, want descending", c.Direction())
	}
	if got := c.First(); got != (Point{T: 600, Chi: 1}) {
		t.Fatalf("First() = %+v", got)
	}
	if got := c.Last(); got != (Point{T: 20, Chi: 3}) {
		t.Fatalf("Last() = %+v", got)
	}
	temps := c.Temperatures()
	if temps[0] != 600 || temps[2] != 20 {
		t.Fatalf("Temperatures() = %v, want curve order", temps)
	}
	lo, hi := c.Domain()
	if lo != 20 || hi != 600 {
		t.Fatalf("Domain() = (%v, %v), want (20, 600)", lo, hi)
	}
	if c.Ascending().First().T != 20 {
		t.Fatal("Ascending() did not reorder")
	}
}

func TestNewCopiesInput(t *testing.T) {
	temps := []float64{1, 2, 3}
	chis := []float64{4, 5, 6}
	c := mustNew(t, temps, chis)
	chis[0] = 100
	if c.First().Chi != 4 {
		t.Fatal("curve aliases caller slice")
	}
}

func TestInterpolateExactAtSamples(t *testing.T) {
	temps := []float64{20, 35.5, 80, 140.25, 300, 612}
	chis := []float64{1.5, -0.3, 2.75, 9.125, 0.001, 4}

	for _, c := range []Curve{mustNew(t, temps, chis), mustNew(t, temps, chis).Reverse()} {
		for i, temp := range temps {
			got, err := c.Interpolate(temp)
			if err != nil {
				t.Fatalf("Interpolate(%v) error = %v", temp, err)
			}
			if got != chis[i] {
				t.Fatalf("%v curve: Interpolate(%v) = %v, want %v", c.Direction(), temp, got, chis[i])
			}
		}
	}
}

func TestInterpolateBetweenAndOutside(t *testing.T) {
	c := mustNew(t, []float64{0, 10}, []float64{0, 5})

	got, err := c.Interpolate(4)
	if err != nil || math.Abs(got-2) > 1e-12 {
		t.Fatalf("Interpolate(4) = %v, %v; want 2", got, err)
	}

	if _, err := c.Interpolate(-1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Interpolate(-1) error = %v, want ErrOutOfRange", err)
	}

	clamped, err := c.InterpolateWith(12, ExtrapolateClamp)
	if err != nil || clamped != 5 {
		t.Fatalf("clamp = %v, %v; want 5", clamped, err)
	}

	linear, err := c.InterpolateWith(12, ExtrapolateLinear)
	if err != nil || math.Abs(linear-6) > 1e-12 {
		t.Fatalf("linear = %v, %v; want 6", linear, err)
	}
}

func TestDerivative(t *testing.T) {
	// χ = T² sampled unevenly; central differences are exact for the
	// midpoint of symmetric neighbours.
	temps := []float64{0, 1, 2, 3, 4}
	chis := []float64{0, 1, 4, 9, 16}
	c := mustNew(t, temps, chis)

	got, err := c.Derivative(2)
	if err != nil || got != 4 {
		t.Fatalf("Derivative(2) = %v, %v; want 4", got, err)
	}

	got, err = c.Derivative(0)
	if err != nil || got != 1 {
		t.Fatalf("Derivative(0) = %v, %v; want one-sided 1", got, err)
	}

	got, err = c.Derivative(2.5)
	if err != nil || math.Abs(got-5) > 1e-12 {
		t.Fatalf("Derivative(2.5) = %v, %v; want 5", got, err)
	}

	if _, err := c.Derivative(5); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Derivative(5) error = %v, want ErrOutOfRange", err)
	}

	ds := c.Derivatives()
	if ds.Len() != c.Len() || ds.At(4).Chi != 7 {
		t.Fatalf("Derivatives() last = %+v, want 7", ds.At(4))
	}
}

func TestSubtract(t *testing.T) {
	sample := mustNew(t, []float64{20, 300, 600}, []float64{10, 10.3, 9})
	baseline := mustNew(t, []float64{0, 600, 700}, []float64{0, 1.2, 1.4})

	out, err := sample.Subtract(baseline)
	if err != nil {
		t.Fatalf("Subtract() error = %v", err)
	}
	want := []float64{10 - 0.04, 10.3 - 0.6, 9 - 1.2}
	for i, p := range out.Points() {
		if math.Abs(p.Chi-want[i]) > 1e-12 {
			t.Fatalf("point %d = %v, want %v", i, p.Chi, want[i])
		}
	}
	if sample.At(1).Chi != 10.3 {
		t.Fatal("Subtract mutated its receiver")
	}

	narrow := mustNew(t, []float64{100, 500}, []float64{0, 0})
	if _, err := sample.Subtract(narrow); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Subtract() error = %v, want ErrOutOfRange", err)
	}
}

func TestChop(t *testing.T) {
	c := mustNew(t, []float64{80, 60, 40, 20, 0}, []float64{5, 1, 4, 1, 3})

	out, err := c.Chop(25, 65)
	if err != nil {
		t.Fatalf("Chop() error = %v", err)
	}
	got := out.Points()
	want := []Point{{T: 60, Chi: 1}, {T: 40, Chi: 4}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Chop() = %+v, want %+v", got, want)
	}

	if _, err := c.Chop(61, 79); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("Chop() error = %v, want ErrInsufficientData", err)
	}
}

func TestShiftNonNegative(t *testing.T) {
	c := mustNew(t, []float64{1, 2, 3}, []float64{0, -0.5, 1})
	got := c.ShiftNonNegative().Susceptibilities()
	want := []float64{0.5, 0, 1.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ShiftNonNegative() = %v, want %v", got, want)
		}
	}
}

func TestScaleAndShift(t *testing.T) {
	c := mustNew(t, []float64{1, 2}, []float64{2, 4})
	got := c.Scale(40).Shift(1).Susceptibilities()
	if got[0] != 81 || got[1] != 161 {
		t.Fatalf("Scale/Shift = %v, want [81 161]", got)
	}
}

func TestNormalize(t *testing.T) {
	c, err := Normalize([]float64{30, 10, 20, 20}, []float64{3, 1, 2, 4}, Descending)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	got := c.Points()
	want := []Point{{T: 30, Chi: 3}, {T: 20, Chi: 3}, {T: 10, Chi: 1}}
	if len(got) != len(want) {
		t.Fatalf("Normalize() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Normalize() = %+v, want %+v", got, want)
		}
	}
}

func TestResample(t *testing.T) {
	c := mustNew(t, []float64{10, 0}, []float64{10, 0})
	r, err := c.Resample(11)
	if err != nil {
		t.Fatalf("Resample() error = %v", err)
	}
	if r.Len() != 11 || r.Direction() != Descending {
		t.Fatalf("Resample() len=%d dir=%v", r.Len(), r.Direction())
	}
	for _, p := range r.Points() {
		if math.Abs(p.Chi-p.T) > 1e-12 {
			t.Fatalf("resampled point %+v off the line", p)
		}
	}
}
