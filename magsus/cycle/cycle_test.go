package cycle

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/cwbudde/algo-magsus/internal/testutil"
	"github.com/cwbudde/algo-magsus/magsus/curve"
	"github.com/cwbudde/algo-magsus/magsus/furnace"
	"github.com/cwbudde/algo-magsus/magsus/spline"
)

func mustCurve(t *testing.T, temps, chis []float64) curve.Curve {
	t.Helper()
	c, err := curve.New(temps, chis)
	if err != nil {
		t.Fatalf("curve.New() error = %v", err)
	}
	return c
}

func mustCycle(t *testing.T, heating, cooling curve.Curve, opts ...Option) *Cycle {
	t.Helper()
	c, err := New(heating, cooling, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

// transitionCycle returns a cycle whose heating branch drops from 100 to 0
// around 580 °C, with uniform noise of the given amplitude.
func transitionCycle(t *testing.T, width, amp float64, seed uint64) *Cycle {
	t.Helper()
	up := testutil.Grid(20, 700, 1)
	down := testutil.Grid(700, 20, -1)
	heating := testutil.CurieTransition(up, 580, width, 100)
	if amp > 0 {
		heating = testutil.Add(heating, testutil.DeterministicNoise(seed, amp, len(up)))
	}
	cooling := testutil.CurieTransition(down, 570, width, 110)
	return mustCycle(t, mustCurve(t, up, heating), mustCurve(t, down, cooling))
}

func TestDisorderingTemperatureNoiseFree(t *testing.T) {
	c := transitionCycle(t, 1.5, 0, 0)

	tests := []struct {
		method Method
		tol    float64
	}{
		{Inflection, 1},
		{DerivativePeak, 1},
		{TangentIntersection, 5},
	}
	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			got, err := c.DisorderingTemperature(tt.method)
			if err != nil {
				t.Fatalf("DisorderingTemperature() error = %v", err)
			}
			testutil.RequireNear(t, "Tc", got, 580, tt.tol)
		})
	}
}

func TestTangentDetail(t *testing.T) {
	c := transitionCycle(t, 1.5, 0, 0)
	e, err := c.Estimate(TangentIntersection)
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if e.Steep.Slope >= 0 {
		t.Fatalf("steep slope = %v, want negative", e.Steep.Slope)
	}
	if math.Abs(e.Plateau.Slope) > 0.1*math.Abs(e.Steep.Slope) {
		t.Fatalf("plateau slope %v not flat against steep slope %v", e.Plateau.Slope, e.Steep.Slope)
	}
	if e.Temperature < 580 {
		t.Fatalf("tangent intersection %v below the inflection", e.Temperature)
	}
}

func TestSmoothingMakesInflectionRobust(t *testing.T) {
	meanErr := func(amp float64) (infl, peak, worstInfl float64) {
		for seed := uint64(1); seed <= 5; seed++ {
			c := transitionCycle(t, 5, amp, seed)
			ti, err := c.DisorderingTemperature(Inflection)
			if err != nil {
				t.Fatalf("amp=%v seed=%d: inflection error = %v", amp, seed, err)
			}
			tp, err := c.DisorderingTemperature(DerivativePeak)
			if err != nil {
				t.Fatalf("amp=%v seed=%d: derivative peak error = %v", amp, seed, err)
			}
			infl += math.Abs(ti-580) / 5
			peak += math.Abs(tp-580) / 5
			worstInfl = math.Max(worstInfl, math.Abs(ti-580))
		}
		return infl, peak, worstInfl
	}

	lowInfl, lowPeak, lowWorst := meanErr(4)
	highInfl, highPeak, highWorst := meanErr(16)

	if lowWorst > 2 || highWorst > 2 {
		t.Fatalf("inflection worst error = %v (amp 4), %v (amp 16), want <= 2", lowWorst, highWorst)
	}
	if lowInfl >= lowPeak || highInfl >= highPeak {
		t.Fatalf("inflection not more robust: amp 4 %v vs %v, amp 16 %v vs %v",
			lowInfl, lowPeak, highInfl, highPeak)
	}
	if highPeak-lowPeak <= highInfl-lowInfl {
		t.Fatalf("derivative peak degraded by %v, inflection by %v", highPeak-lowPeak, highInfl-lowInfl)
	}
}

func TestInverseSusceptibility(t *testing.T) {
	temps := testutil.Grid(600, 700, 5)
	chis := make([]float64, len(temps))
	for i, T := range temps {
		chis[i] = 1 / (0.02 * (T - 580))
	}
	heating := mustCurve(t, temps, chis)
	c := mustCycle(t, heating, heating.Reverse())

	got, err := c.DisorderingTemperature(InverseSusceptibility)
	if err != nil {
		t.Fatalf("DisorderingTemperature() error = %v", err)
	}
	testutil.RequireNear(t, "theta", got, 580, 1e-6)

	fit, err := c.ParamagneticFit(ScanRange(620, 700))
	if err != nil {
		t.Fatalf("ParamagneticFit() error = %v", err)
	}
	testutil.RequireNear(t, "slope", fit.Slope, 0.02, 1e-9)
	testutil.RequireNear(t, "R²", fit.RSquared, 1, 1e-9)
}

func TestInverseSusceptibilitySkipsNonPositive(t *testing.T) {
	temps := []float64{600, 610, 620, 630}
	heating := mustCurve(t, temps, []float64{-1, 0, 0, 2})
	c := mustCycle(t, heating, heating.Reverse())
	if _, err := c.DisorderingTemperature(InverseSusceptibility); !errors.Is(err, curve.ErrInsufficientData) {
		t.Fatalf("error = %v, want ErrInsufficientData", err)
	}
}

func TestMinimumSamples(t *testing.T) {
	c := transitionCycle(t, 5, 0, 0)
	window := ScanRange(560, 562) // three samples

	for _, m := range []Method{Inflection, TangentIntersection} {
		_, err := c.DisorderingTemperature(m, window)
		if !errors.Is(err, curve.ErrInsufficientData) {
			t.Fatalf("%v: error = %v, want ErrInsufficientData", m, err)
		}
	}
	e, err := c.Estimate(DerivativePeak, window)
	if err != nil {
		t.Fatalf("DerivativePeak error = %v", err)
	}
	if e.Samples != 3 {
		t.Fatalf("Samples = %d, want 3", e.Samples)
	}
}

func TestScanRangeCountsSingleSample(t *testing.T) {
	c := transitionCycle(t, 5, 0, 0)
	for _, sc := range []struct {
		min, max float64
		want     int
	}{
		{560.2, 560.8, 0},
		{559.5, 560.5, 1},
	} {
		e, err := c.Estimate(DerivativePeak, ScanRange(sc.min, sc.max))
		if !errors.Is(err, curve.ErrInsufficientData) {
			t.Fatalf("[%v, %v]: error = %v, want ErrInsufficientData", sc.min, sc.max, err)
		}
		if e.Samples != sc.want {
			t.Fatalf("[%v, %v]: Samples = %d, want %d", sc.min, sc.max, e.Samples, sc.want)
		}
	}
}

func TestScanRangeRestrictsSearch(t *testing.T) {
	c := transitionCycle(t, 1.5, 0, 0)
	if _, err := c.DisorderingTemperature(Inflection, ScanRange(100, 400)); !errors.Is(err, ErrNoTransition) {
		t.Fatalf("error = %v, want ErrNoTransition", err)
	}
	got, err := c.DisorderingTemperature(DerivativePeak, ScanRange(600, 500))
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	testutil.RequireNear(t, "Tc", got, 580, 1)
}

func TestFlatCurveHasNoTransition(t *testing.T) {
	temps := testutil.Grid(20, 200, 10)
	flat := mustCurve(t, temps, testutil.DC(5, len(temps)))
	c := mustCycle(t, flat, flat.Reverse())

	for _, m := range TransitionMethods() {
		if _, err := c.DisorderingTemperature(m); !errors.Is(err, ErrNoTransition) {
			t.Fatalf("%v: error = %v, want ErrNoTransition", m, err)
		}
	}
}

func TestUnknownMethod(t *testing.T) {
	c := transitionCycle(t, 5, 0, 0)
	if _, err := c.DisorderingTemperature(Method(42)); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("error = %v, want ErrUnknownMethod", err)
	}
}

func TestParseMethod(t *testing.T) {
	for _, m := range Methods() {
		got, err := ParseMethod(" " + m.String() + " ")
		if err != nil || got != m {
			t.Fatalf("ParseMethod(%q) = %v, %v", m.String(), got, err)
		}
	}
	if got, err := ParseMethod("Tangent"); err != nil || got != TangentIntersection {
		t.Fatalf("ParseMethod(Tangent) = %v, %v", got, err)
	}
	if _, err := ParseMethod("hopkinson"); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("error = %v, want ErrUnknownMethod", err)
	}
	if s := Method(9).String(); s != "Method(9)" {
		t.Fatalf("String() = %q", s)
	}
}

func TestAlterationIndex(t *testing.T) {
	tests := []struct {
		name      string
		heatStart float64
		coolEnd   float64
		want      float64
		err       error
	}{
		{"increase", 10, 12, 0.2, nil},
		{"reversible", 7.25, 7.25, 0, nil},
		{"decrease", 10, 5, -0.5, nil},
		{"zero reference", 0, 3, 0, ErrZeroReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			heating := mustCurve(t, []float64{20, 300, 600}, []float64{tt.heatStart, 20, 1})
			cooling := mustCurve(t, []float64{600, 300, 20}, []float64{1, 25, tt.coolEnd})
			got, err := mustCycle(t, heating, cooling).AlterationIndex()
			if !errors.Is(err, tt.err) {
				t.Fatalf("error = %v, want %v", err, tt.err)
			}
			if err == nil && math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("AlterationIndex() = %v, want %v", got, tt.want)
			}
			if tt.name == "reversible" && got != 0 {
				t.Fatalf("AlterationIndex() = %v, want exactly 0", got)
			}
		})
	}
}

func TestBranchOrderIsNormalised(t *testing.T) {
	heating := mustCurve(t, []float64{600, 300, 20}, []float64{1, 2, 3})
	cooling := mustCurve(t, []float64{20, 300, 650}, []float64{4, 5, 6})
	c := mustCycle(t, heating, cooling)

	if c.Heating().Direction() != curve.Ascending || c.Heating().First().T != 20 {
		t.Fatalf("heating not ascending: %v", c.Heating().Temperatures())
	}
	if c.Cooling().Direction() != curve.Descending || c.Cooling().Last().T != 20 {
		t.Fatalf("cooling not descending: %v", c.Cooling().Temperatures())
	}
	if got := c.PeakTemperature(); got != 650 {
		t.Fatalf("PeakTemperature() = %v, want 650", got)
	}
}

func TestNewRejectsEmptyBranch(t *testing.T) {
	heating := mustCurve(t, []float64{20, 300}, []float64{1, 2})
	if _, err := New(heating, curve.Curve{}); !errors.Is(err, curve.ErrInsufficientData) {
		t.Fatalf("error = %v, want ErrInsufficientData", err)
	}
}

func TestExportTableWithFurnace(t *testing.T) {
	empty := mustCurve(t, []float64{20, 300, 600}, []float64{0, 0.5, 1})
	f, err := furnace.New(empty, furnace.WithStrength(0))
	if err != nil {
		t.Fatalf("furnace.New() error = %v", err)
	}
	heating := mustCurve(t, []float64{20, 300, 600}, []float64{10, 10.3, 9})
	cooling := mustCurve(t, []float64{600, 300, 20}, []float64{9, 11.5, 12})

	c := mustCycle(t, heating, cooling, WithFurnace(f), WithVolume(DefaultRealVolume, DefaultNominalVolume))
	if c.Furnace() != f || c.VolumeScale() != 40 {
		t.Fatalf("Furnace(), VolumeScale() = %p, %v", c.Furnace(), c.VolumeScale())
	}

	want := []Row{
		{Heating, 20, 10, 400},
		{Heating, 300, 10.3, 392},
		{Heating, 600, 9, 320},
		{Cooling, 600, 9, 320},
		{Cooling, 300, 11.5, 440},
		{Cooling, 20, 12, 480},
	}
	if diff := cmp.Diff(want, c.ExportTable(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("ExportTable() mismatch (-want +got):\n%s", diff)
	}

	alt, err := c.AlterationIndex()
	if err != nil {
		t.Fatalf("AlterationIndex() error = %v", err)
	}
	testutil.RequireNear(t, "alteration", alt, 0.2, 1e-12)
}

func TestFurnaceOutOfRangeFails(t *testing.T) {
	empty := mustCurve(t, []float64{20, 300, 600}, []float64{0, 0.5, 1})
	f, err := furnace.New(empty, furnace.WithStrictRange())
	if err != nil {
		t.Fatalf("furnace.New() error = %v", err)
	}
	heating := mustCurve(t, []float64{20, 700}, []float64{1, 2})
	if _, err := New(heating, heating.Reverse(), WithFurnace(f)); !errors.Is(err, curve.ErrOutOfRange) {
		t.Fatalf("error = %v, want ErrOutOfRange", err)
	}
}

func TestShiftAndScale(t *testing.T) {
	heating := mustCurve(t, []float64{20, 300, 600}, []float64{10, 20, 1})
	cooling := mustCurve(t, []float64{600, 300, 20}, []float64{1, 25, 12})
	c := mustCycle(t, heating, cooling)

	shifted := c.Shift(-1)
	testutil.RequireSliceNearlyEqual(t, shifted.Heating().Susceptibilities(), []float64{9, 19, 0}, 0)
	testutil.RequireSliceNearlyEqual(t, shifted.RawHeating().Susceptibilities(), []float64{10, 20, 1}, 0)

	scaled := c.Scale(0.5)
	testutil.RequireSliceNearlyEqual(t, scaled.Cooling().Susceptibilities(), []float64{0.5, 12.5, 6}, 0)
	testutil.RequireSliceNearlyEqual(t, scaled.RawCooling().Susceptibilities(), []float64{0.5, 12.5, 6}, 0)

	// the source cycle is untouched
	testutil.RequireSliceNearlyEqual(t, c.Heating().Susceptibilities(), []float64{10, 20, 1}, 0)
}

func TestSummary(t *testing.T) {
	c := transitionCycle(t, 1.5, 0, 0)
	s := c.Summary(nil)

	if s.PeakTemperature != 700 {
		t.Fatalf("PeakTemperature = %v", s.PeakTemperature)
	}
	if s.AlterationErr != nil {
		t.Fatalf("AlterationErr = %v", s.AlterationErr)
	}
	testutil.RequireNear(t, "alteration", s.Alteration, 0.1, 1e-9)
	if s.HopkinsonPeak != 20 {
		t.Fatalf("HopkinsonPeak = %v, want 20", s.HopkinsonPeak)
	}
	if len(s.Results) != len(TransitionMethods()) {
		t.Fatalf("len(Results) = %d", len(s.Results))
	}
	for _, r := range s.Results {
		if r.Err != nil {
			t.Fatalf("%v: %v", r.Method, r.Err)
		}
	}
	if tc, ok := s.Temperature(Inflection); !ok || math.Abs(tc-580) > 1 {
		t.Fatalf("Temperature(Inflection) = %v, %v", tc, ok)
	}
	if _, ok := s.Temperature(InverseSusceptibility); ok {
		t.Fatal("Temperature(InverseSusceptibility) reported without running")
	}
	if s.Heating.Length != 681 || s.Cooling.Length != 681 {
		t.Fatalf("branch lengths = %d, %d", s.Heating.Length, s.Cooling.Length)
	}
}

func TestFixedSmoothing(t *testing.T) {
	temps := testutil.Grid(20, 30, 1)
	heating := mustCurve(t, temps, testutil.CurieTransition(temps, 25, 1, 10))
	c := mustCycle(t, heating, heating.Reverse(), WithSmoothing(0))

	m, err := c.Smoothed()
	if err != nil {
		t.Fatalf("Smoothed() error = %v", err)
	}
	if m.Strength() != 0 {
		t.Fatalf("Strength() = %v, want 0", m.Strength())
	}
	again, _ := c.Smoothed()
	if again != m {
		t.Fatal("Smoothed() refitted the spline")
	}
}

func TestAutoSmoothingShortBranchInterpolates(t *testing.T) {
	temps := testutil.Grid(20, 26, 1)
	heating := mustCurve(t, temps, testutil.CurieTransition(temps, 23, 1, 10))
	c := mustCycle(t, heating, heating.Reverse())

	m, err := c.Smoothed()
	if err != nil {
		t.Fatalf("Smoothed() error = %v", err)
	}
	if m.Strength() != 0 {
		t.Fatalf("Strength() = %v, want 0 for a branch shorter than noise.MinSamples", m.Strength())
	}

	got, err := c.DisorderingTemperature(Inflection)
	if err != nil {
		t.Fatalf("DisorderingTemperature() error = %v", err)
	}
	testutil.RequireNear(t, "Tc", got, 23, 1e-6)
}

func TestConcurrentEstimates(t *testing.T) {
	c := transitionCycle(t, 5, 2, 1)

	var wg sync.WaitGroup
	results := make([]float64, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.DisorderingTemperature(Inflection)
		}(i)
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("goroutine %d: %v != %v", i, results[i], results[0])
		}
	}
}

func TestFitPointsNeedsTwoSamples(t *testing.T) {
	if _, err := fitPoints([]curve.Point{{T: 1, Chi: 1}}); !errors.Is(err, spline.ErrFitFailure) {
		t.Fatalf("error = %v, want ErrFitFailure", err)
	}
}
