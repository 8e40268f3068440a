package noise

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-magsus/internal/numeric"
	"github.com/cwbudde/algo-magsus/magsus/curve"
)

// MinSamples is the smallest curve length accepted by [Analyze].
const MinSamples = 10

// ErrEstimate is returned when the periodogram cannot be computed.
var ErrEstimate = errors.New("noise: estimate failed")

// Estimate is the result of [Analyze].
type Estimate struct {
	// Sigma is the estimated noise standard deviation in susceptibility units.
	Sigma float64
	// Step is the resampling grid spacing in °C.
	Step float64
	// Samples is the number of grid points.
	Samples int
	// FFTSize is the zero-padded transform length.
	FFTSize int
	// Bins is the number of periodogram bins entering the median.
	Bins int
}

// Variance returns Sigma².
func (e Estimate) Variance() float64 {
	return e.Sigma * e.Sigma
}

// Analyze estimates the noise level of c.
func Analyze(c curve.Curve) (Estimate, error) {
	n := c.Len()
	if n < MinSamples {
		return Estimate{}, fmt.Errorf("noise: %w: %d samples, need %d", curve.ErrInsufficientData, n, MinSamples)
	}

	grid, err := c.Ascending().Resample(n)
	if err != nil {
		return Estimate{}, fmt.Errorf("noise: %w", err)
	}
	ys := grid.Susceptibilities()
	lo, hi := grid.Domain()

	diffLen := n - 2
	fftSize := nextPowerOf2(diffLen)

	in := make([]complex128, fftSize)
	for i := 0; i < diffLen; i++ {
		in[i] = complex(ys[i+2]-2*ys[i+1]+ys[i], 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Estimate{}, fmt.Errorf("%w: FFT plan: %v", ErrEstimate, err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return Estimate{}, fmt.Errorf("%w: forward FFT: %v", ErrEstimate, err)
	}

	first, last := fftSize/4, fftSize/2
	bins := last - first + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := 0; k < bins; k++ {
		re[k] = real(out[first+k])
		im[k] = imag(out[first+k])
	}
	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	ratios := make([]float64, bins)
	for k := range ratios {
		s := math.Sin(math.Pi * float64(first+k) / float64(fftSize))
		response := 16 * s * s * s * s
		ratios[k] = power[k] / (float64(diffLen) * response)
	}

	variance := numeric.Median(ratios) / math.Ln2
	if !numeric.IsFinite(variance) || variance < 0 {
		return Estimate{}, fmt.Errorf("%w: variance %g", ErrEstimate, variance)
	}

	return Estimate{
		Sigma:   math.Sqrt(variance),
		Step:    (hi - lo) / float64(n-1),
		Samples: n,
		FFTSize: fftSize,
		Bins:    bins,
	}, nil
}

// Sigma returns the estimated noise standard deviation of c.
func Sigma(c curve.Curve) (float64, error) {
	e, err := Analyze(c)
	if err != nil {
		return 0, err
	}
	return e.Sigma, nil
}

// Strength returns the smoothing strength n·σ² for a spline fitted to c.
func Strength(c curve.Curve) (float64, error) {
	e, err := Analyze(c)
	if err != nil {
		return 0, err
	}
	return float64(c.Len()) * e.Variance(), nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
