package branch

import (
	"math"

	"github.com/cwbudde/algo-magsus/magsus/curve"
)

// Stats holds branch statistics. Positions are temperatures, not indices.
type Stats struct {
	Length   int
	Mean     float64
	Min      float64
	MinT     float64 // temperature of Min
	Max      float64
	MaxT     float64 // temperature of Max
	Range    float64 // max - min
	Variance float64 // population variance
	StdDev   float64
	Skewness float64
	Kurtosis float64 // excess kurtosis
	Net      float64 // last - first, in recorded order
}

// Calculate computes the statistics of c in recorded order. Ties in Min
// and Max keep the first sample reached.
func Calculate(c curve.Curve) Stats {
	var acc Accumulator
	for _, p := range c.Points() {
		acc.Add(p)
	}
	return acc.Result()
}

// Moments returns the mean, population variance, skewness and excess
// kurtosis of values.
func Moments(values []float64) (mean, variance, skewness, kurtosis float64) {
	var acc Accumulator
	for _, v := range values {
		acc.Add(curve.Point{Chi: v})
	}
	s := acc.Result()
	return s.Mean, s.Variance, s.Skewness, s.Kurtosis
}

// Accumulator collects branch statistics one sample at a time. The zero
// value is ready to use.
type Accumulator struct {
	n              int
	mean           float64
	m2, m3, m4     float64
	first, last    float64
	minVal, maxVal float64
	minT, maxT     float64
}

// Add folds p into the running statistics.
func (a *Accumulator) Add(p curve.Point) {
	x := p.Chi
	a.n++
	ni := float64(a.n)

	delta := x - a.mean
	deltaN := delta / ni
	deltaN2 := deltaN * deltaN
	term1 := delta * deltaN * float64(a.n-1)

	// M4 before M3 before M2.
	a.m4 += term1*deltaN2*(ni*ni-3*ni+3) + 6*deltaN2*a.m2 - 4*deltaN*a.m3
	a.m3 += term1*deltaN*(float64(a.n-1)-1) - 3*deltaN*a.m2
	a.m2 += term1
	a.mean += deltaN

	if a.n == 1 {
		a.first = x
		a.minVal, a.minT = x, p.T
		a.maxVal, a.maxT = x, p.T
	} else {
		if x > a.maxVal {
			a.maxVal, a.maxT = x, p.T
		}
		if x < a.minVal {
			a.minVal, a.minT = x, p.T
		}
	}
	a.last = x
}

// Len returns the number of samples added so far.
func (a *Accumulator) Len() int { return a.n }

// Result returns the statistics of the samples added so far. Without
// samples every field is zero.
func (a *Accumulator) Result() Stats {
	if a.n == 0 {
		return Stats{}
	}

	nf := float64(a.n)
	variance := a.m2 / nf

	var skewness, kurtosis float64
	if variance > 0 {
		skewness = (a.m3 / nf) / (variance * math.Sqrt(variance))
		kurtosis = (a.m4/nf)/(variance*variance) - 3
	}

	return Stats{
		Length:   a.n,
		Mean:     a.mean,
		Min:      a.minVal,
		MinT:     a.minT,
		Max:      a.maxVal,
		MaxT:     a.maxT,
		Range:    a.maxVal - a.minVal,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Skewness: skewness,
		Kurtosis: kurtosis,
		Net:      a.last - a.first,
	}
}
