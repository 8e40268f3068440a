// Package noise estimates the white-noise level of a susceptibility curve
// from its periodogram.
//
// The curve is resampled onto a uniform temperature grid and differenced
// twice, which removes the slowly varying signal and the baseline trend.
// The second difference of white noise with standard deviation σ has the
// power spectrum 16·sin⁴(ω/2)·σ²; dividing the upper half of the periodogram
// by that response and taking the median gives σ² up to the factor ln 2 that
// relates the median of an exponential variate to its mean. The median keeps
// the estimate insensitive to the few bins occupied by a sharp magnetic
// transition.
//
// [Strength] turns the estimate into a smoothing-spline strength n·σ², the
// expected residual sum of squares of a fit that removes only the noise.
package noise
