// Package curve models a single temperature/susceptibility branch recorded by
// a susceptibility bridge.
//
// A [Curve] is an immutable, strictly monotone sequence of (T, χ) samples.
// Heating branches run [Ascending] in temperature, cooling branches run
// [Descending]. Every transformation ([Curve.Subtract], [Curve.Chop],
// [Curve.Scale], ...) returns a new Curve and leaves the receiver untouched.
//
// Interpolation is piecewise linear and reproduces sample values exactly.
// Derivatives use finite differences on neighbouring samples; callers that
// need a noise-robust derivative should fit a smoothing spline instead
// (see package spline).
package curve
