// Package furnace models the susceptibility of the empty measuring apparatus.
//
// A [Furnace] is built from an empty-furnace run. Each branch of the run is
// smoothed with a spline (package spline) so that read noise in the run does
// not leak into every corrected sample curve. [Furnace.Apply] subtracts the
// smoothed baseline from a sample branch at the sample's own temperatures.
//
// A Furnace is immutable after construction and safe to share across
// goroutines and measurement cycles.
package furnace
