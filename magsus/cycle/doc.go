// Package cycle processes one heating/cooling measurement cycle.
//
// A [Cycle] holds the raw branches of a cycle and their corrected versions:
// the furnace baseline is subtracted first (when a furnace is attached),
// then the sample volume normalisation is applied. The heating branch is
// stored in ascending temperature order and the cooling branch in
// descending order, from the peak back to room temperature.
//
// The magnetic disordering (Curie or Néel) temperature can be estimated
// with several independent methods, selected by [Method]:
//
//   - Inflection: zero crossing of the second derivative of a smoothing
//     spline through the corrected heating branch.
//   - TangentIntersection: intersection of a line through the steepest part
//     of the drop with a line through the plateau above it.
//   - DerivativePeak: temperature of the largest raw finite-difference
//     slope. Cheap, but sensitive to noise.
//   - InverseSusceptibility: x-intercept of a straight line through 1/χ in
//     the paramagnetic range (Curie-Weiss behaviour).
//
// Methods may disagree; none is treated as authoritative.
package cycle
