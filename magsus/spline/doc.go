// Package spline fits natural cubic smoothing splines to susceptibility
// curves.
//
// [Fit] solves Reinsch's problem: among all functions g with square
// integrable second derivative, minimise ∫g″² subject to
//
//	Σ (w_i·(y_i − g(x_i)))² ≤ s
//
// where s is the smoothing strength. This is the smoothing condition used by
// FITPACK, so strengths carry over from tools built on it. The solution is a
// natural cubic spline with a knot at every sample. For a penalty λ the knot
// second derivatives γ solve the symmetric pentadiagonal system
//
//	(R + λ·Qᵀ W⁻² Q) γ = Qᵀ y
//
// which is factorised with a banded Cholesky decomposition; λ is then tuned
// by bisection on log λ until the residual matches s.
//
// A strength of zero interpolates the data. A strength at or above the
// residual of the weighted least-squares line returns that line.
package spline
