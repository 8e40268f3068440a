// Package branch computes summary statistics of a susceptibility branch in
// a single pass.
//
// Moments use Welford's online update, so long branches with a large
// susceptibility offset keep full precision in the variance and higher
// moments.
package branch
