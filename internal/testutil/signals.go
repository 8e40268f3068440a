package testutil

import "math"

// Grid returns evenly spaced temperatures from lo to hi inclusive.
func Grid(lo, hi, step float64) []float64 {
	n := int(math.Round((hi-lo)/step)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// CurieTransition returns a logistic susceptibility drop of height amp
// centred on tc with the given width, evaluated at temps. The inflection of
// the curve, and the peak of |dχ/dT|, lie exactly at tc.
func CurieTransition(temps []float64, tc, width, amp float64) []float64 {
	out := make([]float64, len(temps))
	for i, t := range temps {
		out[i] = amp / (1 + math.Exp((t-tc)/width))
	}
	return out
}

// Linear returns a + b*t evaluated at temps.
func Linear(temps []float64, a, b float64) []float64 {
	out := make([]float64, len(temps))
	for i, t := range temps {
		out[i] = a + b*t
	}
	return out
}

// DC generates a constant-valued sequence.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// DeterministicNoise generates uniform noise in [-amplitude, amplitude) from
// a splitmix64 sequence, so the values are identical on every platform and
// Go release.
func DeterministicNoise(seed uint64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	state := seed
	for i := range out {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z ^= z >> 31
		u := float64(z>>11) * (1.0 / (1 << 53))
		out[i] = (u*2 - 1) * amplitude
	}
	return out
}

// Add returns the element-wise sum of a and b.
func Add(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}
