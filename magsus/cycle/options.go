package cycle

import "github.com/cwbudde/algo-magsus/magsus/furnace"

const (
	// DefaultRealVolume is the usual sample volume in cm³.
	DefaultRealVolume = 0.25
	// DefaultNominalVolume is the volume in cm³ the bridge assumes.
	DefaultNominalVolume = 10.0
)

// Option configures a [Cycle].
type Option func(*config)

type config struct {
	furnace  *furnace.Furnace
	scale    float64
	strength float64
	auto     bool
}

func defaultConfig() config {
	return config{scale: 1, auto: true}
}

// WithFurnace subtracts the baseline of f from both branches.
func WithFurnace(f *furnace.Furnace) Option {
	return func(cfg *config) {
		cfg.furnace = f
	}
}

// WithVolume normalises susceptibilities measured on a sample of volume
// sample to the nominal volume the instrument assumes. Non-positive volumes
// are ignored.
func WithVolume(sample, nominal float64) Option {
	return func(cfg *config) {
		if sample > 0 && nominal > 0 {
			cfg.scale = nominal / sample
		}
	}
}

// WithSmoothing fixes the strength of the spline used by the Inflection and
// TangentIntersection methods. By default it is derived from the noise
// level of the heating branch, or zero (interpolation) when the branch has
// fewer than noise.MinSamples samples. Negative values are ignored.
func WithSmoothing(s float64) Option {
	return func(cfg *config) {
		if s >= 0 {
			cfg.strength = s
			cfg.auto = false
		}
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// ScanOption restricts a disordering-temperature search.
type ScanOption func(*scan)

type scan struct {
	min, max float64
}

// ScanRange limits the search to temperatures in [min, max].
func ScanRange(min, max float64) ScanOption {
	return func(s *scan) {
		if min > max {
			min, max = max, min
		}
		s.min, s.max = min, max
	}
}
