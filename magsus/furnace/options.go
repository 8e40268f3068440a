package furnace

import "github.com/cwbudde/algo-magsus/magsus/spline"

const (
	// DefaultPadPoints is the number of constant samples appended to each
	// end of an empty run before fitting.
	DefaultPadPoints = 2
	// DefaultPadStep is the temperature spacing of the padding samples.
	DefaultPadStep = 10.0
)

// Option configures a [Furnace].
type Option func(*config)

type config struct {
	strength  float64
	auto      bool
	padPoints int
	padStep   float64
	strict    bool
}

func defaultConfig() config {
	return config{
		strength:  spline.DefaultStrength,
		padPoints: DefaultPadPoints,
		padStep:   DefaultPadStep,
	}
}

// WithStrength sets the smoothing strength of the baseline splines.
// Negative values are ignored.
func WithStrength(s float64) Option {
	return func(cfg *config) {
		if s >= 0 {
			cfg.strength = s
			cfg.auto = false
		}
	}
}

// WithAutoStrength derives the smoothing strength from the noise level of
// each branch.
func WithAutoStrength() Option {
	return func(cfg *config) {
		cfg.auto = true
	}
}

// WithPadding sets how many constant samples are added at each end of the
// run and their spacing. Negative counts and non-positive steps are ignored.
func WithPadding(points int, step float64) Option {
	return func(cfg *config) {
		if points >= 0 {
			cfg.padPoints = points
		}
		if step > 0 {
			cfg.padStep = step
		}
	}
}

// WithStrictRange makes corrections outside the measured range of the empty
// run fail with curve.ErrOutOfRange instead of using the nearest endpoint.
func WithStrictRange() Option {
	return func(cfg *config) {
		cfg.strict = true
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
