package spline

// DefaultStrength is the smoothing strength used when no option overrides
// it. It is tuned for raw kappabridge readings (units of 10⁻⁶ SI, a few
// hundred samples per branch with read noise well below one unit).
const DefaultStrength = 100.0

// Option configures [Fit].
type Option func(*config)

type config struct {
	strength float64
	auto     bool
	weights  []float64
}

func defaultConfig() config {
	return config{strength: DefaultStrength}
}

// WithStrength sets the smoothing strength s. Negative values are ignored.
func WithStrength(s float64) Option {
	return func(cfg *config) {
		if s >= 0 {
			cfg.strength = s
			cfg.auto = false
		}
	}
}

// WithAutoStrength derives the strength from the curve's estimated noise
// level (see package noise). The curve needs at least noise.MinSamples
// samples.
func WithAutoStrength() Option {
	return func(cfg *config) {
		cfg.auto = true
	}
}

// WithWeights sets per-sample weights in curve order. Larger weights pull
// the spline closer to the sample.
func WithWeights(w []float64) Option {
	return func(cfg *config) {
		cfg.weights = w
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
