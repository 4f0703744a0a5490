package grid

import "log/slog"

// ============================================================================
// GRID OPTIONS — Functional options for Build()
// ============================================================================

// Option configures grid construction via functional options pattern.
type Option func(*config)

type config struct {
	DefaultMeasure string // data field used when GetData is called without a measure
	Logger         *slog.Logger
}

// WithDefaultMeasure sets the data field served for an empty measure name.
// Without it the first data field is the default.
func WithDefaultMeasure(measure string) Option {
	return func(c *config) {
		c.DefaultMeasure = measure
	}
}

// WithLogger sets the logger used during Build.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.Logger = logger
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}
