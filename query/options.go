package query

import (
	"log/slog"
	"sort"
)

// Option configures a Query via functional options pattern.
type Option func(*config)

// Param is one initial "field = value" filter.
type Param struct {
	Name  string
	Value string
}

type config struct {
	Params []Param
	Logger *slog.Logger
}

// WithParams pre-chains filters in the given order, exactly as if each were
// passed to Query.Filter right after construction. Names may be captions.
func WithParams(params ...Param) Option {
	return func(c *config) {
		c.Params = append(c.Params, params...)
	}
}

// WithParamMap is WithParams for a map. Keys are applied in sorted order so
// construction stays deterministic.
func WithParamMap(params map[string]string) Option {
	return func(c *config) {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			c.Params = append(c.Params, Param{Name: k, Value: params[k]})
		}
	}
}

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.Logger = logger
	}
}

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
