package source

import (
	"io"
	"log/slog"

	"github.com/aretw0/regiongraph/internal/compiler"
	"github.com/aretw0/regiongraph/internal/dnf"
	"github.com/aretw0/regiongraph/pkg/ports"
	"github.com/aretw0/regiongraph/pkg/registry"
)

type options struct {
	logger     *slog.Logger
	strategy   string
	absorption bool
	verify     bool
	maxClauses int
	cache      ports.ClauseCache
}

// Option configures a source.
type Option func(*options)

// WithLogger sets the logger used by the source.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithResolver selects the variable resolver strategy ("strict" or "dummy").
// DocumentSource ignores it.
func WithResolver(strategy string) Option {
	return func(o *options) {
		o.strategy = strategy
	}
}

// WithAbsorption drops clauses that are strict supersets of another clause.
func WithAbsorption(enabled bool) Option {
	return func(o *options) {
		o.absorption = enabled
	}
}

// WithVerify checks every computed clause list against its expression with
// a SAT solver.
func WithVerify(enabled bool) Option {
	return func(o *options) {
		o.verify = enabled
	}
}

// WithMaxClauses bounds the clause count of a single object.
func WithMaxClauses(limit int) Option {
	return func(o *options) {
		o.maxClauses = limit
	}
}

// WithCache reuses clause lists across runs.
func WithCache(cache ports.ClauseCache) Option {
	return func(o *options) {
		o.cache = cache
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

func (o *options) preprocessor(reg *registry.Registry) (*compiler.Preprocessor, error) {
	strategy, err := compiler.ParseResolverStrategy(o.strategy)
	if err != nil {
		return nil, err
	}
	return compiler.New(reg, compiler.WithResolver(strategy), compiler.WithLogger(o.logger))
}

func (o *options) normalizer(kinds dnf.KindLookup) *dnf.Normalizer {
	opts := []dnf.Option{dnf.WithLogger(o.logger)}
	if o.absorption {
		opts = append(opts, dnf.WithAbsorption())
	}
	if o.verify {
		opts = append(opts, dnf.WithVerify())
	}
	if o.maxClauses > 0 {
		opts = append(opts, dnf.WithMaxClauses(o.maxClauses))
	}
	if o.cache != nil {
		opts = append(opts, dnf.WithCache(o.cache))
	}
	return dnf.New(kinds, opts...)
}
