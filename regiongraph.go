package regiongraph

import (
	"context"

	"github.com/aretw0/regiongraph/pkg/adapters/memory"
	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/pipeline"
)

// Version is overridden at link time with -ldflags "-X github.com/aretw0/regiongraph.Version=...".
var Version = "dev"

type (
	// Config selects the world source, the start region and the outputs.
	Config = pipeline.Config
	// Result describes a finished run.
	Result = pipeline.Result
	// Option configures a run.
	Option = pipeline.Option
	// Pipeline runs the same options against many configs.
	Pipeline = pipeline.Pipeline
)

// Re-exported run options.
var (
	WithLogger         = pipeline.WithLogger
	WithLifecycleHooks = pipeline.WithLifecycleHooks
	WithLoader         = pipeline.WithLoader
	WithSource         = pipeline.WithSource
	WithCache          = pipeline.WithCache
	WithLocker         = pipeline.WithLocker
	WithClassifier     = pipeline.WithClassifier
	WithExporters      = pipeline.WithExporters
)

// New returns a reusable pipeline.
func New(opts ...Option) *Pipeline {
	return pipeline.New(opts...)
}

// Run loads, builds and exports the region graph described by cfg.
func Run(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	return pipeline.Run(ctx, cfg, opts...)
}

// Build compiles defs in memory and returns the finalized graph without
// writing anything. startTerm selects the Menu region as in
// Config.StartStateTerm.
func Build(ctx context.Context, defs domain.RawDefinitions, startTerm string, opts ...Option) (*domain.GraphWorldDefinition, error) {
	cfg := Config{
		Jobs:           []string{pipeline.JobRegions},
		StartStateTerm: startTerm,
	}
	opts = append([]Option{WithLoader(memory.NewLoader(defs))}, opts...)
	res, err := pipeline.Run(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return res.World, nil
}
