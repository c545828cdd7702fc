// Package pipeline drives a region-graph run: it selects a world source,
// feeds the builder phase by phase, finalizes the graph and only then runs
// the exporters.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/regiongraph/pkg/adapters/file"
	"github.com/aretw0/regiongraph/pkg/adapters/hcl"
	loamAdapter "github.com/aretw0/regiongraph/pkg/adapters/loam"
	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/export"
	"github.com/aretw0/regiongraph/pkg/ports"
	"github.com/aretw0/regiongraph/pkg/source"
	"github.com/aretw0/regiongraph/pkg/world"
)

// lockTTL bounds how long a crashed run can block others from exporting.
const lockTTL = 2 * time.Minute

// Result describes a finished run.
type Result struct {
	RunID   string
	Source  string
	Objects int
	World   *domain.GraphWorldDefinition
	Stats   domain.GraphStats
	// Outputs lists the files written, in exporter order.
	Outputs []string
}

// Pipeline holds the collaborators of a run. It is safe to reuse across
// runs but not to run concurrently with itself on the same outputs unless a
// locker is configured.
type Pipeline struct {
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	source     ports.WorldSource
	loader     ports.RawDefinitionLoader
	cache      ports.ClauseCache
	locker     ports.DistributedLocker
	classifier ports.StateClassifier
	exporters  []ports.Exporter
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

// WithSource injects a world source, bypassing source selection.
func WithSource(src ports.WorldSource) Option {
	return func(p *Pipeline) {
		p.source = src
	}
}

// WithLoader injects the raw definition loader used for live construction.
// It counts as a configured live source.
func WithLoader(loader ports.RawDefinitionLoader) Option {
	return func(p *Pipeline) {
		p.loader = loader
	}
}

// WithCache reuses normalized clause lists across runs.
func WithCache(cache ports.ClauseCache) Option {
	return func(p *Pipeline) {
		p.cache = cache
	}
}

// WithLocker serializes exports sharing a ref name.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(p *Pipeline) {
		p.locker = locker
	}
}

// WithClassifier replaces world.ReferencesStateClassifier.
func WithClassifier(c ports.StateClassifier) Option {
	return func(p *Pipeline) {
		p.classifier = c
	}
}

// WithExporters replaces the exporters derived from Config.Formats.
func WithExporters(exporters ...ports.Exporter) Option {
	return func(p *Pipeline) {
		p.exporters = exporters
	}
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: world.ReferencesStateClassifier,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

// Run executes one run with a fresh Pipeline.
func Run(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	return New(opts...).Run(ctx, cfg)
}

// Run loads, builds and exports the region graph described by cfg.
// Output files are only created after the graph is finalized.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Result, error) {
	started := time.Now()
	res := &Result{RunID: uuid.NewString()}
	err := p.run(ctx, cfg, res)
	p.runEnd(ctx, res, started, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, cfg Config, res *Result) error {
	logger := p.logger.With("run_id", res.RunID)
	if !cfg.Requested(JobRegions) {
		logger.Info("skipping region extraction", "jobs", strings.Join(cfg.Jobs, ","))
		return ErrSkipped
	}

	objs, src, err := p.load(ctx, cfg, res.RunID, logger)
	if err != nil {
		return err
	}
	res.Source = src
	res.Objects = len(objs)

	var keep []string
	err = p.stage(ctx, res.RunID, domain.StageBuild, src, func() error {
		var berr error
		if keep, berr = ReadKeepSet(cfg.EmptyRegionsToKeepPath); berr != nil {
			return berr
		}
		res.World, berr = p.build(ctx, cfg, objs, keep, logger)
		return berr
	})
	if err != nil {
		return err
	}
	res.Stats = res.World.Stats()

	if cfg.OutputDir != "" {
		err = p.stage(ctx, res.RunID, domain.StageExport, src, func() error {
			var eerr error
			res.Outputs, eerr = p.export(ctx, cfg, res, keep, logger)
			return eerr
		})
		if err != nil {
			return err
		}
	}

	logger.Info("region graph built",
		"regions", res.Stats.Regions,
		"empty_regions", res.Stats.EmptyRegions,
		"locations", res.Stats.Locations)
	return nil
}

// Objects selects the source and returns its normalized logic objects
// without building a graph.
func (p *Pipeline) Objects(ctx context.Context, cfg Config) ([]domain.LogicObjectDefinition, string, error) {
	return p.load(ctx, cfg, uuid.NewString(), p.logger)
}

func (p *Pipeline) load(ctx context.Context, cfg Config, runID string, logger *slog.Logger) ([]domain.LogicObjectDefinition, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	src, err := p.selectSource(cfg, logger)
	if err != nil {
		return nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	var objs []domain.LogicObjectDefinition
	err = p.stage(ctx, runID, domain.StageLoad, src.Name(), func() error {
		var lerr error
		objs, lerr = src.Load(ctx)
		return lerr
	})
	if err != nil {
		return nil, "", fmt.Errorf("%s source: %w", src.Name(), err)
	}
	logger.Debug("logic objects loaded", "source", src.Name(), "objects", len(objs))
	return objs, src.Name(), nil
}

func (p *Pipeline) selectSource(cfg Config, logger *slog.Logger) (ports.WorldSource, error) {
	if p.source != nil {
		return p.source, nil
	}

	var set []string
	if cfg.WorldDefinitionPath != "" {
		set = append(set, "world definition")
	}
	if cfg.RandoContextPath != "" {
		set = append(set, "rando context")
	}
	if cfg.DefinitionsPath != "" || p.loader != nil {
		set = append(set, "definitions")
	}
	switch len(set) {
	case 0:
		return nil, ErrNoSource
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousSource, strings.Join(set, ", "))
	}

	opts := []source.Option{
		source.WithLogger(logger),
		source.WithVerify(cfg.Verify),
		source.WithAbsorption(cfg.Absorption),
		source.WithMaxClauses(cfg.MaxClauses),
	}
	if cfg.Resolver != "" {
		opts = append(opts, source.WithResolver(cfg.Resolver))
	}
	if p.cache != nil {
		opts = append(opts, source.WithCache(p.cache))
	}

	switch {
	case cfg.WorldDefinitionPath != "":
		return source.NewDocumentSource(cfg.WorldDefinitionPath, opts...), nil
	case cfg.RandoContextPath != "":
		return source.NewSnapshotSource(cfg.RandoContextPath, opts...), nil
	}

	loader := p.loader
	if loader == nil {
		var err error
		if loader, err = openLoader(cfg, logger); err != nil {
			return nil, err
		}
	}
	return source.NewLiveSource(loader, opts...), nil
}

func openLoader(cfg Config, logger *slog.Logger) (ports.RawDefinitionLoader, error) {
	switch cfg.DefinitionsFormat {
	case "", FormatFiles:
		return file.NewLoader(cfg.DefinitionsPath), nil
	case FormatHCL:
		return hcl.NewLoader([]string{cfg.DefinitionsPath}, hcl.WithLogger(logger)), nil
	case FormatLoam:
		return loamAdapter.Open(cfg.DefinitionsPath)
	}
	return nil, fmt.Errorf("unknown definitions format %q", cfg.DefinitionsFormat)
}

func (p *Pipeline) build(ctx context.Context, cfg Config, objs []domain.LogicObjectDefinition, keep []string, logger *slog.Logger) (*domain.GraphWorldDefinition, error) {
	b := world.NewBuilder(world.WithLogger(logger))

	var regionTerms []string
	for _, o := range objs {
		if o.Handling != domain.HandlingLocation {
			regionTerms = append(regionTerms, o.Name)
		}
	}
	if err := b.DeclareRegionTerms(regionTerms...); err != nil {
		return nil, err
	}

	for _, phase := range []world.Phase{world.PhaseWaypoints, world.PhaseTransitions, world.PhaseLocations} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.Advance(phase); err != nil {
			return nil, err
		}
		// Locations attach to Menu, so it must exist before they arrive.
		if phase == world.PhaseLocations {
			if err := b.LabelRegionAsMenu(cfg.StartStateTerm); err != nil {
				return nil, err
			}
		}
		for _, o := range objs {
			if world.PhaseOf(o.Handling) != phase {
				continue
			}
			if err := b.AddOrUpdate(o); err != nil {
				return nil, err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.Build(ctx, p.classifier, keep)
}

func (p *Pipeline) export(ctx context.Context, cfg Config, res *Result, keep []string, logger *slog.Logger) ([]string, error) {
	exporters := p.exporters
	if exporters == nil {
		var err error
		if exporters, err = exportersFor(cfg, keep); err != nil {
			return nil, err
		}
	}
	refName := cfg.refName()

	if p.locker != nil {
		unlock, err := p.locker.Lock(ctx, "export:"+refName, lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to lock outputs for %s: %w", refName, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("failed to release output lock", "ref", refName, "err", err)
			}
		}()
	}

	outputs := make([]string, 0, len(exporters))
	for _, exp := range exporters {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}
		dest := filepath.Join(cfg.OutputDir, exp.Filename(refName))
		err := file.WriteAtomic(dest, func(w io.Writer) error {
			return exp.Export(ctx, w, refName, res.World)
		})
		if err != nil {
			return outputs, fmt.Errorf("export %s: %w", dest, err)
		}
		logger.Debug("exported", "path", dest)
		outputs = append(outputs, dest)
	}
	return outputs, nil
}

func exportersFor(cfg Config, keep []string) ([]ports.Exporter, error) {
	formats := cfg.Formats
	if len(formats) == 0 {
		formats = export.Formats()
	}
	out := make([]ports.Exporter, 0, len(formats))
	for _, f := range formats {
		switch f {
		case export.FormatGo:
			out = append(out, export.Go{Package: cfg.GoPackage})
		case export.FormatMermaid:
			out = append(out, export.Mermaid{Kept: keep})
		default:
			exp, err := export.ByName(f)
			if err != nil {
				return nil, err
			}
			out = append(out, exp)
		}
	}
	return out, nil
}

func (p *Pipeline) stage(ctx context.Context, runID, stage, src string, fn func() error) error {
	if p.hooks.OnStageStart != nil {
		p.hooks.OnStageStart(ctx, &domain.StageEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStageStart, RunID: runID},
			Stage:     stage,
			Source:    src,
		})
	}
	started := time.Now()
	err := fn()
	if p.hooks.OnStageEnd != nil {
		p.hooks.OnStageEnd(ctx, &domain.StageEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStageEnd, RunID: runID},
			Stage:     stage,
			Source:    src,
			Duration:  time.Since(started),
			Err:       err,
		})
	}
	return err
}

func (p *Pipeline) runEnd(ctx context.Context, res *Result, started time.Time, err error) {
	if p.hooks.OnRunEnd == nil {
		return
	}
	result := "ok"
	switch {
	case errors.Is(err, ErrSkipped):
		result = "skipped"
	case err != nil:
		result = "error"
	}
	p.hooks.OnRunEnd(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunEnd, RunID: res.RunID},
		Result:    result,
		Duration:  time.Since(started),
		Stats:     res.Stats,
		Objects:   res.Objects,
	})
}
