package source

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/regiongraph/internal/compiler"
	"github.com/aretw0/regiongraph/internal/dnf"
	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/ports"
	"github.com/aretw0/regiongraph/pkg/registry"
)

// LiveSource compiles raw definitions from a loader.
//
// Waypoints are registered as State terms (Bool when stateless) and
// transitions as Bool terms, unless a term with the same name was declared
// explicitly. Stateless waypoints are emitted as Locations.
type LiveSource struct {
	loader ports.RawDefinitionLoader
	opts   *options
}

// NewLiveSource creates a source reading from loader.
func NewLiveSource(loader ports.RawDefinitionLoader, opts ...Option) *LiveSource {
	return &LiveSource{loader: loader, opts: newOptions(opts)}
}

// Name implements ports.WorldSource.
func (s *LiveSource) Name() string { return "live" }

// Fetch loads every raw definition section concurrently.
func (s *LiveSource) Fetch(ctx context.Context) (*domain.RawDefinitions, error) {
	defs := &domain.RawDefinitions{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defs.Terms, err = s.loader.LoadTerms(gctx)
		return err
	})
	g.Go(func() (err error) {
		defs.Macros, err = s.loader.LoadMacros(gctx)
		return err
	})
	g.Go(func() (err error) {
		defs.Waypoints, err = s.loader.LoadWaypoints(gctx)
		return err
	})
	g.Go(func() (err error) {
		defs.Transitions, err = s.loader.LoadTransitions(gctx)
		return err
	})
	g.Go(func() (err error) {
		defs.Locations, err = s.loader.LoadLocations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load definitions: %w", err)
	}
	return defs, nil
}

// Load implements ports.WorldSource.
func (s *LiveSource) Load(ctx context.Context) ([]domain.LogicObjectDefinition, error) {
	defs, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return s.compile(ctx, defs)
}

func (s *LiveSource) compile(ctx context.Context, defs *domain.RawDefinitions) ([]domain.LogicObjectDefinition, error) {
	logger := s.opts.logger
	reg := registry.NewRegistry()
	pre, err := s.opts.preprocessor(reg)
	if err != nil {
		return nil, err
	}

	for _, t := range defs.Terms {
		kind, err := domain.ParseTermKind(t.Kind)
		if err != nil {
			return nil, fmt.Errorf("term %s: %w", t.Name, err)
		}
		if err := pre.RegisterTerm(t.Name, kind); err != nil {
			return nil, err
		}
	}
	for _, w := range defs.Waypoints {
		kind := domain.TermState
		if w.Stateless {
			kind = domain.TermBool
		}
		if err := registerImplicit(pre, reg, w.Name, kind); err != nil {
			return nil, err
		}
	}
	for _, t := range defs.Transitions {
		if err := registerImplicit(pre, reg, t.Name, domain.TermBool); err != nil {
			return nil, err
		}
	}

	for _, name := range defs.MacroNames() {
		if err := pre.DefineMacro(name, defs.Macros[name]); err != nil {
			return nil, err
		}
	}
	if err := pre.ExpandMacros(); err != nil {
		return nil, err
	}

	var items []pendingObject
	var stateless []pendingObject
	for _, w := range defs.Waypoints {
		item, err := compileRaw(pre, w, domain.HandlingDefault)
		if err != nil {
			return nil, err
		}
		if w.Stateless {
			item.handling = domain.HandlingLocation
			stateless = append(stateless, item)
			continue
		}
		items = append(items, item)
	}
	for _, t := range defs.Transitions {
		item, err := compileRaw(pre, t, domain.HandlingTransition)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	items = append(items, stateless...)
	for _, l := range defs.Locations {
		item, err := compileRaw(pre, l, domain.HandlingLocation)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	objs, err := normalizeAll(ctx, s.opts.normalizer(reg), items)
	if err != nil {
		return nil, err
	}
	logger.Debug("live definitions compiled",
		"terms", reg.Len(), "macros", len(defs.Macros), "objects", len(objs))
	return objs, nil
}

// registerImplicit registers a waypoint or transition name as a term unless
// the name is already known.
func registerImplicit(pre *compiler.Preprocessor, reg *registry.Registry, name string, kind domain.TermKind) error {
	if _, exists := reg.Lookup(name); exists {
		return nil
	}
	return pre.RegisterTerm(name, kind)
}

type pendingObject struct {
	name     string
	handling domain.LogicHandling
	input    dnf.Input
}

func compileRaw(pre *compiler.Preprocessor, raw domain.RawLogic, handling domain.LogicHandling) (pendingObject, error) {
	expr, err := pre.Compile(raw.Name, raw.Logic)
	if err != nil {
		return pendingObject{}, err
	}
	return pendingObject{
		name:     raw.Name,
		handling: handling,
		input:    dnf.Input{Expr: expr, Source: raw.Logic},
	}, nil
}

// normalizeAll normalizes items one after another in their given order.
func normalizeAll(ctx context.Context, norm *dnf.Normalizer, items []pendingObject) ([]domain.LogicObjectDefinition, error) {
	out := make([]domain.LogicObjectDefinition, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		clauses, err := norm.Normalize(ctx, item.name, item.input)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.LogicObjectDefinition{Name: item.name, Clauses: clauses, Handling: item.handling})
	}
	return out, nil
}
