package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/regiongraph/pkg/adapters/memory"
	"github.com/aretw0/regiongraph/pkg/domain"
)

// Builder collects definitions in declaration order.
type Builder struct {
	terms   []*TermBuilder
	macros  map[string]string
	objects []*ObjectBuilder
	index   map[objectKey]*ObjectBuilder
}

type objectKey struct {
	kind objectKind
	name string
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{
		macros: make(map[string]string),
		index:  make(map[objectKey]*ObjectBuilder),
	}
}

// Term declares a Bool term. Kind changes it.
func (b *Builder) Term(name string) *TermBuilder {
	t := &TermBuilder{term: domain.RawTerm{Name: name}}
	b.terms = append(b.terms, t)
	return t
}

// Macro defines a named sub-expression. Redefining a macro replaces it.
func (b *Builder) Macro(name, expr string) *Builder {
	b.macros[name] = expr
	return b
}

// Waypoint adds a waypoint or returns the existing one.
func (b *Builder) Waypoint(name string) *ObjectBuilder { return b.add(kindWaypoint, name) }

// Transition adds a transition or returns the existing one.
func (b *Builder) Transition(name string) *ObjectBuilder { return b.add(kindTransition, name) }

// Location adds a location or returns the existing one.
func (b *Builder) Location(name string) *ObjectBuilder { return b.add(kindLocation, name) }

func (b *Builder) add(kind objectKind, name string) *ObjectBuilder {
	key := objectKey{kind, name}
	if ob, ok := b.index[key]; ok {
		return ob
	}
	ob := &ObjectBuilder{kind: kind, logic: domain.RawLogic{Name: name}}
	b.index[key] = ob
	b.objects = append(b.objects, ob)
	return ob
}

// Definitions returns everything declared so far. Objects without a
// requirement and duplicate term names are reported together.
func (b *Builder) Definitions() (domain.RawDefinitions, error) {
	var defs domain.RawDefinitions
	var errs []error

	seen := make(map[string]struct{}, len(b.terms))
	for _, t := range b.terms {
		if _, dup := seen[t.term.Name]; dup {
			errs = append(errs, &domain.DuplicateTermError{Name: t.term.Name})
			continue
		}
		seen[t.term.Name] = struct{}{}
		defs.Terms = append(defs.Terms, t.term)
	}

	if len(b.macros) > 0 {
		defs.Macros = make(map[string]string, len(b.macros))
		for k, v := range b.macros {
			defs.Macros[k] = v
		}
	}

	for _, ob := range b.objects {
		if ob.logic.Logic == "" {
			errs = append(errs, fmt.Errorf("%s %q has no requirement", ob.kind, ob.logic.Name))
			continue
		}
		switch ob.kind {
		case kindWaypoint:
			defs.Waypoints = append(defs.Waypoints, ob.logic)
		case kindTransition:
			defs.Transitions = append(defs.Transitions, ob.logic)
		case kindLocation:
			defs.Locations = append(defs.Locations, ob.logic)
		}
	}
	return defs, errors.Join(errs...)
}

// Build compiles the definitions into a memory loader.
func (b *Builder) Build() (*memory.Loader, error) {
	defs, err := b.Definitions()
	if err != nil {
		return nil, fmt.Errorf("failed to build definitions: %w", err)
	}
	return memory.NewLoader(defs), nil
}
