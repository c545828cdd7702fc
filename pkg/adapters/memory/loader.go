package memory

import (
	"context"
	"maps"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// Loader implements ports.RawDefinitionLoader over definitions held in memory.
type Loader struct {
	defs domain.RawDefinitions
}

// NewLoader creates a Loader serving a copy of defs.
func NewLoader(defs domain.RawDefinitions) *Loader {
	cp := domain.RawDefinitions{
		Terms:       append([]domain.RawTerm(nil), defs.Terms...),
		Macros:      maps.Clone(defs.Macros),
		Waypoints:   append([]domain.RawLogic(nil), defs.Waypoints...),
		Transitions: append([]domain.RawLogic(nil), defs.Transitions...),
		Locations:   append([]domain.RawLogic(nil), defs.Locations...),
	}
	return &Loader{defs: cp}
}

// LoadTerms returns the declared terms.
func (l *Loader) LoadTerms(ctx context.Context) ([]domain.RawTerm, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]domain.RawTerm(nil), l.defs.Terms...), nil
}

// LoadMacros returns the macro definitions.
func (l *Loader) LoadMacros(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := maps.Clone(l.defs.Macros)
	if out == nil {
		out = map[string]string{}
	}
	return out, nil
}

// LoadWaypoints returns the waypoint definitions.
func (l *Loader) LoadWaypoints(ctx context.Context) ([]domain.RawLogic, error) {
	return logic(ctx, l.defs.Waypoints)
}

// LoadTransitions returns the transition definitions.
func (l *Loader) LoadTransitions(ctx context.Context) ([]domain.RawLogic, error) {
	return logic(ctx, l.defs.Transitions)
}

// LoadLocations returns the location definitions.
func (l *Loader) LoadLocations(ctx context.Context) ([]domain.RawLogic, error) {
	return logic(ctx, l.defs.Locations)
}

func logic(ctx context.Context, src []domain.RawLogic) ([]domain.RawLogic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]domain.RawLogic(nil), src...), nil
}
