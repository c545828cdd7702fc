package ports

import (
	"context"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// RawDefinitionLoader defines how a live source retrieves raw definitions.
// Each method is independent so that callers may fetch them concurrently.
type RawDefinitionLoader interface {
	// LoadTerms returns explicitly declared terms in declaration order.
	LoadTerms(ctx context.Context) ([]domain.RawTerm, error)

	// LoadMacros returns macro text keyed by macro name.
	LoadMacros(ctx context.Context) (map[string]string, error)

	// LoadWaypoints returns the requirement text of every waypoint.
	LoadWaypoints(ctx context.Context) ([]domain.RawLogic, error)

	// LoadTransitions returns the requirement text of every transition.
	LoadTransitions(ctx context.Context) ([]domain.RawLogic, error)

	// LoadLocations returns the requirement text of every location.
	LoadLocations(ctx context.Context) ([]domain.RawLogic, error)
}

// WorldSource yields logic objects with their clauses already normalized.
type WorldSource interface {
	// Name identifies the source in logs ("document", "snapshot", "live").
	Name() string

	// Load returns the objects in the order they should be fed to the builder.
	Load(ctx context.Context) ([]domain.LogicObjectDefinition, error)
}
