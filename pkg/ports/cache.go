package ports

import (
	"context"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// ClauseCache stores normalized clause lists between runs.
type ClauseCache interface {
	// Get returns domain.ErrCacheMiss when nothing is stored under key.
	Get(ctx context.Context, key string) (domain.Clauses, error)

	// Put stores a deep copy of clauses under key, replacing any previous value.
	Put(ctx context.Context, key string, clauses domain.Clauses) error
}
