package ports

import (
	"context"
	"io"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// Exporter serializes a finalized graph.
type Exporter interface {
	// Filename returns the output file name for the given reference name.
	Filename(refName string) string

	// Export writes world to w. It must not retain world after returning.
	Export(ctx context.Context, w io.Writer, refName string, world *domain.GraphWorldDefinition) error
}
