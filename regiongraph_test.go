package regiongraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/regiongraph"
	"github.com/aretw0/regiongraph/pkg/adapters/memory"
	"github.com/aretw0/regiongraph/pkg/domain"
)

func TestNew_ReusesOptions(t *testing.T) {
	defs := domain.RawDefinitions{
		Terms:       []domain.RawTerm{{Name: "X"}},
		Waypoints:   []domain.RawLogic{{Name: "A", Logic: "true"}},
		Transitions: []domain.RawLogic{{Name: "B", Logic: "A && X"}},
	}
	p := regiongraph.New(regiongraph.WithLoader(memory.NewLoader(defs)))

	for _, ref := range []string{"First", "Second"} {
		res, err := p.Run(context.Background(), regiongraph.Config{
			Jobs:    []string{"regions"},
			RefName: ref,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Stats.Regions)
		assert.Empty(t, res.Outputs)
	}
}
