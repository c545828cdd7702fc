package memory_test

import (
	"testing"

	"github.com/aretw0/regiongraph/pkg/adapters/memory"
	"github.com/aretw0/regiongraph/pkg/domain"
	contract "github.com/aretw0/regiongraph/pkg/ports/tests"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	defs := domain.RawDefinitions{
		Terms:  []domain.RawTerm{{Name: "GEO", Kind: "counter"}, {Name: "Dash"}},
		Macros: map[string]string{"RICH": "GEO >= 500"},
		Waypoints: []domain.RawLogic{
			{Name: "Start", Logic: "true"},
			{Name: "Shade", Logic: "Dash", Stateless: true},
		},
		Transitions: []domain.RawLogic{{Name: "Town", Logic: "Start && Dash"}},
		Locations:   []domain.RawLogic{{Name: "Shop", Logic: "Town && RICH"}},
	}

	loader := memory.NewLoader(defs)
	contract.RawDefinitionLoaderContractTest(t, loader, defs)
}

func TestInMemoryLoader_DoesNotAliasInput(t *testing.T) {
	defs := domain.RawDefinitions{Waypoints: []domain.RawLogic{{Name: "A", Logic: "true"}}}
	loader := memory.NewLoader(defs)
	defs.Waypoints[0].Logic = "false"

	got, err := loader.LoadWaypoints(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Logic != "true" {
		t.Errorf("loader aliased caller slice: %+v", got)
	}
}
