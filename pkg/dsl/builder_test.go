package dsl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/ports/tests"
	"github.com/aretw0/regiongraph/pkg/source"
)

func TestBuilder_Definitions(t *testing.T) {
	b := New()
	b.Term("Dash")
	b.Term("GEO").Kind(domain.TermCounter)
	b.Macro("Rich", "GEO > 200")

	b.Waypoint("Start").Requires("true")
	b.Waypoint("Bench").Requires("Start").Stateless()
	b.Transition("Town").Requires("Start && Dash").Or("Start && Rich")
	b.Location("Shop").Requires("Town").Stateless()

	defs, err := b.Definitions()
	require.NoError(t, err)

	assert.Equal(t, []domain.RawTerm{{Name: "Dash"}, {Name: "GEO", Kind: "counter"}}, defs.Terms)
	assert.Equal(t, map[string]string{"Rich": "GEO > 200"}, defs.Macros)
	assert.Equal(t, []domain.RawLogic{
		{Name: "Start", Logic: "true"},
		{Name: "Bench", Logic: "Start", Stateless: true},
	}, defs.Waypoints)
	assert.Equal(t, "(Start && Dash) || (Start && Rich)", defs.Transitions[0].Logic)
	assert.False(t, defs.Locations[0].Stateless, "only waypoints can be stateless")
}

func TestBuilder_SameNameReturnsSameObject(t *testing.T) {
	b := New()
	b.Waypoint("A").Requires("true")
	assert.Equal(t, "true", b.Waypoint("A").Build().Logic)

	b.Transition("A").Requires("A")
	defs, err := b.Definitions()
	require.NoError(t, err)
	assert.Len(t, defs.Waypoints, 1)
	assert.Len(t, defs.Transitions, 1)
}

func TestBuilder_Errors(t *testing.T) {
	b := New()
	b.Term("X")
	b.Term("X")
	b.Location("Shop")

	_, err := b.Build()
	require.Error(t, err)
	var dup *domain.DuplicateTermError
	assert.ErrorAs(t, err, &dup)
	assert.Contains(t, err.Error(), `location "Shop" has no requirement`)
}

func TestBuilder_LoaderContract(t *testing.T) {
	b := New()
	b.Term("GEO").Kind(domain.TermCounter)
	b.Term("Dash")
	b.Macro("RICH", "GEO >= 500")
	b.Waypoint("Start").Requires("true")
	b.Waypoint("Shade").Requires("Dash").Stateless()
	b.Transition("Town").Requires("Start && Dash")
	b.Location("Shop").Requires("Town && RICH")

	loader, err := b.Build()
	require.NoError(t, err)
	tests.RawDefinitionLoaderContractTest(t, loader, domain.RawDefinitions{
		Terms:  []domain.RawTerm{{Name: "GEO", Kind: "counter"}, {Name: "Dash"}},
		Macros: map[string]string{"RICH": "GEO >= 500"},
		Waypoints: []domain.RawLogic{
			{Name: "Start", Logic: "true"},
			{Name: "Shade", Logic: "Dash", Stateless: true},
		},
		Transitions: []domain.RawLogic{{Name: "Town", Logic: "Start && Dash"}},
		Locations:   []domain.RawLogic{{Name: "Shop", Logic: "Town && RICH"}},
	})
}

func TestBuilder_FeedsLiveSource(t *testing.T) {
	b := New()
	b.Term("X")
	b.Waypoint("A").Requires("true")
	b.Transition("B").Requires("A && X")
	b.Location("L").Requires("B")

	loader, err := b.Build()
	require.NoError(t, err)
	objs, err := source.NewLiveSource(loader).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, objs, 3)
}
