package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/regiongraph/pkg/domain"
)

func TestValidate_Clean(t *testing.T) {
	objs := []domain.LogicObjectDefinition{
		{Name: "Start", Clauses: domain.Tautology()},
	}
	g := &domain.GraphWorldDefinition{
		Regions:     []domain.Region{{Name: "Menu"}, {Name: "Town"}},
		Transitions: []domain.Transition{{Name: "Menu->Town", Source: "Menu", Target: "Town"}},
		Locations:   []domain.Location{{Name: "Shop", Region: "Town"}},
	}
	assert.NoError(t, Validate(objs, g))
	assert.NoError(t, Validate(objs, nil))
}

func TestValidate_ReportsEverything(t *testing.T) {
	objs := []domain.LogicObjectDefinition{
		{Name: "Start", Clauses: domain.Tautology()},
		{Name: "Void", Clauses: domain.SentinelFalse(), Handling: domain.HandlingLocation},
	}
	g := &domain.GraphWorldDefinition{
		Regions: []domain.Region{{Name: "Menu"}, {Name: "Town"}, {Name: "Island"}, {Name: "Cave"}},
		Transitions: []domain.Transition{
			{Name: "Menu->Town", Source: "Menu", Target: "Town"},
			{Name: "Island->Cave", Source: "Island", Target: "Cave"},
			{Name: "Town->Sky", Source: "Town", Target: "Sky"},
		},
		Locations: []domain.Location{{Name: "Void"}},
	}

	err := Validate(objs, g)
	require.Error(t, err)

	var aggr *AggregateError
	require.True(t, errors.As(err, &aggr))

	var got []string
	for _, f := range Findings(err) {
		got = append(got, f.Kind+":"+f.Name)
	}
	assert.Equal(t, []string{
		"object:Void",
		"transition:Town->Sky",
		"region:Island",
		"region:Cave",
		"location:Void",
	}, got)
	assert.Contains(t, err.Error(), "5 validation errors")
}

func TestCheckGraph_MissingMenu(t *testing.T) {
	errs := CheckGraph(&domain.GraphWorldDefinition{Regions: []domain.Region{{Name: "Town"}}})
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], `region "Menu": start region missing`)
}

func TestAggregateError_Single(t *testing.T) {
	err := &AggregateError{Errors: []error{&Finding{Kind: KindObject, Name: "X", Reason: "bad"}}}
	assert.Equal(t, `object "X": bad`, err.Error())
	assert.Nil(t, Findings(errors.New("plain")))
}
