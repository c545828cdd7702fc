package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/registry"
)

func TestRegistry_Register(t *testing.T) {
	r := registry.NewRegistry()

	_, err := r.Register("CLAW", domain.TermBool)
	require.NoError(t, err)
	_, err = r.Register("GEO", domain.TermCounter)
	require.NoError(t, err)
	_, err = r.Register("Town", domain.TermState)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Len())
	assert.True(t, r.IsState("Town"))
	assert.False(t, r.IsState("CLAW"))
	assert.False(t, r.IsState("missing"))

	kind, ok := r.Kind("GEO")
	assert.True(t, ok)
	assert.Equal(t, domain.TermCounter, kind)

	names := []string{}
	for _, term := range r.Terms() {
		names = append(names, term.Name)
	}
	assert.Equal(t, []string{"CLAW", "GEO", "Town"}, names, "terms keep registration order")
}

func TestRegistry_Duplicate(t *testing.T) {
	r := registry.NewRegistry()
	_, err := r.Register("CLAW", domain.TermBool)
	require.NoError(t, err)

	_, err = r.Register("CLAW", domain.TermState)
	var dup *domain.DuplicateTermError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "CLAW", dup.Name)

	kind, _ := r.Kind("CLAW")
	assert.Equal(t, domain.TermBool, kind, "first registration is immutable")
}
