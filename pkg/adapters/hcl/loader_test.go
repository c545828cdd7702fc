package hcl

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/regiongraph/internal/testutils"
	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/ports/tests"
)

func TestLoader_Contract(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"a_terms.hcl": `
term "GEO" {
  kind = "counter"
}
term "Dash" {}

macro "RICH" {
  logic = "GEO >= 500"
}
`,
		"world/b_objects.hcl": `
waypoint "Start" {
  logic = "true"
}
waypoint "Shade" {
  logic     = "Dash"
  stateless = true
}
transition "Town" {
  logic = "Start && Dash"
}
location "Shop" {
  logic = "Town && RICH"
}
`,
		"README.md": "not loaded",
	})

	tests.RawDefinitionLoaderContractTest(t, NewLoader([]string{dir}), domain.RawDefinitions{
		Terms:  []domain.RawTerm{{Name: "GEO", Kind: "counter"}, {Name: "Dash"}},
		Macros: map[string]string{"RICH": "GEO >= 500"},
		Waypoints: []domain.RawLogic{
			{Name: "Shade", Logic: "Dash", Stateless: true},
			{Name: "Start", Logic: "true"},
		},
		Transitions: []domain.RawLogic{{Name: "Town", Logic: "Start && Dash"}},
		Locations:   []domain.RawLogic{{Name: "Shop", Logic: "Town && RICH"}},
	})
}

func TestLoader_SameFileListedTwice(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"w.hcl": `waypoint "A" { logic = "true" }`,
	})
	file := filepath.Join(dir, "w.hcl")

	wps, err := NewLoader([]string{file, dir}).LoadWaypoints(context.Background())
	require.NoError(t, err)
	assert.Len(t, wps, 1)
}

func TestLoader_Errors(t *testing.T) {
	cases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name: "collision",
			files: map[string]string{
				"a.hcl": `location "Rock" { logic = "A" }`,
				"b.hcl": `location "Rock" { logic = "B" }`,
			},
			wantErr: "collision detected",
		},
		{
			name:    "missing logic",
			files:   map[string]string{"a.hcl": `transition "T" {}`},
			wantErr: "failed to decode",
		},
		{
			name:    "unknown block",
			files:   map[string]string{"a.hcl": `region "R" { logic = "A" }`},
			wantErr: "failed to decode",
		},
		{
			name:    "syntax",
			files:   map[string]string{"a.hcl": `waypoint "A" { logic = `},
			wantErr: "failed to parse",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			testutils.WriteFiles(t, dir, tc.files)
			_, err := NewLoader([]string{dir}).LoadLocations(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoader_TransitionMayShareWaypointName(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"a.hcl": `
waypoint "Town" { logic = "true" }
transition "Town" { logic = "Start" }
`,
	})

	loader := NewLoader([]string{dir})
	wps, err := loader.LoadWaypoints(context.Background())
	require.NoError(t, err)
	trs, err := loader.LoadTransitions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Town", wps[0].Name)
	assert.Equal(t, "Town", trs[0].Name)
}
