package pipeline_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/regiongraph/internal/testutils"
	"github.com/aretw0/regiongraph/pkg/adapters/memory"
	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/pipeline"
)

// The smallest complete world: waypoint A is free, transition B needs A and
// X, location L sits in B and needs Y.
var smallWorld = domain.RawDefinitions{
	Terms:       []domain.RawTerm{{Name: "X"}, {Name: "Y"}},
	Waypoints:   []domain.RawLogic{{Name: "A", Logic: "true"}},
	Transitions: []domain.RawLogic{{Name: "B", Logic: "A && X"}},
	Locations:   []domain.RawLogic{{Name: "L", Logic: "B && Y"}},
}

type failingExporter struct{ err error }

func (failingExporter) Filename(ref string) string { return ref + ".bin" }

func (f failingExporter) Export(context.Context, io.Writer, string, *domain.GraphWorldDefinition) error {
	return f.err
}

func regionNames(g *domain.GraphWorldDefinition) []string {
	var names []string
	for _, r := range g.Regions {
		names = append(names, r.Name)
	}
	return names
}

func TestRun_EndToEnd(t *testing.T) {
	out := t.TempDir()
	res, err := pipeline.Run(context.Background(), pipeline.Config{
		Jobs:      []string{pipeline.JobRegions},
		OutputDir: out,
	}, pipeline.WithLoader(memory.NewLoader(smallWorld)))
	require.NoError(t, err)

	assert.Equal(t, "live", res.Source)
	assert.Equal(t, 3, res.Objects)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"Menu", "B"}, regionNames(res.World))

	menu, ok := res.World.Region("Menu")
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, menu.Aliases)

	require.Len(t, res.World.Transitions, 1)
	tr := res.World.Transitions[0]
	assert.Equal(t, "Menu->B", tr.Name)
	assert.Equal(t, "Menu", tr.Source)
	assert.Equal(t, "B", tr.Target)
	assert.Equal(t, [][]string{{"X"}}, tr.Requirement.Canonical())
	assert.True(t, tr.StateModifying, "the requirement came from a clause on state term A")

	require.Len(t, res.World.Locations, 1)
	loc := res.World.Locations[0]
	assert.Equal(t, "B", loc.Region)
	assert.Equal(t, [][]string{{"Y"}}, loc.Requirement.Canonical())

	assert.Equal(t, domain.GraphStats{Regions: 2, EmptyRegions: 1, Locations: 1, Transitions: 1}, res.Stats)

	assert.Equal(t, []string{
		filepath.Join(out, "World.json"),
		filepath.Join(out, "world_graph.go"),
		filepath.Join(out, "World.mmd"),
	}, res.Outputs)
	for _, path := range res.Outputs {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	}
}

func TestRun_SkippedWithoutRegionsJob(t *testing.T) {
	var result string
	hooks := domain.LifecycleHooks{
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) { result = e.Result },
	}
	_, err := pipeline.Run(context.Background(), pipeline.Config{Jobs: []string{"items"}},
		pipeline.WithLoader(memory.NewLoader(smallWorld)), pipeline.WithLifecycleHooks(hooks))
	assert.ErrorIs(t, err, pipeline.ErrSkipped)
	assert.Equal(t, "skipped", result)
}

func TestRun_SourceSelection(t *testing.T) {
	jobs := []string{pipeline.JobRegions}

	_, err := pipeline.Run(context.Background(), pipeline.Config{Jobs: jobs})
	assert.ErrorIs(t, err, pipeline.ErrNoSource)

	_, err = pipeline.Run(context.Background(), pipeline.Config{
		Jobs:                jobs,
		WorldDefinitionPath: "world.yaml",
		RandoContextPath:    "rando.json",
	})
	assert.ErrorIs(t, err, pipeline.ErrAmbiguousSource)

	_, err = pipeline.Run(context.Background(), pipeline.Config{
		Jobs:             jobs,
		RandoContextPath: "rando.json",
	}, pipeline.WithLoader(memory.NewLoader(smallWorld)))
	assert.ErrorIs(t, err, pipeline.ErrAmbiguousSource)

	_, err = pipeline.Run(context.Background(), pipeline.Config{
		Jobs:              jobs,
		DefinitionsPath:   t.TempDir(),
		DefinitionsFormat: "xml",
	})
	assert.Error(t, err)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := t.TempDir()

	_, err := pipeline.Run(ctx, pipeline.Config{Jobs: []string{pipeline.JobRegions}, OutputDir: out},
		pipeline.WithLoader(memory.NewLoader(smallWorld)))
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_FailureWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	_, err := pipeline.Run(context.Background(), pipeline.Config{
		Jobs:           []string{pipeline.JobRegions},
		OutputDir:      out,
		StartStateTerm: "Nowhere",
	}, pipeline.WithLoader(memory.NewLoader(smallWorld)))

	var rebase *domain.RebaseError
	require.ErrorAs(t, err, &rebase)
	assert.NoDirExists(t, out)
}

func TestRun_KeepSet(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"world.yaml": `
LogicObjects:
  - Name: Start
    Clauses: [[]]
  - Name: Lonely
    Clauses: [["Z"]]
`,
		"keep.txt": "# regions kept for the tracker\n\nLonely\n",
	})
	cfg := pipeline.Config{
		Jobs:                []string{pipeline.JobRegions},
		WorldDefinitionPath: filepath.Join(dir, "world.yaml"),
	}

	res, err := pipeline.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "document", res.Source)
	assert.Equal(t, []string{"Menu"}, regionNames(res.World))

	cfg.EmptyRegionsToKeepPath = filepath.Join(dir, "keep.txt")
	res, err = pipeline.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Menu", "Lonely"}, regionNames(res.World))

	cfg.EmptyRegionsToKeepPath = filepath.Join(dir, "missing.txt")
	_, err = pipeline.Run(context.Background(), cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_SnapshotSource(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"rando.json": `{
  "formatVersion": "1.0.0",
  "logicManager": {
    "variableResolver": {"type": "Game.Resolver, Game"},
    "terms": [{"name": "Start", "kind": "state"}],
    "waypoints": ["Start"],
    "transitions": ["Town"],
    "logic": [
      {"name": "Start", "logic": "true"},
      {"name": "Town", "logic": "Start && $Lantern"},
      {"name": "Shop", "logic": "Town"}
    ]
  }
}`,
	})

	res, err := pipeline.Run(context.Background(), pipeline.Config{
		Jobs:             []string{pipeline.JobRegions},
		RandoContextPath: filepath.Join(dir, "rando.json"),
		StartStateTerm:   "Start",
	})
	require.NoError(t, err)
	assert.Equal(t, "snapshot", res.Source)
	assert.Equal(t, []string{"Menu", "Town"}, regionNames(res.World))
	assert.Equal(t, "Town", res.World.Locations[0].Region)
}

func TestRun_HooksAndLocker(t *testing.T) {
	var mu sync.Mutex
	var stages []string
	hooks := domain.LifecycleHooks{
		OnStageEnd: func(_ context.Context, e *domain.StageEvent) {
			mu.Lock()
			defer mu.Unlock()
			stages = append(stages, e.Stage)
		},
	}
	p := pipeline.New(
		pipeline.WithLoader(memory.NewLoader(smallWorld)),
		pipeline.WithLocker(memory.NewLocker()),
		pipeline.WithCache(memory.NewCache()),
		pipeline.WithLifecycleHooks(hooks),
	)
	cfg := pipeline.Config{
		Jobs:      []string{pipeline.JobRegions},
		OutputDir: t.TempDir(),
		Formats:   []string{"json"},
		RefName:   "Small",
	}

	// The second run only succeeds if the first released its lock.
	for i := 0; i < 2; i++ {
		res, err := p.Run(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(cfg.OutputDir, "Small.json")}, res.Outputs)
	}
	assert.Equal(t, []string{"load", "build", "export", "load", "build", "export"}, stages)
}

func TestObjects(t *testing.T) {
	p := pipeline.New(pipeline.WithLoader(memory.NewLoader(smallWorld)))
	objs, src, err := p.Objects(context.Background(), pipeline.Config{})
	require.NoError(t, err)
	assert.Equal(t, "live", src)
	assert.Len(t, objs, 3)
}

func TestRun_ExportFailure(t *testing.T) {
	boom := errors.New("disk full")
	out := t.TempDir()
	_, err := pipeline.Run(context.Background(), pipeline.Config{
		Jobs:      []string{pipeline.JobRegions},
		OutputDir: out,
	}, pipeline.WithLoader(memory.NewLoader(smallWorld)), pipeline.WithExporters(failingExporter{boom}))
	assert.ErrorIs(t, err, boom)
	assert.NoFileExists(t, filepath.Join(out, "World.bin"))
}

func TestReadKeepSet(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"keep.txt": "  A  \n# B\n\nC\nA\n",
	})
	names, err := pipeline.ReadKeepSet(filepath.Join(dir, "keep.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, names)

	names, err = pipeline.ReadKeepSet("")
	require.NoError(t, err)
	assert.Nil(t, names)
}
