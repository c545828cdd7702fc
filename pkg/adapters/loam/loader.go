package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/loam"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// Definition kinds accepted in the kind field.
const (
	KindTerm       = "term"
	KindMacro      = "macro"
	KindWaypoint   = "waypoint"
	KindTransition = "transition"
	KindLocation   = "location"
)

// Loader adapts a Loam repository to the RawDefinitionLoader interface.
// Every document holds exactly one definition.
type Loader struct {
	Repo *loam.TypedRepository[DefinitionMetadata]

	mu     sync.Mutex
	loaded *domain.RawDefinitions
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[DefinitionMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at path and wraps it.
func Open(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// The pipeline never writes definitions back.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[DefinitionMetadata](repo)), nil
}

// LoadTerms returns term documents sorted by name.
func (l *Loader) LoadTerms(ctx context.Context) ([]domain.RawTerm, error) {
	defs, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.RawTerm(nil), defs.Terms...), nil
}

// LoadMacros returns macro documents keyed by name.
func (l *Loader) LoadMacros(ctx context.Context) (map[string]string, error) {
	defs, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(defs.Macros))
	for k, v := range defs.Macros {
		out[k] = v
	}
	return out, nil
}

// LoadWaypoints returns waypoint documents sorted by name.
func (l *Loader) LoadWaypoints(ctx context.Context) ([]domain.RawLogic, error) {
	defs, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.RawLogic(nil), defs.Waypoints...), nil
}

// LoadTransitions returns transition documents sorted by name.
func (l *Loader) LoadTransitions(ctx context.Context) ([]domain.RawLogic, error) {
	defs, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.RawLogic(nil), defs.Transitions...), nil
}

// LoadLocations returns location documents sorted by name.
func (l *Loader) LoadLocations(ctx context.Context) ([]domain.RawLogic, error) {
	defs, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.RawLogic(nil), defs.Locations...), nil
}

// load lists the repository once and partitions documents by kind.
// Concurrent callers wait for the first listing.
func (l *Loader) load(ctx context.Context) (*domain.RawDefinitions, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded != nil {
		return l.loaded, nil
	}

	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	defs := &domain.RawDefinitions{Macros: map[string]string{}}
	seen := make(map[string]string)
	for _, doc := range docs {
		meta := doc.Data
		name := meta.Name
		if name == "" {
			name = trimExtension(filepath.Base(doc.ID))
		}
		kind := strings.ToLower(strings.TrimSpace(meta.Kind))

		// Collision Detection, per kind: a transition may share its name with a waypoint.
		key := kind + ":" + name
		if existing, ok := seen[key]; ok {
			return nil, fmt.Errorf("collision detected: %s '%s' is defined in both '%s' and '%s'", kind, name, existing, doc.ID)
		}
		seen[key] = doc.ID

		logic := strings.TrimSpace(meta.Logic)
		if logic == "" {
			logic = strings.TrimSpace(doc.Content)
		}

		switch kind {
		case KindTerm:
			defs.Terms = append(defs.Terms, domain.RawTerm{Name: name, Kind: meta.TermKind})
		case KindMacro:
			defs.Macros[name] = logic
		case KindWaypoint:
			defs.Waypoints = append(defs.Waypoints, domain.RawLogic{Name: name, Logic: logic, Stateless: meta.Stateless})
		case KindTransition:
			defs.Transitions = append(defs.Transitions, domain.RawLogic{Name: name, Logic: logic})
		case KindLocation:
			defs.Locations = append(defs.Locations, domain.RawLogic{Name: name, Logic: logic})
		default:
			return nil, fmt.Errorf("document %s: unknown definition kind %q", doc.ID, meta.Kind)
		}
	}

	sort.SliceStable(defs.Terms, func(i, j int) bool { return defs.Terms[i].Name < defs.Terms[j].Name })
	for _, list := range [][]domain.RawLogic{defs.Waypoints, defs.Transitions, defs.Locations} {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}

	l.loaded = defs
	return defs, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext == "" {
		return id
	}
	return strings.TrimSuffix(id, ext)
}
