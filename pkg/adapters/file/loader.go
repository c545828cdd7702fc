package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// Extensions tried, in order, for every definition file.
var extensions = []string{".yaml", ".yml", ".json"}

// Loader implements ports.RawDefinitionLoader over plain YAML or JSON files.
//
// BasePath is either a single document holding every section
// (terms, macros, waypoints, transitions, locations) or a directory with
// one file per section, e.g. waypoints.yaml. Missing sections are empty.
type Loader struct {
	BasePath string

	mu     sync.Mutex
	loaded *domain.RawDefinitions
}

// NewLoader creates a Loader for path.
func NewLoader(path string) *Loader {
	return &Loader{BasePath: path}
}

// LoadTerms returns terms in file order.
func (l *Loader) LoadTerms(ctx context.Context) ([]domain.RawTerm, error) {
	defs, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.RawTerm(nil), defs.Terms...), nil
}

// LoadMacros returns macros keyed by name.
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

// LoadWaypoints returns waypoints sorted by name.
func (l *Loader) LoadWaypoints(ctx context.Context) ([]domain.RawLogic, error) {
	defs, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.RawLogic(nil), defs.Waypoints...), nil
}

// LoadTransitions returns transitions sorted by name.
func (l *Loader) LoadTransitions(ctx context.Context) ([]domain.RawLogic, error) {
	defs, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.RawLogic(nil), defs.Transitions...), nil
}

// LoadLocations returns locations sorted by name.
func (l *Loader) LoadLocations(ctx context.Context) ([]domain.RawLogic, error) {
	defs, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.RawLogic(nil), defs.Locations...), nil
}

func (l *Loader) load(ctx context.Context) (*domain.RawDefinitions, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded != nil {
		return l.loaded, nil
	}

	info, err := os.Stat(l.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to access definitions: %w", err)
	}

	defs := &domain.RawDefinitions{}
	if info.IsDir() {
		err = l.loadDir(defs)
	} else {
		err = decodeFile(l.BasePath, defs)
	}
	if err != nil {
		return nil, err
	}

	if err := checkDuplicates(defs); err != nil {
		return nil, err
	}
	if defs.Macros == nil {
		defs.Macros = map[string]string{}
	}
	for _, list := range [][]domain.RawLogic{defs.Waypoints, defs.Transitions, defs.Locations} {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}

	l.loaded = defs
	return defs, nil
}

func (l *Loader) loadDir(defs *domain.RawDefinitions) error {
	sections := []struct {
		name   string
		target any
	}{
		{"terms", &defs.Terms},
		{"macros", &defs.Macros},
		{"waypoints", &defs.Waypoints},
		{"transitions", &defs.Transitions},
		{"locations", &defs.Locations},
	}

	for _, s := range sections {
		path, ok := findSection(l.BasePath, s.name)
		if !ok {
			continue
		}
		if err := decodeFile(path, s.target); err != nil {
			return err
		}
	}
	return nil
}

func findSection(dir, name string) (string, bool) {
	for _, ext := range extensions {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// decodeFile reads YAML or JSON into target; JSON is valid YAML.
func decodeFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

var errDuplicate = errors.New("duplicate definition")

func checkDuplicates(defs *domain.RawDefinitions) error {
	terms := make(map[string]struct{}, len(defs.Terms))
	for _, t := range defs.Terms {
		if _, dup := terms[t.Name]; dup {
			return fmt.Errorf("%w: term %q", errDuplicate, t.Name)
		}
		terms[t.Name] = struct{}{}
	}
	for kind, list := range map[string][]domain.RawLogic{
		"waypoint":   defs.Waypoints,
		"transition": defs.Transitions,
		"location":   defs.Locations,
	} {
		seen := make(map[string]struct{}, len(list))
		for _, o := range list {
			if o.Name == "" {
				return fmt.Errorf("%s without a name", kind)
			}
			if _, dup := seen[o.Name]; dup {
				return fmt.Errorf("%w: %s %q", errDuplicate, kind, o.Name)
			}
			seen[o.Name] = struct{}{}
		}
	}
	return nil
}
