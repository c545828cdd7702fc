// Package hcl loads raw definitions from HCL files.
//
//	term "GEO" { kind = "counter" }
//	macro "RICH" { logic = "GEO >= 500" }
//	waypoint "Start" { logic = "true" }
//	transition "Town" { logic = "Start && Dash" }
//	location "Shop" { logic = "Town && RICH" }
package hcl

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/aretw0/regiongraph/pkg/domain"
)

type termBlock struct {
	Name string `hcl:"name,label"`
	Kind string `hcl:"kind,optional"`
}

type macroBlock struct {
	Name  string `hcl:"name,label"`
	Logic string `hcl:"logic"`
}

type waypointBlock struct {
	Name      string `hcl:"name,label"`
	Logic     string `hcl:"logic"`
	Stateless bool   `hcl:"stateless,optional"`
}

type logicBlock struct {
	Name  string `hcl:"name,label"`
	Logic string `hcl:"logic"`
}

// fileRoot decodes every top-level block a definition file may hold.
type fileRoot struct {
	Terms       []*termBlock     `hcl:"term,block"`
	Macros      []*macroBlock    `hcl:"macro,block"`
	Waypoints   []*waypointBlock `hcl:"waypoint,block"`
	Transitions []*logicBlock    `hcl:"transition,block"`
	Locations   []*logicBlock    `hcl:"location,block"`
}

// Loader implements ports.RawDefinitionLoader over .hcl files.
// Paths may name files or directories; directories are walked recursively.
type Loader struct {
	paths  []string
	logger *slog.Logger

	mu     sync.Mutex
	loaded *domain.RawDefinitions
}

// Option configures the Loader.
type Option func(*Loader)

// WithLogger sets the logger used for discovery messages.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a new HCL definition loader.
func NewLoader(paths []string, opts ...Option) *Loader {
	l := &Loader{
		paths:  paths,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadTerms returns terms in file, then block, order.
func (l *Loader) LoadTerms(ctx context.Context) ([]domain.RawTerm, error) {
	defs, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.RawTerm(nil), defs.Terms...), nil
}

// LoadMacros returns macros keyed by block label.
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

// LoadWaypoints returns waypoint blocks sorted by label.
func (l *Loader) LoadWaypoints(ctx context.Context) ([]domain.RawLogic, error) {
	defs, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.RawLogic(nil), defs.Waypoints...), nil
}

// LoadTransitions returns transition blocks sorted by label.
func (l *Loader) LoadTransitions(ctx context.Context) ([]domain.RawLogic, error) {
	defs, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.RawLogic(nil), defs.Transitions...), nil
}

// LoadLocations returns location blocks sorted by label.
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

	files, err := findHCLFiles(l.paths)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("discovered HCL files", "count", len(files))

	parser := hclparse.NewParser()
	defs := &domain.RawDefinitions{Macros: map[string]string{}}
	origin := make(map[string]string)
	claim := func(kind, name, file string) error {
		key := kind + ":" + name
		if prev, ok := origin[key]; ok {
			return fmt.Errorf("collision detected: %s '%s' is defined in both '%s' and '%s'", kind, name, prev, file)
		}
		origin[key] = file
		return nil
	}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, b := range root.Terms {
			if err := claim("term", b.Name, file); err != nil {
				return nil, err
			}
			defs.Terms = append(defs.Terms, domain.RawTerm{Name: b.Name, Kind: b.Kind})
		}
		for _, b := range root.Macros {
			if err := claim("macro", b.Name, file); err != nil {
				return nil, err
			}
			defs.Macros[b.Name] = b.Logic
		}
		for _, b := range root.Waypoints {
			if err := claim("waypoint", b.Name, file); err != nil {
				return nil, err
			}
			defs.Waypoints = append(defs.Waypoints, domain.RawLogic{Name: b.Name, Logic: b.Logic, Stateless: b.Stateless})
		}
		for _, b := range root.Transitions {
			if err := claim("transition", b.Name, file); err != nil {
				return nil, err
			}
			defs.Transitions = append(defs.Transitions, domain.RawLogic{Name: b.Name, Logic: b.Logic})
		}
		for _, b := range root.Locations {
			if err := claim("location", b.Name, file); err != nil {
				return nil, err
			}
			defs.Locations = append(defs.Locations, domain.RawLogic{Name: b.Name, Logic: b.Logic})
		}
	}

	for _, list := range [][]domain.RawLogic{defs.Waypoints, defs.Transitions, defs.Locations} {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	l.logger.Debug("HCL loading complete",
		"terms", len(defs.Terms), "macros", len(defs.Macros),
		"waypoints", len(defs.Waypoints), "transitions", len(defs.Transitions), "locations", len(defs.Locations))

	l.loaded = defs
	return defs, nil
}

// findHCLFiles walks all given paths and returns a flat, de-duplicated list of .hcl files.
func findHCLFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return all, nil
}
