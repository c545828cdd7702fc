package source

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/regiongraph/internal/compiler"
	"github.com/aretw0/regiongraph/internal/dnf"
	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/registry"
)

// SnapshotFormatConstraint is the range of snapshot format versions
// SnapshotSource accepts.
const SnapshotFormatConstraint = ">= 1.0.0, < 2.0.0"

const (
	logicManagerKey     = "logicManager"
	variableResolverKey = "variableResolver"
)

type resolverTag struct {
	Type string `mapstructure:"type"`
}

type snapshotLogic struct {
	Name  string     `mapstructure:"name"`
	Logic string     `mapstructure:"logic"`
	DNF   [][]string `mapstructure:"dnf"`
}

type logicManager struct {
	VariableResolver resolverTag       `mapstructure:"variableResolver"`
	Terms            []domain.RawTerm  `mapstructure:"terms"`
	Macros           map[string]string `mapstructure:"macros"`
	Logic            []snapshotLogic   `mapstructure:"logic"`
	Waypoints        []string          `mapstructure:"waypoints"`
	Transitions      []string          `mapstructure:"transitions"`
}

type snapshotDocument struct {
	FormatVersion string        `mapstructure:"formatVersion"`
	LogicManager  *logicManager `mapstructure:"logicManager"`
}

// SnapshotSource reads a saved logic-manager snapshot.
//
// The resolver recorded in the snapshot cannot be rebuilt standalone, so its
// type tag is replaced with the configured strategy before decoding. The
// handling of each logic object is inferred: transition names become
// Transitions, waypoints whose term is State-kind define Regions and
// everything else is a Location. Objects carrying a dnf field reuse it
// instead of recomputing.
type SnapshotSource struct {
	path string
	opts *options
}

// NewSnapshotSource creates a source for the snapshot at path.
// WithResolver defaults to "dummy" for snapshots.
func NewSnapshotSource(path string, opts ...Option) *SnapshotSource {
	o := newOptions(append([]Option{WithResolver(string(compiler.ResolverDummy))}, opts...))
	return &SnapshotSource{path: path, opts: o}
}

// Name implements ports.WorldSource.
func (s *SnapshotSource) Name() string { return "snapshot" }

// Load implements ports.WorldSource.
func (s *SnapshotSource) Load(ctx context.Context) ([]domain.LogicObjectDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	strategy, err := compiler.ParseResolverStrategy(s.opts.strategy)
	if err != nil {
		return nil, err
	}
	raw, err := readDocument(s.path)
	if err != nil {
		return nil, err
	}
	if err := applyResolverShim(raw, strategy); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", s.path, err)
	}

	var doc snapshotDocument
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", s.path, err)
	}
	if err := checkFormatVersion(doc.FormatVersion); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", s.path, err)
	}

	return s.compile(ctx, doc.LogicManager)
}

// applyResolverShim overwrites the resolver tag of the logic-manager section.
func applyResolverShim(raw map[string]any, strategy compiler.ResolverStrategy) error {
	lm, ok := raw[logicManagerKey].(map[string]any)
	if !ok {
		return fmt.Errorf("%s: %w", logicManagerKey, domain.ErrMissingData)
	}
	lm[variableResolverKey] = map[string]any{"type": string(strategy)}
	return nil
}

func checkFormatVersion(raw string) error {
	if raw == "" {
		return fmt.Errorf("formatVersion: %w", domain.ErrMissingData)
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("invalid formatVersion %q: %w", raw, err)
	}
	c, err := semver.NewConstraint(SnapshotFormatConstraint)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("unsupported snapshot format %s (want %s)", v, SnapshotFormatConstraint)
	}
	return nil
}

func (s *SnapshotSource) compile(ctx context.Context, lm *logicManager) ([]domain.LogicObjectDefinition, error) {
	strategy, err := compiler.ParseResolverStrategy(lm.VariableResolver.Type)
	if err != nil {
		return nil, err
	}
	reg := registry.NewRegistry()
	o := *s.opts
	o.strategy = string(strategy)
	pre, err := o.preprocessor(reg)
	if err != nil {
		return nil, err
	}

	for _, t := range lm.Terms {
		kind, err := domain.ParseTermKind(t.Kind)
		if err != nil {
			return nil, fmt.Errorf("term %s: %w", t.Name, err)
		}
		if err := pre.RegisterTerm(t.Name, kind); err != nil {
			return nil, err
		}
	}
	waypoints := make(map[string]struct{}, len(lm.Waypoints))
	for _, name := range lm.Waypoints {
		waypoints[name] = struct{}{}
		if err := registerImplicit(pre, reg, name, domain.TermState); err != nil {
			return nil, err
		}
	}
	transitions := make(map[string]struct{}, len(lm.Transitions))
	for _, name := range lm.Transitions {
		transitions[name] = struct{}{}
		if err := registerImplicit(pre, reg, name, domain.TermBool); err != nil {
			return nil, err
		}
	}

	macros := domain.RawDefinitions{Macros: lm.Macros}
	for _, name := range macros.MacroNames() {
		if err := pre.DefineMacro(name, lm.Macros[name]); err != nil {
			return nil, err
		}
	}
	if err := pre.ExpandMacros(); err != nil {
		return nil, err
	}

	items := make([]pendingObject, 0, len(lm.Logic))
	for _, l := range lm.Logic {
		handling := inferHandling(l.Name, waypoints, transitions, reg)
		if l.DNF != nil {
			clauses, err := domain.ClausesFromKeys(l.DNF)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", l.Name, err)
			}
			items = append(items, pendingObject{name: l.Name, handling: handling, input: dnf.Input{Precomputed: clauses}})
			continue
		}
		o.logger.Info("no precomputed dnf in snapshot, computing it", "object", l.Name)
		item, err := compileRaw(pre, domain.RawLogic{Name: l.Name, Logic: l.Logic}, handling)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	objs, err := normalizeAll(ctx, o.normalizer(reg), items)
	if err != nil {
		return nil, err
	}
	orderByHandling(objs)
	o.logger.Debug("snapshot loaded", "path", s.path, "resolver", strategy, "objects", len(objs))
	return objs, nil
}

func inferHandling(name string, waypoints, transitions map[string]struct{}, reg *registry.Registry) domain.LogicHandling {
	if _, ok := transitions[name]; ok {
		return domain.HandlingTransition
	}
	if _, ok := waypoints[name]; ok && reg.IsState(name) {
		return domain.HandlingDefault
	}
	return domain.HandlingLocation
}
