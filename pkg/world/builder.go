package world

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// noRegion marks a Location without an owning Region.
const noRegion = -1

type region struct {
	name        string
	entry       domain.Clauses
	hash        string
	aliases     []string
	locations   []int
	outgoing    []int
	incoming    []int
	placeholder bool
	removed     bool
}

type edge struct {
	object      string
	source      int
	target      int
	requirement domain.Clauses
	removed     bool
	stateful    bool
}

type leaf struct {
	name        string
	region      int
	requirement domain.Clauses
	stateful    bool
}

// Builder incrementally constructs a region graph from normalized logic
// objects. It has a single writer and holds no locks.
type Builder struct {
	logger *slog.Logger
	phase  Phase

	regions []*region
	byName  map[string]int
	byAlias map[string]int
	byHash  map[string]int

	edges  []*edge
	leaves []*leaf
	leafAt map[string]int

	regionTerms map[string]struct{}
	unreachable map[string]struct{}
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates an empty builder in PhaseWaypoints.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		byName:      make(map[string]int),
		byAlias:     make(map[string]int),
		byHash:      make(map[string]int),
		leafAt:      make(map[string]int),
		regionTerms: make(map[string]struct{}),
		unreachable: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return b
}

// Phase returns the current phase.
func (b *Builder) Phase() Phase { return b.phase }

// Advance moves the builder forward to phase. Moving backwards returns
// *PhaseError; finalization only happens through Build.
func (b *Builder) Advance(phase Phase) error {
	if b.phase == PhaseFinalized {
		return domain.ErrFinalized
	}
	if phase < b.phase || phase == PhaseFinalized {
		return &PhaseError{Current: b.phase, Requested: phase}
	}
	if phase != b.phase {
		b.logger.Debug("builder phase", "from", b.phase, "to", phase)
		b.phase = phase
	}
	return nil
}

// DeclareRegionTerms announces names that denote regions before the objects
// defining them are added, so forward references become placeholders.
func (b *Builder) DeclareRegionTerms(names ...string) error {
	if b.phase == PhaseFinalized {
		return domain.ErrFinalized
	}
	for _, name := range names {
		b.regionTerms[name] = struct{}{}
	}
	return nil
}

// AddOrUpdate feeds one logic object to the builder. Objects of a later
// phase advance the builder; objects of an earlier phase are rejected.
func (b *Builder) AddOrUpdate(def domain.LogicObjectDefinition) error {
	if b.phase == PhaseFinalized {
		return domain.ErrFinalized
	}
	want := PhaseOf(def.Handling)
	if want < b.phase {
		return &PhaseError{Object: def.Name, Current: b.phase, Requested: want}
	}
	if err := b.Advance(want); err != nil {
		return err
	}

	switch def.Handling {
	case domain.HandlingTransition:
		b.addTransition(def)
		return nil
	case domain.HandlingLocation:
		return b.addLocation(def)
	default:
		b.addWaypoint(def)
		return nil
	}
}

func (b *Builder) addWaypoint(def domain.LogicObjectDefinition) {
	b.regionTerms[def.Name] = struct{}{}
	if def.Unreachable() {
		b.unreachable[def.Name] = struct{}{}
		b.logger.Debug("unreachable waypoint", "name", def.Name)
		return
	}
	delete(b.unreachable, def.Name)

	hash := def.Clauses.Hash()
	if id, ok := b.byHash[hash]; ok {
		r := b.regions[id]
		if r.name == def.Name {
			return
		}
		if stub, ok := b.lookup(def.Name); ok && stub != id {
			b.mergeInto(stub, id)
		}
		if _, aliased := b.byAlias[def.Name]; !aliased {
			r.aliases = append(r.aliases, def.Name)
			b.byAlias[def.Name] = id
		}
		b.logger.Debug("waypoint merged", "name", def.Name, "region", r.name)
		return
	}

	if id, ok := b.byName[def.Name]; ok {
		r := b.regions[id]
		if r.hash != "" && b.byHash[r.hash] == id {
			delete(b.byHash, r.hash)
		}
		r.entry = def.Clauses.Clone()
		r.hash = hash
		r.placeholder = false
		b.byHash[hash] = id
		return
	}

	id := b.newRegion(def.Name, def.Clauses, false)
	b.regions[id].hash = hash
	b.byHash[hash] = id
}

func (b *Builder) addTransition(def domain.LogicObjectDefinition) {
	b.regionTerms[def.Name] = struct{}{}
	b.dropEdges(def.Name)
	if def.Unreachable() {
		b.unreachable[def.Name] = struct{}{}
		b.logger.Debug("unreachable transition", "name", def.Name)
		return
	}
	delete(b.unreachable, def.Name)

	target, ok := b.lookup(def.Name)
	if !ok {
		target = b.newRegion(def.Name, def.Clauses, false)
	} else if r := b.regions[target]; r.placeholder {
		r.placeholder = false
		r.entry = def.Clauses.Clone()
	}

	var sources []int
	grouped := make(map[int]domain.Clauses)
	for _, c := range def.Clauses {
		src, rest, ok := b.splitSource(c, true)
		if !ok {
			continue
		}
		if _, seen := grouped[src]; !seen {
			sources = append(sources, src)
		}
		grouped[src] = append(grouped[src], rest)
	}

	for _, src := range sources {
		id := len(b.edges)
		b.edges = append(b.edges, &edge{
			object:      def.Name,
			source:      src,
			target:      target,
			requirement: grouped[src],
		})
		b.regions[src].outgoing = append(b.regions[src].outgoing, id)
		b.regions[target].incoming = append(b.regions[target].incoming, id)
	}
}

func (b *Builder) addLocation(def domain.LogicObjectDefinition) error {
	owner := noRegion
	var requirement domain.Clauses

	if !def.Unreachable() {
		ownerClause := -1
		for i, c := range def.Clauses {
			term, isRegion := b.regionOperand(c)
			if isRegion {
				if _, dead := b.unreachable[term]; dead {
					continue
				}
				if _, known := b.lookup(term); !known {
					return &domain.UndefinedObjectError{Name: def.Name, Reference: term}
				}
			}
			src, rest, ok := b.splitSource(c, false)
			if !ok {
				return &domain.UndefinedObjectError{Name: def.Name, Reference: domain.MenuRegionName}
			}
			owner = src
			ownerClause = i
			requirement = append(requirement, rest)
			break
		}
		for i, c := range def.Clauses {
			if i == ownerClause {
				continue
			}
			if term, isRegion := b.regionOperand(c); isRegion {
				if _, dead := b.unreachable[term]; dead {
					continue
				}
			}
			requirement = append(requirement, c.Clone())
		}
	}
	if owner == noRegion {
		requirement = domain.SentinelFalse()
		b.logger.Debug("unreachable location", "name", def.Name)
	}

	if idx, ok := b.leafAt[def.Name]; ok {
		l := b.leaves[idx]
		if l.region != noRegion {
			b.regions[l.region].locations = removeInt(b.regions[l.region].locations, idx)
		}
		l.region, l.requirement = owner, requirement
		if owner != noRegion {
			b.regions[owner].locations = append(b.regions[owner].locations, idx)
		}
		return nil
	}

	idx := len(b.leaves)
	b.leaves = append(b.leaves, &leaf{name: def.Name, region: owner, requirement: requirement})
	b.leafAt[def.Name] = idx
	if owner != noRegion {
		b.regions[owner].locations = append(b.regions[owner].locations, idx)
	}
	return nil
}

// regionOperand returns the first positive operand of c naming a region.
func (b *Builder) regionOperand(c domain.StatefulClause) (string, bool) {
	for _, op := range c.Operands {
		if op.Kind == domain.OperandTerm && !op.Negated && b.isRegionTerm(op.Term) {
			return op.Term, true
		}
	}
	return "", false
}

// splitSource resolves the source region of a clause and returns the clause
// without its region operand. Clauses without a region operand start at the
// Menu region. ok is false when the region operand is unreachable.
// Missing regions, Menu included, are stubbed as placeholders only when stub
// is set.
func (b *Builder) splitSource(c domain.StatefulClause, stub bool) (int, domain.StatefulClause, bool) {
	for i, op := range c.Operands {
		if op.Kind != domain.OperandTerm || op.Negated || !b.isRegionTerm(op.Term) {
			continue
		}
		if _, dead := b.unreachable[op.Term]; dead {
			return noRegion, domain.StatefulClause{}, false
		}
		id, ok := b.lookup(op.Term)
		if !ok {
			if !stub {
				return noRegion, domain.StatefulClause{}, false
			}
			id = b.newRegion(op.Term, nil, true)
		}
		rest := c.Clone()
		rest.Operands = append(rest.Operands[:i:i], c.Operands[i+1:]...)
		return id, rest, true
	}
	if !stub {
		id, ok := b.byName[domain.MenuRegionName]
		return id, c.Clone(), ok
	}
	return b.menu(), c.Clone(), true
}

func (b *Builder) isRegionTerm(name string) bool {
	if _, ok := b.regionTerms[name]; ok {
		return true
	}
	_, ok := b.lookup(name)
	return ok
}

// lookup finds a live region by name or alias.
func (b *Builder) lookup(name string) (int, bool) {
	if id, ok := b.byName[name]; ok {
		return id, true
	}
	id, ok := b.byAlias[name]
	return id, ok
}

// menu returns the start region, creating a placeholder when absent.
func (b *Builder) menu() int {
	if id, ok := b.byName[domain.MenuRegionName]; ok {
		return id
	}
	return b.newRegion(domain.MenuRegionName, nil, true)
}

func (b *Builder) newRegion(name string, entry domain.Clauses, placeholder bool) int {
	id := len(b.regions)
	b.regions = append(b.regions, &region{
		name:        name,
		entry:       entry.Clone(),
		placeholder: placeholder,
	})
	b.byName[name] = id
	return id
}

func (b *Builder) dropEdges(object string) {
	for id, e := range b.edges {
		if e.removed || e.object != object {
			continue
		}
		e.removed = true
		b.regions[e.source].outgoing = removeInt(b.regions[e.source].outgoing, id)
		b.regions[e.target].incoming = removeInt(b.regions[e.target].incoming, id)
	}
}

// mergeInto moves everything attached to region from onto region to and
// retires from. Names of real regions survive as aliases.
func (b *Builder) mergeInto(from, to int) {
	if from == to {
		return
	}
	src, dst := b.regions[from], b.regions[to]

	for _, id := range src.outgoing {
		b.edges[id].source = to
		dst.outgoing = append(dst.outgoing, id)
	}
	for _, id := range src.incoming {
		b.edges[id].target = to
		dst.incoming = append(dst.incoming, id)
	}
	for _, idx := range src.locations {
		b.leaves[idx].region = to
		dst.locations = append(dst.locations, idx)
	}

	delete(b.byName, src.name)
	names := src.aliases
	if !src.placeholder {
		names = append([]string{src.name}, names...)
	}
	for _, name := range names {
		if name == dst.name {
			continue
		}
		dst.aliases = append(dst.aliases, name)
		b.byAlias[name] = to
	}
	if src.hash != "" && b.byHash[src.hash] == from {
		delete(b.byHash, src.hash)
	}

	src.outgoing, src.incoming, src.locations, src.aliases = nil, nil, nil, nil
	src.removed = true
	b.logger.Debug("region merged", "from", src.name, "into", dst.name)
}

func (b *Builder) String() string {
	live := 0
	for _, r := range b.regions {
		if !r.removed {
			live++
		}
	}
	return fmt.Sprintf("builder(%s, %d regions, %d locations)", b.phase, live, len(b.leaves))
}

func removeInt(list []int, v int) []int {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
