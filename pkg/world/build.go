package world

import (
	"context"
	"strings"

	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/ports"
)

// ReferencesStateClassifier flags clauses that mention a State-kind term.
var ReferencesStateClassifier = ports.StateClassifierFunc(func(_ string, clause domain.StatefulClause) bool {
	return clause.ReferencesState
})

// classify asks c about every clause of requirement.
func classify(c ports.StateClassifier, name string, requirement domain.Clauses) bool {
	stateful := false
	for _, clause := range requirement {
		if c.IsStateModifying(name, clause) {
			stateful = true
		}
	}
	return stateful
}

// Build classifies every edge and location, prunes unused regions and returns
// the finalized snapshot. Regions named in keep and the start region survive
// pruning. The builder is finalized afterwards, even though ctx is only
// consulted before any work starts.
func (b *Builder) Build(ctx context.Context, classifier ports.StateClassifier, keep []string) (*domain.GraphWorldDefinition, error) {
	if b.phase == PhaseFinalized {
		return nil, domain.ErrFinalized
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if classifier == nil {
		classifier = ReferencesStateClassifier
	}

	for _, e := range b.liveEdges() {
		e.stateful = classify(classifier, b.edgeName(e), e.requirement)
	}
	for _, l := range b.leaves {
		l.stateful = classify(classifier, l.name, l.requirement)
	}

	kept := make(map[string]struct{}, len(keep)+1)
	for _, name := range keep {
		kept[name] = struct{}{}
	}
	kept[domain.MenuRegionName] = struct{}{}

	pruned := 0
	for _, r := range b.regions {
		if r.removed || len(r.locations) > 0 || len(r.outgoing) > 0 || len(r.incoming) > 0 {
			continue
		}
		if _, ok := kept[r.name]; ok {
			continue
		}
		r.removed = true
		pruned++
		b.logger.Debug("pruned region", "region", r.name)
	}

	world := b.snapshot()
	b.phase = PhaseFinalized
	b.logger.Debug("graph finalized", "regions", len(world.Regions), "pruned", pruned)
	return world, nil
}

func (b *Builder) liveEdges() []*edge {
	out := make([]*edge, 0, len(b.edges))
	for _, e := range b.edges {
		if !e.removed {
			out = append(out, e)
		}
	}
	return out
}

func (b *Builder) edgeName(e *edge) string {
	return b.regions[e.source].name + "->" + b.regions[e.target].name
}

// snapshot copies the current graph in first-seen order. Edges that ended
// up sharing endpoints after merges are folded into one transition.
func (b *Builder) snapshot() *domain.GraphWorldDefinition {
	world := &domain.GraphWorldDefinition{
		Regions:     []domain.Region{},
		Transitions: []domain.Transition{},
		Locations:   []domain.Location{},
	}

	folded := make(map[string]int)
	edgeNames := make(map[int]string, len(b.edges))
	for id, e := range b.edges {
		if e.removed {
			continue
		}
		name := b.edgeName(e)
		edgeNames[id] = name
		if at, ok := folded[name]; ok {
			t := &world.Transitions[at]
			t.Requirement = appendUnique(t.Requirement, e.requirement)
			t.StateModifying = t.StateModifying || e.stateful
			continue
		}
		folded[name] = len(world.Transitions)
		world.Transitions = append(world.Transitions, domain.Transition{
			Name:           name,
			Source:         b.regions[e.source].name,
			Target:         b.regions[e.target].name,
			Requirement:    e.requirement.Clone(),
			StateModifying: e.stateful,
		})
	}

	for _, r := range b.regions {
		if r.removed {
			continue
		}
		out := domain.Region{
			Name:        r.name,
			Entry:       r.entry.Clone(),
			Aliases:     append([]string(nil), r.aliases...),
			Locations:   make([]string, 0, len(r.locations)),
			Outgoing:    uniqueNames(r.outgoing, edgeNames),
			Incoming:    uniqueNames(r.incoming, edgeNames),
			Placeholder: r.placeholder,
		}
		for _, idx := range r.locations {
			out.Locations = append(out.Locations, b.leaves[idx].name)
		}
		world.Regions = append(world.Regions, out)
	}

	for _, l := range b.leaves {
		loc := domain.Location{
			Name:           l.name,
			Requirement:    l.requirement.Clone(),
			StateModifying: l.stateful,
		}
		if l.region != noRegion {
			loc.Region = b.regions[l.region].name
		}
		world.Locations = append(world.Locations, loc)
	}
	return world
}

func uniqueNames(ids []int, names map[int]string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		name := names[id]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func appendUnique(dst, src domain.Clauses) domain.Clauses {
	seen := make(map[string]struct{}, len(dst))
	for _, c := range dst {
		seen[strings.Join(c.Keys(), "\x00")] = struct{}{}
	}
	for _, c := range src {
		key := strings.Join(c.Keys(), "\x00")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		dst = append(dst, c.Clone())
	}
	return dst
}
