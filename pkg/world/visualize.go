package world

import "github.com/aretw0/regiongraph/pkg/domain"

// Visualize returns a copy of the current topology. It is valid in every
// phase and never changes builder state.
func (b *Builder) Visualize() domain.GraphView {
	view := domain.GraphView{}
	for _, r := range b.regions {
		if r.removed {
			continue
		}
		view.Nodes = append(view.Nodes, domain.GraphNode{
			Name:        r.name,
			Locations:   len(r.locations),
			Placeholder: r.placeholder,
			Start:       r.name == domain.MenuRegionName,
		})
	}
	for _, e := range b.liveEdges() {
		view.Edges = append(view.Edges, domain.GraphEdge{
			Name:  b.edgeName(e),
			From:  b.regions[e.source].name,
			To:    b.regions[e.target].name,
			Label: e.requirement.String(),
		})
	}
	return view
}

// ViewOf derives the same view from a finalized graph.
func ViewOf(world *domain.GraphWorldDefinition) domain.GraphView {
	view := domain.GraphView{}
	for _, r := range world.Regions {
		view.Nodes = append(view.Nodes, domain.GraphNode{
			Name:        r.Name,
			Locations:   len(r.Locations),
			Placeholder: r.Placeholder,
			Start:       r.Name == domain.MenuRegionName,
		})
	}
	for _, t := range world.Transitions {
		view.Edges = append(view.Edges, domain.GraphEdge{
			Name:  t.Name,
			From:  t.Source,
			To:    t.Target,
			Label: t.Requirement.String(),
		})
	}
	return view
}
