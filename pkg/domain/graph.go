package domain

// MenuRegionName is the canonical name of the start Region after rebase.
const MenuRegionName = "Menu"

// Region is a node of the world graph: a reachability-equivalence class of
// logic objects sharing one entry requirement.
type Region struct {
	Name  string  `json:"name" yaml:"name"`
	Entry Clauses `json:"entry" yaml:"entry"`
	// Aliases lists the other logic objects merged into this Region.
	Aliases   []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Locations []string `json:"locations" yaml:"locations"`
	Outgoing  []string `json:"outgoing" yaml:"outgoing"`
	Incoming  []string `json:"incoming" yaml:"incoming"`
	// Placeholder is true for Regions only known as transition endpoints.
	Placeholder bool `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// Empty reports whether the Region holds no Locations.
func (r Region) Empty() bool { return len(r.Locations) == 0 }

// Transition is a directed edge between two Regions.
type Transition struct {
	Name           string  `json:"name" yaml:"name"`
	Source         string  `json:"source" yaml:"source"`
	Target         string  `json:"target" yaml:"target"`
	Requirement    Clauses `json:"requirement" yaml:"requirement"`
	StateModifying bool    `json:"stateModifying,omitempty" yaml:"stateModifying,omitempty"`
}

// Location is a leaf reward point attached to exactly one Region.
// Region is empty for Locations whose requirement is unsatisfiable.
type Location struct {
	Name           string  `json:"name" yaml:"name"`
	Region         string  `json:"region" yaml:"region"`
	Requirement    Clauses `json:"requirement" yaml:"requirement"`
	StateModifying bool    `json:"stateModifying,omitempty" yaml:"stateModifying,omitempty"`
}

// GraphWorldDefinition is the finalized, immutable snapshot handed to
// exporters. Every sequence is in first-seen order.
type GraphWorldDefinition struct {
	Regions     []Region     `json:"regions" yaml:"regions"`
	Transitions []Transition `json:"transitions" yaml:"transitions"`
	Locations   []Location   `json:"locations" yaml:"locations"`
}

// GraphStats summarizes a finalized graph.
type GraphStats struct {
	Regions      int `json:"regions"`
	EmptyRegions int `json:"empty_regions"`
	Locations    int `json:"locations"`
	Transitions  int `json:"transitions"`
}

// Stats counts regions, empty regions, locations and transitions.
func (g *GraphWorldDefinition) Stats() GraphStats {
	stats := GraphStats{
		Regions:     len(g.Regions),
		Locations:   len(g.Locations),
		Transitions: len(g.Transitions),
	}
	for _, r := range g.Regions {
		if r.Empty() {
			stats.EmptyRegions++
		}
	}
	return stats
}

// Region looks up a region by name.
func (g *GraphWorldDefinition) Region(name string) (Region, bool) {
	for _, r := range g.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// GraphNode is a Region as seen by visualization tools.
type GraphNode struct {
	Name        string
	Locations   int
	Placeholder bool
	Start       bool
}

// GraphEdge is a Transition as seen by visualization tools.
type GraphEdge struct {
	Name  string
	From  string
	To    string
	Label string
}

// GraphView is a read-only copy of the current topology.
type GraphView struct {
	Nodes []GraphNode
	Edges []GraphEdge
}
