package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// Summary renders a run as markdown: headline counts, then one row per
// region with its location count and outgoing transitions.
func Summary(ref string, g *domain.GraphWorldDefinition) string {
	stats := g.Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", ref)
	fmt.Fprintf(&b, "- **Regions:** %d (%d empty)\n", stats.Regions, stats.EmptyRegions)
	fmt.Fprintf(&b, "- **Transitions:** %d\n", stats.Transitions)
	fmt.Fprintf(&b, "- **Locations:** %d\n\n", stats.Locations)

	if len(g.Regions) == 0 {
		return b.String()
	}
	b.WriteString("| Region | Locations | Exits |\n|---|---|---|\n")
	for _, r := range g.Regions {
		exits := make([]string, 0, len(r.Outgoing))
		for _, name := range r.Outgoing {
			exits = append(exits, strings.TrimPrefix(name, r.Name+"->"))
		}
		fmt.Fprintf(&b, "| %s | %d | %s |\n", r.Name, len(r.Locations), strings.Join(exits, ", "))
	}
	return b.String()
}

// Findings renders validation problems as a markdown list.
func Findings(title string, problems []error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", title)
	if len(problems) == 0 {
		b.WriteString("No problems found.\n")
		return b.String()
	}
	for _, p := range problems {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	return b.String()
}
