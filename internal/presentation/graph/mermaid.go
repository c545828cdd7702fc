package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// GraphOverlay marks regions to highlight on the graph.
type GraphOverlay struct {
	// Kept lists regions retained by the keep-set even though they are empty.
	Kept []string
	// Focus is a single region to emphasize.
	Focus string
}

// maxLabel bounds edge labels; long requirements make diagrams unreadable.
const maxLabel = 60

// GenerateMermaid produces a Mermaid flowchart from a region graph view.
// It applies semantic styling:
// - Start region (Menu): ((Circle))
// - Placeholder region: [/Parallelogram/]
// - Default: [Rectangle], annotated with its location count
// It also applies overlay styles (Kept/Focus) if provided.
func GenerateMermaid(view domain.GraphView, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range view.Nodes {
		safeID := sanitizeMermaidID(node.Name)

		opener, closer := "[", "]"
		switch {
		case node.Start:
			opener, closer = "((", "))"
		case node.Placeholder:
			opener, closer = "[/", "/]"
		}

		name := strings.ReplaceAll(node.Name, "\"", "'")
		if node.Locations > 0 {
			sb.WriteString(fmt.Sprintf("    %s%s\"%s <br/> 📍 %d\"%s\n", safeID, opener, name, node.Locations, closer))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, name, closer))
	}

	for _, e := range view.Edges {
		from, to := sanitizeMermaidID(e.From), sanitizeMermaidID(e.To)
		arrow := "-->"
		if e.Label != "" && e.Label != "TRUE" {
			label := strings.ReplaceAll(e.Label, "\"", "'")
			if len(label) > maxLabel {
				label = label[:maxLabel-3] + "..."
			}
			arrow = fmt.Sprintf("-- \"%s\" -->", label)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", from, arrow, to))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds.
		sb.WriteString("    classDef kept fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef focus fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		keptSet := make(map[string]bool)
		for _, name := range overlay.Kept {
			safeID := sanitizeMermaidID(name)
			if !keptSet[safeID] && safeID != "" {
				keptSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s kept;\n", safeID))
			}
		}
		if overlay.Focus != "" {
			sb.WriteString(fmt.Sprintf("    class %s focus;\n", sanitizeMermaidID(overlay.Focus)))
		}
	}

	return sb.String()
}

var idReplacer = strings.NewReplacer(
	".", "_", "-", "_", "/", "_", "\\", "_",
	" ", "_", "'", "_", "$", "_", "(", "_", ")", "_", "[", "_", "]", "_",
)

func sanitizeMermaidID(id string) string {
	return idReplacer.Replace(id)
}
