// Package export writes finalized region graphs in the formats consumed
// downstream: a JSON document, a generated Go literal and a Mermaid diagram.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/regiongraph/internal/presentation/graph"
	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/ports"
	"github.com/aretw0/regiongraph/pkg/world"
)

// Format names accepted by ByName.
const (
	FormatJSON    = "json"
	FormatGo      = "go"
	FormatMermaid = "mermaid"
)

// Formats lists every supported format.
func Formats() []string {
	return []string{FormatJSON, FormatGo, FormatMermaid}
}

// ByName returns the exporter for format.
func ByName(format string) (ports.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return JSON{}, nil
	case FormatGo:
		return Go{}, nil
	case FormatMermaid:
		return Mermaid{}, nil
	}
	known := Formats()
	sort.Strings(known)
	return nil, fmt.Errorf("unknown export format %q (want one of %s)", format, strings.Join(known, ", "))
}

// JSON writes the graph as an indented JSON document.
type JSON struct{}

// Filename implements ports.Exporter.
func (JSON) Filename(refName string) string { return refName + ".json" }

// Export implements ports.Exporter.
func (JSON) Export(ctx context.Context, w io.Writer, _ string, g *domain.GraphWorldDefinition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// Mermaid writes the graph as a Mermaid flowchart.
type Mermaid struct {
	// Kept regions are highlighted.
	Kept []string
}

// Filename implements ports.Exporter.
func (Mermaid) Filename(refName string) string { return refName + ".mmd" }

// Export implements ports.Exporter.
func (m Mermaid) Export(ctx context.Context, w io.Writer, _ string, g *domain.GraphWorldDefinition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var overlay *graph.GraphOverlay
	if len(m.Kept) > 0 {
		overlay = &graph.GraphOverlay{Kept: m.Kept}
	}
	_, err := io.WriteString(w, graph.GenerateMermaid(world.ViewOf(g), overlay))
	return err
}
