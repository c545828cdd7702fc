package export

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// DefaultPackage is the package clause of generated files.
const DefaultPackage = "worlddata"

// Go writes the graph as a gofmt-ed Go source file declaring one variable
// named after the ref name.
type Go struct {
	// Package overrides DefaultPackage.
	Package string
}

// Filename implements ports.Exporter.
func (Go) Filename(refName string) string {
	return strings.ToLower(refName) + "_graph.go"
}

// Export implements ports.Exporter. refName must be a valid Go identifier.
func (e Go) Export(ctx context.Context, w io.Writer, refName string, g *domain.GraphWorldDefinition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !token.IsIdentifier(refName) {
		return fmt.Errorf("ref name %q is not a valid Go identifier", refName)
	}
	pkg := e.Package
	if pkg == "" {
		pkg = DefaultPackage
	}

	var buf bytes.Buffer
	err := goTemplate.Execute(&buf, struct {
		Package string
		RefName string
		World   *domain.GraphWorldDefinition
	}{pkg, refName, g})
	if err != nil {
		return fmt.Errorf("failed to render go literal: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("generated go literal does not parse: %w", err)
	}
	_, err = w.Write(src)
	return err
}

var goTemplate = template.Must(template.New("world").Funcs(template.FuncMap{
	"q":       strconv.Quote,
	"strings": goStrings,
	"clauses": goClauses,
}).Parse(`// Code generated by regiongraph. DO NOT EDIT.

package {{.Package}}

import "github.com/aretw0/regiongraph/pkg/domain"

// {{.RefName}} is the finalized region graph.
var {{.RefName}} = &domain.GraphWorldDefinition{
	Regions: []domain.Region{
{{- range .World.Regions}}
		{
			Name: {{q .Name}},
			Entry: {{clauses .Entry}},
			{{- if .Aliases}}
			Aliases: {{strings .Aliases}},
			{{- end}}
			Locations: {{strings .Locations}},
			Outgoing: {{strings .Outgoing}},
			Incoming: {{strings .Incoming}},
			{{- if .Placeholder}}
			Placeholder: true,
			{{- end}}
		},
{{- end}}
	},
	Transitions: []domain.Transition{
{{- range .World.Transitions}}
		{
			Name: {{q .Name}},
			Source: {{q .Source}},
			Target: {{q .Target}},
			Requirement: {{clauses .Requirement}},
			{{- if .StateModifying}}
			StateModifying: true,
			{{- end}}
		},
{{- end}}
	},
	Locations: []domain.Location{
{{- range .World.Locations}}
		{
			Name: {{q .Name}},
			Region: {{q .Region}},
			Requirement: {{clauses .Requirement}},
			{{- if .StateModifying}}
			StateModifying: true,
			{{- end}}
		},
{{- end}}
	},
}
`))

func goStrings(list []string) string {
	if len(list) == 0 {
		return "[]string{}"
	}
	parts := make([]string, 0, len(list))
	for _, s := range list {
		parts = append(parts, strconv.Quote(s))
	}
	return "[]string{" + strings.Join(parts, ", ") + "}"
}

func goClauses(cs domain.Clauses) string {
	var sb strings.Builder
	sb.WriteString("domain.Clauses{")
	for i, c := range cs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("{Operands: []domain.Operand{")
		for j, op := range c.Operands {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(goOperand(op))
		}
		sb.WriteString("}")
		if c.ReferencesState {
			sb.WriteString(", ReferencesState: true")
		}
		sb.WriteString("}")
	}
	sb.WriteString("}")
	return sb.String()
}

func goOperand(op domain.Operand) string {
	switch op.Kind {
	case domain.OperandTrue:
		return "domain.True()"
	case domain.OperandFalse:
		return "domain.False()"
	case domain.OperandCompare:
		return fmt.Sprintf("domain.Compare(%s, %s, %d)", strconv.Quote(op.Term), strconv.Quote(op.Op), op.Value)
	}
	if op.Negated {
		return fmt.Sprintf("domain.Ref(%s).Negate()", strconv.Quote(op.Term))
	}
	return fmt.Sprintf("domain.Ref(%s)", strconv.Quote(op.Term))
}
