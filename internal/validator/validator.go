// Package validator reports structural problems in normalized logic objects
// and finalized region graphs without failing on the first one.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// Finding kinds.
const (
	KindObject     = "object"
	KindRegion     = "region"
	KindTransition = "transition"
	KindLocation   = "location"
)

// Finding is a single problem attached to a named element.
type Finding struct {
	Kind   string
	Name   string
	Reason string
}

func (f *Finding) Error() string {
	return fmt.Sprintf("%s %q: %s", f.Kind, f.Name, f.Reason)
}

// AggregateError carries every finding of a validation pass.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Findings returns the findings carried by err, or nil.
func Findings(err error) []*Finding {
	var aggr *AggregateError
	if !errors.As(err, &aggr) {
		return nil
	}
	out := make([]*Finding, 0, len(aggr.Errors))
	for _, e := range aggr.Errors {
		var f *Finding
		if errors.As(e, &f) {
			out = append(out, f)
		}
	}
	return out
}

// CheckObjects reports objects whose requirement can never be met.
func CheckObjects(objs []domain.LogicObjectDefinition) []error {
	var errs []error
	for _, o := range objs {
		if o.Unreachable() {
			errs = append(errs, &Finding{Kind: KindObject, Name: o.Name, Reason: "requirement is unsatisfiable"})
		}
	}
	return errs
}

// CheckGraph crawls g from the Menu region over transitions and reports
// regions it never visits, transitions with unknown endpoints and locations
// attached to no region. Requirements are ignored: reachability here is
// topological only.
func CheckGraph(g *domain.GraphWorldDefinition) []error {
	var errs []error
	known := make(map[string]struct{}, len(g.Regions))
	for _, r := range g.Regions {
		known[r.Name] = struct{}{}
	}

	out := make(map[string][]string)
	for _, t := range g.Transitions {
		_, srcOK := known[t.Source]
		_, dstOK := known[t.Target]
		switch {
		case !srcOK:
			errs = append(errs, &Finding{Kind: KindTransition, Name: t.Name, Reason: fmt.Sprintf("unknown source region %q", t.Source)})
		case !dstOK:
			errs = append(errs, &Finding{Kind: KindTransition, Name: t.Name, Reason: fmt.Sprintf("unknown target region %q", t.Target)})
		default:
			out[t.Source] = append(out[t.Source], t.Target)
		}
	}

	if _, ok := known[domain.MenuRegionName]; !ok {
		errs = append(errs, &Finding{Kind: KindRegion, Name: domain.MenuRegionName, Reason: "start region missing"})
		return errs
	}

	visited := map[string]bool{domain.MenuRegionName: true}
	queue := []string{domain.MenuRegionName}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range out[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	for _, r := range g.Regions {
		if !visited[r.Name] {
			errs = append(errs, &Finding{Kind: KindRegion, Name: r.Name, Reason: "not reachable from " + domain.MenuRegionName})
		}
	}
	for _, l := range g.Locations {
		if l.Region == "" {
			errs = append(errs, &Finding{Kind: KindLocation, Name: l.Name, Reason: "attached to no region"})
		}
	}
	return errs
}

// Validate runs CheckObjects and, when g is non-nil, CheckGraph. It returns
// nil or an *AggregateError.
func Validate(objs []domain.LogicObjectDefinition, g *domain.GraphWorldDefinition) error {
	errs := CheckObjects(objs)
	if g != nil {
		errs = append(errs, CheckGraph(g)...)
	}
	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: errs}
}
