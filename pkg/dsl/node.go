package dsl

import "github.com/aretw0/regiongraph/pkg/domain"

type objectKind string

const (
	kindWaypoint   objectKind = "waypoint"
	kindTransition objectKind = "transition"
	kindLocation   objectKind = "location"
)

// TermBuilder configures a declared term.
type TermBuilder struct {
	term domain.RawTerm
}

// Kind sets the term kind.
func (t *TermBuilder) Kind(kind domain.TermKind) *TermBuilder {
	t.term.Kind = string(kind)
	return t
}

// ObjectBuilder provides a fluent API for configuring a logic object.
type ObjectBuilder struct {
	kind  objectKind
	logic domain.RawLogic
}

// Requires replaces the requirement expression.
func (o *ObjectBuilder) Requires(expr string) *ObjectBuilder {
	o.logic.Logic = expr
	return o
}

// Or adds an alternative way to satisfy the requirement.
func (o *ObjectBuilder) Or(expr string) *ObjectBuilder {
	if o.logic.Logic == "" {
		o.logic.Logic = expr
		return o
	}
	o.logic.Logic = "(" + o.logic.Logic + ") || (" + expr + ")"
	return o
}

// Stateless turns a waypoint into a collectible event attached as a
// location. It has no effect on other objects.
func (o *ObjectBuilder) Stateless() *ObjectBuilder {
	if o.kind == kindWaypoint {
		o.logic.Stateless = true
	}
	return o
}

// Build returns the underlying raw logic.
func (o *ObjectBuilder) Build() domain.RawLogic {
	return o.logic
}
