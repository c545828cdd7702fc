package compiler

import (
	"strings"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// ExprKind identifies the node type of a boolean expression tree.
type ExprKind int

const (
	ExprConst ExprKind = iota
	ExprLit
	ExprAnd
	ExprOr
	ExprNot
)

// Expr is a boolean formula over terms and the constants True/False.
// Trees are never mutated after construction, so subtrees (expanded macros)
// may be shared between expressions.
type Expr struct {
	Kind  ExprKind
	Value bool           // ExprConst
	Lit   domain.Operand // ExprLit
	Args  []*Expr        // ExprAnd, ExprOr (n-ary), ExprNot (one)
}

// Const returns the constant True or False.
func Const(v bool) *Expr { return &Expr{Kind: ExprConst, Value: v} }

// Lit wraps a single operand.
func Lit(op domain.Operand) *Expr {
	switch op.Kind {
	case domain.OperandTrue:
		return Const(true)
	case domain.OperandFalse:
		return Const(false)
	}
	return &Expr{Kind: ExprLit, Lit: op}
}

// Term is shorthand for a positive reference literal.
func Term(name string) *Expr { return Lit(domain.Ref(name)) }

// And builds a conjunction. Nested conjunctions are flattened.
func And(args ...*Expr) *Expr { return nary(ExprAnd, args) }

// Or builds a disjunction. Nested disjunctions are flattened.
func Or(args ...*Expr) *Expr { return nary(ExprOr, args) }

// Not negates e.
func Not(e *Expr) *Expr { return &Expr{Kind: ExprNot, Args: []*Expr{e}} }

func nary(kind ExprKind, args []*Expr) *Expr {
	flat := make([]*Expr, 0, len(args))
	for _, a := range args {
		if a.Kind == kind {
			flat = append(flat, a.Args...)
			continue
		}
		flat = append(flat, a)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &Expr{Kind: kind, Args: flat}
}

// Literals returns every operand in the tree in left-to-right order.
func (e *Expr) Literals() []domain.Operand {
	var out []domain.Operand
	var walk func(*Expr)
	walk = func(n *Expr) {
		if n.Kind == ExprLit {
			out = append(out, n.Lit)
			return
		}
		for _, a := range n.Args {
			walk(a)
		}
	}
	walk(e)
	return out
}

func (e *Expr) String() string {
	switch e.Kind {
	case ExprConst:
		if e.Value {
			return "true"
		}
		return "false"
	case ExprLit:
		return e.Lit.Key()
	case ExprNot:
		return "!(" + e.Args[0].String() + ")"
	}
	sep := " && "
	if e.Kind == ExprOr {
		sep = " || "
	}
	parts := make([]string, 0, len(e.Args))
	for _, a := range e.Args {
		parts = append(parts, a.String())
	}
	return "(" + strings.Join(parts, sep) + ")"
}
