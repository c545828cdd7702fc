package dnf

import (
	"github.com/crillab/gophersat/bf"

	"github.com/aretw0/regiongraph/internal/compiler"
	"github.com/aretw0/regiongraph/pkg/domain"
)

// Equivalent reports whether clauses and e accept exactly the same
// assignments. Comparisons are treated as opaque propositions, so
// GEO>5 and GEO<=5 are complements but GEO>5 and GEO>4 are unrelated.
func Equivalent(e *compiler.Expr, clauses domain.Clauses) bool {
	return bf.Solve(bf.Xor(exprFormula(e), clausesFormula(clauses))) == nil
}

func exprFormula(e *compiler.Expr) bf.Formula {
	switch e.Kind {
	case compiler.ExprConst:
		if e.Value {
			return bf.True
		}
		return bf.False
	case compiler.ExprLit:
		return operandFormula(e.Lit)
	case compiler.ExprNot:
		return bf.Not(exprFormula(e.Args[0]))
	}

	subs := make([]bf.Formula, 0, len(e.Args))
	for _, a := range e.Args {
		subs = append(subs, exprFormula(a))
	}
	if e.Kind == compiler.ExprAnd {
		return bf.And(subs...)
	}
	return bf.Or(subs...)
}

func clausesFormula(clauses domain.Clauses) bf.Formula {
	if len(clauses) == 0 {
		return bf.False
	}
	disjuncts := make([]bf.Formula, 0, len(clauses))
	for _, c := range clauses {
		if len(c.Operands) == 0 {
			return bf.True
		}
		conj := make([]bf.Formula, 0, len(c.Operands))
		for _, op := range c.Operands {
			conj = append(conj, operandFormula(op))
		}
		disjuncts = append(disjuncts, bf.And(conj...))
	}
	return bf.Or(disjuncts...)
}

// complementOps maps each comparison to its positive counterpart.
var complementOps = map[string]string{
	"<=": ">",
	"<":  ">=",
	"!=": "==",
}

func operandFormula(op domain.Operand) bf.Formula {
	switch op.Kind {
	case domain.OperandTrue:
		return bf.True
	case domain.OperandFalse:
		return bf.False
	case domain.OperandCompare:
		if positive, ok := complementOps[op.Op]; ok {
			return bf.Not(bf.Var("t_" + domain.Compare(op.Term, positive, op.Value).Key()))
		}
		return bf.Var("t_" + op.Key())
	}
	v := bf.Var("t_" + op.Term)
	if op.Negated {
		return bf.Not(v)
	}
	return v
}
