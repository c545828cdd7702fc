package dnf_test

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/aretw0/regiongraph/internal/compiler"
	"github.com/aretw0/regiongraph/internal/dnf"
	"github.com/aretw0/regiongraph/pkg/domain"
)

var propertyLiterals = []domain.Operand{
	domain.Ref("A"),
	domain.Ref("B"),
	domain.Ref("C"),
	domain.Ref("Town"),
	domain.Compare("GEO", ">", 2),
	domain.Compare("GEO", "<=", 2),
}

// randomExpr builds a bounded random formula so distribution stays small.
func randomExpr(r *rand.Rand, depth int) *compiler.Expr {
	if depth == 0 || r.Intn(4) == 0 {
		switch r.Intn(10) {
		case 0:
			return compiler.Const(r.Intn(2) == 0)
		default:
			return compiler.Lit(propertyLiterals[r.Intn(len(propertyLiterals))])
		}
	}
	switch r.Intn(3) {
	case 0:
		return compiler.Not(randomExpr(r, depth-1))
	case 1:
		return compiler.And(randomExpr(r, depth-1), randomExpr(r, depth-1))
	default:
		return compiler.Or(randomExpr(r, depth-1), randomExpr(r, depth-1))
	}
}

func normalizeSeed(t *testing.T, n *dnf.Normalizer, seed int64) (*compiler.Expr, domain.Clauses, error) {
	t.Helper()
	e := randomExpr(rand.New(rand.NewSource(seed)), 4)
	cs, err := n.Normalize(context.Background(), "prop", dnf.Input{Expr: e})
	return e, cs, err
}

func TestNormalizerProperties(t *testing.T) {
	reg := testRegistry(t)
	plain := dnf.New(reg)
	absorbing := dnf.New(reg, dnf.WithAbsorption())

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("normalization is sound", prop.ForAll(
		func(seed int64) bool {
			e, cs, err := normalizeSeed(t, plain, seed)
			return err == nil && dnf.Equivalent(e, cs)
		},
		gen.Int64(),
	))

	properties.Property("absorption stays sound", prop.ForAll(
		func(seed int64) bool {
			e, cs, err := normalizeSeed(t, absorbing, seed)
			return err == nil && dnf.Equivalent(e, cs)
		},
		gen.Int64(),
	))

	properties.Property("normalization is idempotent", prop.ForAll(
		func(seed int64) bool {
			_, cs, err := normalizeSeed(t, plain, seed)
			if err != nil {
				return false
			}
			again, err := plain.Normalize(context.Background(), "prop", dnf.Input{Precomputed: cs})
			if err != nil || len(again) != len(cs) {
				return false
			}
			for i := range cs {
				if strings.Join(again[i].Keys(), ",") != strings.Join(cs[i].Keys(), ",") {
					return false
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.Property("clauses are hygienic", prop.ForAll(
		func(seed int64) bool {
			_, cs, err := normalizeSeed(t, plain, seed)
			if err != nil {
				return false
			}
			if cs.IsSentinel() {
				return true
			}
			seenClauses := map[string]bool{}
			for _, c := range cs {
				if len(c.Operands) == 0 && len(cs) != 1 {
					return false
				}
				id := strings.Join(c.Keys(), ",")
				if seenClauses[id] {
					return false
				}
				seenClauses[id] = true

				ops := map[string]bool{}
				for _, op := range c.Operands {
					if op.IsConst() || ops[op.Key()] || ops[op.Negate().Key()] {
						return false
					}
					ops[op.Key()] = true
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.Property("state flag follows state operands", prop.ForAll(
		func(seed int64) bool {
			_, cs, err := normalizeSeed(t, plain, seed)
			if err != nil {
				return false
			}
			for _, c := range cs {
				if c.ReferencesState != (c.Has("Town") || c.Has("!Town")) {
					return false
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
