package dnf

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/regiongraph/internal/compiler"
	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/ports"
)

// DefaultMaxClauses bounds the clause count of a single distribution.
const DefaultMaxClauses = 1 << 16

var (
	// ErrClauseLimit is returned when distributing AND over OR would exceed the configured clause count.
	ErrClauseLimit = errors.New("dnf clause limit exceeded")

	// ErrNotEquivalent is returned in verify mode when the produced clauses do not match the expression.
	ErrNotEquivalent = errors.New("dnf is not equivalent to its expression")
)

// KindLookup resolves term kinds. *registry.Registry implements it.
type KindLookup interface {
	Kind(name string) (domain.TermKind, bool)
}

// Input is what a logic object offers for normalization: either an
// expression tree or a previously computed clause list.
type Input struct {
	Expr        *compiler.Expr
	Precomputed domain.Clauses
	// Source is the requirement text. Together with the expanded expression
	// it keys the clause cache.
	Source string
}

// Normalizer turns expressions into deterministic DNF clause lists.
type Normalizer struct {
	kinds      KindLookup
	absorption bool
	verify     bool
	maxClauses int
	cache      ports.ClauseCache
	logger     *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithAbsorption drops clauses that are strict supersets of another clause.
func WithAbsorption() Option {
	return func(n *Normalizer) { n.absorption = true }
}

// WithMaxClauses overrides DefaultMaxClauses.
func WithMaxClauses(limit int) Option {
	return func(n *Normalizer) {
		if limit > 0 {
			n.maxClauses = limit
		}
	}
}

// WithCache stores computed clause lists in cache and reuses them.
func WithCache(cache ports.ClauseCache) Option {
	return func(n *Normalizer) { n.cache = cache }
}

// WithVerify checks every computed result with a SAT solver.
func WithVerify() Option {
	return func(n *Normalizer) { n.verify = true }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) { n.logger = logger }
}

// New creates a Normalizer that flags state clauses using kinds.
func New(kinds KindLookup, opts ...Option) *Normalizer {
	n := &Normalizer{
		kinds:      kinds,
		maxClauses: DefaultMaxClauses,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return n
}

// Normalize returns the clause list of the named object.
func (n *Normalizer) Normalize(ctx context.Context, name string, in Input) (domain.Clauses, error) {
	if in.Precomputed != nil {
		ops := make([][]domain.Operand, 0, len(in.Precomputed))
		for _, c := range in.Precomputed {
			if cleaned, ok := cleanClause(c.Operands); ok {
				ops = append(ops, cleaned)
			}
		}
		return n.finish(ops), nil
	}
	if in.Expr == nil {
		return nil, fmt.Errorf("%s: no expression or precomputed clauses", name)
	}

	key := cacheKey(name, in)
	if n.cache != nil {
		cached, err := n.cache.Get(ctx, key)
		switch {
		case err == nil:
			n.logger.Debug("dnf cache hit", "object", name)
			return n.flagState(cached), nil
		case !errors.Is(err, domain.ErrCacheMiss):
			n.logger.Warn("dnf cache read failed", "object", name, "err", err)
		}
	}

	n.logger.Debug("computing dnf", "object", name)
	raw, err := n.distribute(toNNF(in.Expr, false))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	clauses := n.finish(raw)

	if n.verify && !Equivalent(in.Expr, clauses) {
		return nil, fmt.Errorf("%s: %w: %s", name, ErrNotEquivalent, in.Expr)
	}

	if n.cache != nil {
		if err := n.cache.Put(ctx, key, clauses); err != nil {
			n.logger.Warn("dnf cache write failed", "object", name, "err", err)
		}
	}
	return clauses, nil
}

// toNNF pushes negation down to literals and constants.
func toNNF(e *compiler.Expr, negate bool) *compiler.Expr {
	switch e.Kind {
	case compiler.ExprConst:
		return compiler.Const(e.Value != negate)
	case compiler.ExprLit:
		if negate {
			return compiler.Lit(e.Lit.Negate())
		}
		return e
	case compiler.ExprNot:
		return toNNF(e.Args[0], !negate)
	}

	args := make([]*compiler.Expr, 0, len(e.Args))
	for _, a := range e.Args {
		args = append(args, toNNF(a, negate))
	}
	isAnd := e.Kind == compiler.ExprAnd
	if negate {
		isAnd = !isAnd
	}
	if isAnd {
		return compiler.And(args...)
	}
	return compiler.Or(args...)
}

// distribute expands an NNF tree into clauses in left-to-right discovery
// order. Contradictory clauses are dropped as soon as they appear.
func (n *Normalizer) distribute(e *compiler.Expr) ([][]domain.Operand, error) {
	switch e.Kind {
	case compiler.ExprConst:
		if e.Value {
			return [][]domain.Operand{{}}, nil
		}
		return nil, nil

	case compiler.ExprLit:
		if cleaned, ok := cleanClause([]domain.Operand{e.Lit}); ok {
			return [][]domain.Operand{cleaned}, nil
		}
		return nil, nil

	case compiler.ExprOr:
		var out [][]domain.Operand
		for _, a := range e.Args {
			sub, err := n.distribute(a)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			if len(out) > n.maxClauses {
				return nil, fmt.Errorf("%w (%d)", ErrClauseLimit, n.maxClauses)
			}
		}
		return out, nil

	case compiler.ExprAnd:
		acc := [][]domain.Operand{{}}
		for _, a := range e.Args {
			sub, err := n.distribute(a)
			if err != nil {
				return nil, err
			}
			next := make([][]domain.Operand, 0, len(acc)*len(sub))
			for _, left := range acc {
				for _, right := range sub {
					joined := make([]domain.Operand, 0, len(left)+len(right))
					joined = append(append(joined, left...), right...)
					if cleaned, ok := cleanClause(joined); ok {
						next = append(next, cleaned)
					}
				}
				if len(next) > n.maxClauses {
					return nil, fmt.Errorf("%w (%d)", ErrClauseLimit, n.maxClauses)
				}
			}
			acc = next
			if len(acc) == 0 {
				return nil, nil
			}
		}
		return acc, nil
	}

	return nil, fmt.Errorf("unexpected %v node after negation push-down", e.Kind)
}

// cleanClause strips TRUE and duplicate operands. It reports false when the
// clause can never hold (FALSE, or a literal next to its complement).
func cleanClause(ops []domain.Operand) ([]domain.Operand, bool) {
	seen := make(map[string]struct{}, len(ops))
	out := make([]domain.Operand, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case domain.OperandTrue:
			continue
		case domain.OperandFalse:
			return nil, false
		}
		key := op.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		if _, clash := seen[op.Negate().Key()]; clash {
			return nil, false
		}
		seen[key] = struct{}{}
		out = append(out, op)
	}
	return out, true
}

// finish dedupes clauses, applies absorption when enabled and sets state
// flags. An empty result is the sentinel; any operand-free clause makes the
// whole list the tautology.
func (n *Normalizer) finish(raw [][]domain.Operand) domain.Clauses {
	seen := make(map[string]struct{}, len(raw))
	clauses := make(domain.Clauses, 0, len(raw))
	for _, ops := range raw {
		if len(ops) == 0 {
			return n.flagState(domain.Tautology())
		}
		c := domain.StatefulClause{Operands: ops}
		id := strings.Join(c.Keys(), "\x00")
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		clauses = append(clauses, c)
	}

	if n.absorption {
		clauses = absorb(clauses)
	}
	if len(clauses) == 0 {
		return domain.SentinelFalse()
	}
	return n.flagState(clauses)
}

func (n *Normalizer) flagState(clauses domain.Clauses) domain.Clauses {
	for i := range clauses {
		clauses[i].ReferencesState = false
		if n.kinds == nil {
			continue
		}
		for _, op := range clauses[i].Operands {
			if op.IsConst() {
				continue
			}
			if kind, ok := n.kinds.Kind(op.Term); ok && kind == domain.TermState {
				clauses[i].ReferencesState = true
				break
			}
		}
	}
	return clauses
}

// absorb removes every clause whose operand set strictly contains the
// operand set of another clause. Survivors keep their order.
func absorb(clauses domain.Clauses) domain.Clauses {
	sets := make([]map[string]struct{}, len(clauses))
	for i, c := range clauses {
		sets[i] = make(map[string]struct{}, len(c.Operands))
		for _, op := range c.Operands {
			sets[i][op.Key()] = struct{}{}
		}
	}

	out := make(domain.Clauses, 0, len(clauses))
	for i, c := range clauses {
		absorbed := false
		for j := range clauses {
			if i != j && len(sets[j]) < len(sets[i]) && subset(sets[j], sets[i]) {
				absorbed = true
				break
			}
		}
		if !absorbed {
			out = append(out, c)
		}
	}
	return out
}

func subset(small, big map[string]struct{}) bool {
	for k := range small {
		if _, ok := big[k]; !ok {
			return false
		}
	}
	return true
}

func cacheKey(name string, in Input) string {
	sum := sha256.Sum256([]byte(in.Source + "\x00" + in.Expr.String()))
	return "dnf:" + name + ":" + hex.EncodeToString(sum[:8])
}
