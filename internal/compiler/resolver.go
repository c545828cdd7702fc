package compiler

import (
	"fmt"
	"strings"

	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/registry"
)

// VariablePrefix marks symbols resolved by a Resolver instead of the registry.
const VariablePrefix = "$"

// ResolverStrategy is the closed set of variable resolution strategies.
type ResolverStrategy string

const (
	// ResolverStrict treats unknown variables as unresolved references.
	ResolverStrict ResolverStrategy = "strict"
	// ResolverDummy registers unknown variables as opaque bool terms. It is
	// used for saved snapshots whose original resolver is not available.
	ResolverDummy ResolverStrategy = "dummy"
)

// ParseResolverStrategy validates a configured strategy name.
func ParseResolverStrategy(raw string) (ResolverStrategy, error) {
	switch s := ResolverStrategy(strings.ToLower(strings.TrimSpace(raw))); s {
	case ResolverStrict, ResolverDummy:
		return s, nil
	case "":
		return ResolverStrict, nil
	}
	return "", fmt.Errorf("unknown resolver strategy %q (want %q or %q)", raw, ResolverStrict, ResolverDummy)
}

// Resolver resolves $-prefixed variables to terms.
type Resolver interface {
	Strategy() ResolverStrategy
	Resolve(symbol string) (domain.Term, bool)
}

// NewResolver returns the resolver implementing strategy over reg.
func NewResolver(strategy ResolverStrategy, reg *registry.Registry) (Resolver, error) {
	switch strategy {
	case ResolverStrict, "":
		return strictResolver{reg: reg}, nil
	case ResolverDummy:
		return dummyResolver{reg: reg}, nil
	}
	return nil, fmt.Errorf("unknown resolver strategy %q", strategy)
}

type strictResolver struct {
	reg *registry.Registry
}

func (strictResolver) Strategy() ResolverStrategy { return ResolverStrict }

func (r strictResolver) Resolve(symbol string) (domain.Term, bool) {
	return r.reg.Lookup(symbol)
}

type dummyResolver struct {
	reg *registry.Registry
}

func (dummyResolver) Strategy() ResolverStrategy { return ResolverDummy }

func (r dummyResolver) Resolve(symbol string) (domain.Term, bool) {
	if t, ok := r.reg.Lookup(symbol); ok {
		return t, true
	}
	t, err := r.reg.Register(symbol, domain.TermBool)
	return t, err == nil
}
