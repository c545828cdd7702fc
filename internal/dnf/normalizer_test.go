package dnf_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/regiongraph/internal/compiler"
	"github.com/aretw0/regiongraph/internal/dnf"
	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/registry"
)

type mapCache struct {
	data map[string]domain.Clauses
	gets int
}

func (c *mapCache) Get(_ context.Context, key string) (domain.Clauses, error) {
	c.gets++
	cs, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return cs.Clone(), nil
}

func (c *mapCache) Put(_ context.Context, key string, cs domain.Clauses) error {
	c.data[key] = cs.Clone()
	return nil
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.NewRegistry()
	for name, kind := range map[string]domain.TermKind{
		"A": domain.TermBool, "B": domain.TermBool, "C": domain.TermBool, "X": domain.TermBool,
		"GEO": domain.TermCounter, "Town": domain.TermState,
	} {
		_, err := reg.Register(name, kind)
		require.NoError(t, err)
	}
	return reg
}

func compile(t *testing.T, reg *registry.Registry, text string) *compiler.Expr {
	t.Helper()
	p, err := compiler.New(reg)
	require.NoError(t, err)
	require.NoError(t, p.ExpandMacros())
	e, err := p.Compile("test", text)
	require.NoError(t, err)
	return e
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [][]string
	}{
		{"Single Term", "A", [][]string{{"A"}}},
		{"Distribution Keeps Discovery Order", "(A || B) && (X || C)", [][]string{{"A", "X"}, {"A", "C"}, {"B", "X"}, {"B", "C"}}},
		{"De Morgan", "!(A && B)", [][]string{{"!A"}, {"!B"}}},
		{"Double Negation", "!!A", [][]string{{"A"}}},
		{"Negated Comparison Flips", "!(GEO > 200)", [][]string{{"GEO<=200"}}},
		{"Bare Counter", "GEO && A", [][]string{{"GEO>0", "A"}}},
		{"Tautology", "A || true", [][]string{{}}},
		{"Leading Tautology", "true || A", [][]string{{}}},
		{"True Constant", "true", [][]string{{}}},
		{"Tautology Inside Conjunction", "B && (A || true)", [][]string{{"B", "A"}, {"B"}}},
		{"Contradiction", "A && !A", [][]string{{"FALSE"}}},
		{"False Constant", "false", [][]string{{"FALSE"}}},
		{"Complementary Clause Dropped", "(A || B) && !A", [][]string{{"B", "!A"}}},
		{"Complementary Comparison Dropped", "GEO > 3 && !(GEO > 3)", [][]string{{"FALSE"}}},
		{"Duplicate Operands", "A && A && B", [][]string{{"A", "B"}}},
		{"Duplicate Clauses", "(A && B) || (B && A)", [][]string{{"A", "B"}}},
		{"True Stripped", "A && true", [][]string{{"A"}}},
	}

	reg := testRegistry(t)
	n := dnf.New(reg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := compile(t, reg, tt.text)
			got, err := n.Normalize(context.Background(), tt.name, dnf.Input{Expr: e, Source: tt.text})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Keys())
			assert.True(t, dnf.Equivalent(e, got), "result must be equivalent to %s", e)
		})
	}
}

func TestNormalize_ReferencesState(t *testing.T) {
	reg := testRegistry(t)
	n := dnf.New(reg)

	got, err := n.Normalize(context.Background(), "door", dnf.Input{Expr: compile(t, reg, "(Town && A) || B")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].ReferencesState)
	assert.False(t, got[1].ReferencesState)
	assert.True(t, got.ReferencesState())
}

func TestNormalize_Absorption(t *testing.T) {
	reg := testRegistry(t)
	e := compile(t, reg, "(A && B) || A || (A && C)")

	plain, err := dnf.New(reg).Normalize(context.Background(), "x", dnf.Input{Expr: e})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "B"}, {"A"}, {"A", "C"}}, plain.Keys())

	absorbed, err := dnf.New(reg, dnf.WithAbsorption()).Normalize(context.Background(), "x", dnf.Input{Expr: e})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A"}}, absorbed.Keys())
	assert.True(t, dnf.Equivalent(e, absorbed))
}

func TestNormalize_ClauseLimit(t *testing.T) {
	reg := testRegistry(t)
	e := compile(t, reg, "(A || B) && (C || X) && (GEO > 1 || GEO > 2)")

	_, err := dnf.New(reg, dnf.WithMaxClauses(4)).Normalize(context.Background(), "big", dnf.Input{Expr: e})
	assert.ErrorIs(t, err, dnf.ErrClauseLimit)

	got, err := dnf.New(reg, dnf.WithMaxClauses(8)).Normalize(context.Background(), "big", dnf.Input{Expr: e})
	require.NoError(t, err)
	assert.Len(t, got, 8)
}

func TestNormalize_Precomputed(t *testing.T) {
	reg := testRegistry(t)
	n := dnf.New(reg)

	pre, err := domain.ClausesFromKeys([][]string{{"Town", "TRUE", "Town"}, {"A", "!A"}, {"B"}, {"B"}})
	require.NoError(t, err)

	got, err := n.Normalize(context.Background(), "saved", dnf.Input{Precomputed: pre})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Town"}, {"B"}}, got.Keys())
	assert.True(t, got[0].ReferencesState)

	sentinel, err := n.Normalize(context.Background(), "never", dnf.Input{Precomputed: domain.SentinelFalse()})
	require.NoError(t, err)
	assert.True(t, sentinel.IsSentinel())
}

func TestNormalize_Cache(t *testing.T) {
	reg := testRegistry(t)
	cache := &mapCache{data: map[string]domain.Clauses{}}
	n := dnf.New(reg, dnf.WithCache(cache))
	e := compile(t, reg, "A && (B || C)")

	first, err := n.Normalize(context.Background(), "obj", dnf.Input{Expr: e, Source: "A && (B || C)"})
	require.NoError(t, err)
	require.Len(t, cache.data, 1)

	second, err := n.Normalize(context.Background(), "obj", dnf.Input{Expr: e, Source: "A && (B || C)"})
	require.NoError(t, err)
	assert.Equal(t, first.Keys(), second.Keys())
	assert.Equal(t, 2, cache.gets)
	assert.Len(t, cache.data, 1)
}

func TestNormalize_Verify(t *testing.T) {
	reg := testRegistry(t)
	n := dnf.New(reg, dnf.WithVerify())

	_, err := n.Normalize(context.Background(), "ok", dnf.Input{Expr: compile(t, reg, "!(A || (B && !C))")})
	assert.NoError(t, err)
}

func TestEquivalent_DetectsMismatch(t *testing.T) {
	reg := testRegistry(t)
	e := compile(t, reg, "A && B")

	wrong, err := domain.ClausesFromKeys([][]string{{"A"}})
	require.NoError(t, err)
	assert.False(t, dnf.Equivalent(e, wrong))
	assert.False(t, dnf.Equivalent(e, domain.SentinelFalse()))
	assert.True(t, dnf.Equivalent(compile(t, reg, "A && !A"), domain.SentinelFalse()))
	assert.True(t, dnf.Equivalent(compile(t, reg, "A || !A"), domain.Tautology()))
}
