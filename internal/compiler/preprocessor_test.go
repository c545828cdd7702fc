package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/regiongraph/internal/compiler"
	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/registry"
)

func newPreprocessor(t *testing.T, opts ...compiler.Option) *compiler.Preprocessor {
	t.Helper()
	p, err := compiler.New(registry.NewRegistry(), opts...)
	require.NoError(t, err)

	terms := map[string]domain.TermKind{
		"A":    domain.TermBool,
		"B":    domain.TermBool,
		"C":    domain.TermBool,
		"GEO":  domain.TermCounter,
		"Town": domain.TermState,
	}
	for _, name := range []string{"A", "B", "C", "GEO", "Town"} {
		require.NoError(t, p.RegisterTerm(name, terms[name]))
	}
	return p
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"And Or Not", "A && (B || !C)", "(A && (B || !(C)))"},
		{"Flattened And", "A && B && C", "(A && B && C)"},
		{"Constants", "true || false", "(true || false)"},
		{"Counter Comparison", "GEO > 200", "GEO>200"},
		{"Constant On The Left", "200 <= GEO", "GEO>=200"},
		{"Bare Counter Means Positive", "GEO", "GEO>0"},
		{"State Term", "Town && A", "(Town && A)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPreprocessor(t)
			require.NoError(t, p.ExpandMacros())

			expr, err := p.Compile(tt.name, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.String())
		})
	}
}

func TestCompile_QualifiedNames(t *testing.T) {
	p := newPreprocessor(t)
	require.NoError(t, p.RegisterTerm("Crossroads.left1", domain.TermBool))
	require.NoError(t, p.ExpandMacros())

	expr, err := p.Compile("door", "Crossroads.left1 && A")
	require.NoError(t, err)
	assert.Equal(t, "(Crossroads.left1 && A)", expr.String())
}

func TestCompile_UnresolvedReference(t *testing.T) {
	p := newPreprocessor(t)
	require.NoError(t, p.ExpandMacros())

	_, err := p.Compile("Geo_Rock", "A && MISSING")
	var unresolved *domain.UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "Geo_Rock", unresolved.Name)
	assert.Equal(t, "MISSING", unresolved.Symbol)
}

func TestCompile_UnsupportedSyntax(t *testing.T) {
	p := newPreprocessor(t)
	require.NoError(t, p.ExpandMacros())

	for _, text := range []string{`"a" == "b"`, `size(A)`, `A > 3`, `GEO > B`, `A &&`} {
		_, err := p.Compile("bad", text)
		var syntaxErr *compiler.SyntaxError
		assert.ErrorAs(t, err, &syntaxErr, text)
	}
}

func TestMacros_Nested(t *testing.T) {
	p := newPreprocessor(t)
	require.NoError(t, p.DefineMacro("OUTER", "A && INNER"))
	require.NoError(t, p.DefineMacro("INNER", "B || RICH"))
	require.NoError(t, p.DefineMacro("RICH", "GEO >= 500"))
	require.NoError(t, p.ExpandMacros())

	expr, err := p.Compile("shop", "OUTER && C")
	require.NoError(t, err)
	assert.Equal(t, "(A && (B || GEO>=500) && C)", expr.String())
}

func TestMacros_MustBeExpandedFirst(t *testing.T) {
	p := newPreprocessor(t)
	require.NoError(t, p.DefineMacro("M", "A"))

	_, err := p.Compile("x", "M")
	assert.ErrorIs(t, err, compiler.ErrMacrosNotExpanded)
}

func TestMacros_Cycles(t *testing.T) {
	t.Run("Direct", func(t *testing.T) {
		p := newPreprocessor(t)
		require.NoError(t, p.DefineMacro("SELF", "A || SELF"))

		err := p.ExpandMacros()
		var cyc *domain.CyclicMacroError
		require.ErrorAs(t, err, &cyc)
		assert.Equal(t, []string{"SELF", "SELF"}, cyc.Path)
	})

	t.Run("Indirect", func(t *testing.T) {
		p := newPreprocessor(t)
		require.NoError(t, p.DefineMacro("M1", "A && M2"))
		require.NoError(t, p.DefineMacro("M2", "B || M3"))
		require.NoError(t, p.DefineMacro("M3", "M1"))

		err := p.ExpandMacros()
		var cyc *domain.CyclicMacroError
		require.ErrorAs(t, err, &cyc)
		assert.Equal(t, []string{"M1", "M2", "M3", "M1"}, cyc.Path)
	})
}

func TestMacros_NameClashes(t *testing.T) {
	p := newPreprocessor(t)
	var dup *domain.DuplicateTermError

	assert.ErrorAs(t, p.DefineMacro("A", "B"), &dup, "macro named like a term")

	require.NoError(t, p.DefineMacro("M", "B"))
	assert.ErrorAs(t, p.DefineMacro("M", "C"), &dup, "macro defined twice")
	assert.ErrorAs(t, p.RegisterTerm("M", domain.TermBool), &dup, "term named like a macro")
}

func TestResolverStrategies(t *testing.T) {
	t.Run("Strict rejects unknown variables", func(t *testing.T) {
		p := newPreprocessor(t, compiler.WithResolver(compiler.ResolverStrict))
		require.NoError(t, p.ExpandMacros())

		_, err := p.Compile("start", "$StartLocation && A")
		var unresolved *domain.UnresolvedReferenceError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "$StartLocation", unresolved.Symbol)
	})

	t.Run("Dummy registers unknown variables", func(t *testing.T) {
		p := newPreprocessor(t, compiler.WithResolver(compiler.ResolverDummy))
		require.NoError(t, p.ExpandMacros())

		expr, err := p.Compile("start", "$StartLocation && A")
		require.NoError(t, err)
		assert.Equal(t, "($StartLocation && A)", expr.String())

		kind, ok := p.Registry().Kind("$StartLocation")
		assert.True(t, ok)
		assert.Equal(t, domain.TermBool, kind)
	})

	t.Run("Parse strategy names", func(t *testing.T) {
		s, err := compiler.ParseResolverStrategy("Dummy")
		require.NoError(t, err)
		assert.Equal(t, compiler.ResolverDummy, s)

		s, err = compiler.ParseResolverStrategy("")
		require.NoError(t, err)
		assert.Equal(t, compiler.ResolverStrict, s)

		_, err = compiler.ParseResolverStrategy("RandomizerCore.Logic.VariableResolver")
		assert.Error(t, err)
	})
}
