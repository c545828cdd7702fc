package compiler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/registry"
)

// ErrMacrosNotExpanded is returned by Compile when macros were defined but
// ExpandMacros has not run since.
var ErrMacrosNotExpanded = errors.New("macros must be expanded before compiling")

// Preprocessor resolves macros and compiles requirement text into
// expression trees over registered terms.
type Preprocessor struct {
	registry *registry.Registry
	parser   *Parser
	resolver Resolver
	strategy ResolverStrategy
	logger   *slog.Logger

	macros   map[string]string
	expanded map[string]*Expr
	dirty    bool
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithResolver selects the variable resolution strategy (default: strict).
func WithResolver(strategy ResolverStrategy) Option {
	return func(p *Preprocessor) {
		p.strategy = strategy
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Preprocessor) {
		p.logger = logger
	}
}

// New creates a Preprocessor backed by reg.
func New(reg *registry.Registry, opts ...Option) (*Preprocessor, error) {
	if reg == nil {
		reg = registry.NewRegistry()
	}
	p := &Preprocessor{
		registry: reg,
		strategy: ResolverStrict,
		macros:   make(map[string]string),
		expanded: make(map[string]*Expr),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	parser, err := NewParser()
	if err != nil {
		return nil, err
	}
	p.parser = parser

	resolver, err := NewResolver(p.strategy, reg)
	if err != nil {
		return nil, err
	}
	p.resolver = resolver
	return p, nil
}

// Registry returns the term registry the preprocessor resolves against.
func (p *Preprocessor) Registry() *registry.Registry { return p.registry }

// RegisterTerm registers a term. Names clash with both terms and macros.
func (p *Preprocessor) RegisterTerm(name string, kind domain.TermKind) error {
	if _, isMacro := p.macros[name]; isMacro {
		return &domain.DuplicateTermError{Name: name}
	}
	if !kind.Valid() {
		return fmt.Errorf("term %q: invalid kind %q", name, kind)
	}
	_, err := p.registry.Register(name, kind)
	return err
}

// DefineMacro records a macro. It must be expanded before use.
func (p *Preprocessor) DefineMacro(name, text string) error {
	if _, exists := p.macros[name]; exists {
		return &domain.DuplicateTermError{Name: name}
	}
	if _, isTerm := p.registry.Lookup(name); isTerm {
		return &domain.DuplicateTermError{Name: name}
	}
	p.macros[name] = text
	p.dirty = true
	return nil
}

// ExpandMacros resolves every macro, including nested references, into an
// expression tree. It fails with *domain.CyclicMacroError on direct or
// indirect self-reference and with *domain.UnresolvedReferenceError when a
// macro references an unknown symbol.
func (p *Preprocessor) ExpandMacros() error {
	names := make([]string, 0, len(p.macros))
	for name := range p.macros {
		names = append(names, name)
	}
	sort.Strings(names)

	parsed := make(map[string]*exprpb.Expr, len(names))
	for _, name := range names {
		tree, err := p.parser.Parse(name, p.macros[name])
		if err != nil {
			return err
		}
		parsed[name] = tree
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(names))
	expanded := make(map[string]*Expr, len(names))
	var stack []string

	var visit func(name string) (*Expr, error)
	visit = func(name string) (*Expr, error) {
		switch state[name] {
		case done:
			return expanded[name], nil
		case visiting:
			start := 0
			for i, n := range stack {
				if n == name {
					start = i
					break
				}
			}
			path := append(append([]string{}, stack[start:]...), name)
			return nil, &domain.CyclicMacroError{Path: path}
		}

		state[name] = visiting
		stack = append(stack, name)

		conv := &converter{
			name:   name,
			text:   p.macros[name],
			kindOf: p.registry.Kind,
			resolve: func(symbol string) (*Expr, error) {
				if _, isMacro := parsed[symbol]; isMacro {
					return visit(symbol)
				}
				return p.resolveTerm(name, symbol)
			},
		}
		tree, err := conv.convert(parsed[name])
		if err != nil {
			return nil, err
		}

		stack = stack[:len(stack)-1]
		state[name] = done
		expanded[name] = tree
		return tree, nil
	}

	for _, name := range names {
		if _, err := visit(name); err != nil {
			return err
		}
	}

	p.expanded = expanded
	p.dirty = false
	p.logger.Debug("macros expanded", "count", len(expanded))
	return nil
}

// Macro returns the expansion of a macro.
func (p *Preprocessor) Macro(name string) (*Expr, bool) {
	e, ok := p.expanded[name]
	return e, ok
}

// Compile parses and resolves the requirement text of the named object.
func (p *Preprocessor) Compile(name, text string) (*Expr, error) {
	if p.dirty {
		return nil, ErrMacrosNotExpanded
	}
	if strings.TrimSpace(text) == "" {
		return nil, &SyntaxError{Name: name, Text: text, Reason: "empty logic"}
	}

	tree, err := p.parser.Parse(name, text)
	if err != nil {
		return nil, err
	}
	conv := &converter{
		name:   name,
		text:   text,
		kindOf: p.registry.Kind,
		resolve: func(symbol string) (*Expr, error) {
			if macro, ok := p.expanded[symbol]; ok {
				return macro, nil
			}
			return p.resolveTerm(name, symbol)
		},
	}
	return conv.convert(tree)
}

func (p *Preprocessor) resolveTerm(object, symbol string) (*Expr, error) {
	term, ok := p.registry.Lookup(symbol)
	if !ok && strings.HasPrefix(symbol, VariablePrefix) {
		term, ok = p.resolver.Resolve(symbol)
	}
	if !ok {
		return nil, &domain.UnresolvedReferenceError{Name: object, Symbol: symbol}
	}
	if term.Kind == domain.TermCounter {
		return Lit(domain.Compare(term.Name, ">", 0)), nil
	}
	return Term(term.Name), nil
}
