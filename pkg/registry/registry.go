package registry

import (
	"sync"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// Registry holds every named symbolic variable and its kind.
// Terms are immutable once registered. Safe for concurrent reads.
type Registry struct {
	mu    sync.RWMutex
	terms map[string]domain.Term
	order []string
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		terms: make(map[string]domain.Term),
	}
}

// Register adds a term to the registry.
// Returns *domain.DuplicateTermError if the name is already registered.
func (r *Registry) Register(name string, kind domain.TermKind) (domain.Term, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.terms[name]; exists {
		return domain.Term{}, &domain.DuplicateTermError{Name: name}
	}
	term := domain.Term{Name: name, Kind: kind}
	r.terms[name] = term
	r.order = append(r.order, name)
	return term, nil
}

// Lookup returns the term registered under name.
func (r *Registry) Lookup(name string) (domain.Term, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.terms[name]
	return t, ok
}

// Kind returns the kind of a registered term. Unknown names report false.
func (r *Registry) Kind(name string) (domain.TermKind, bool) {
	t, ok := r.Lookup(name)
	return t.Kind, ok
}

// IsState reports whether name is a registered State-kind term.
func (r *Registry) IsState(name string) bool {
	kind, ok := r.Kind(name)
	return ok && kind == domain.TermState
}

// Terms returns all terms in registration order.
func (r *Registry) Terms() []domain.Term {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Term, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.terms[name])
	}
	return out
}

// Len returns the number of registered terms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
