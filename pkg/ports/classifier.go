package ports

import "github.com/aretw0/regiongraph/pkg/domain"

// StateClassifier decides whether satisfying one clause of a requirement
// changes game state. The builder calls it for every clause of every
// transition and location when building; the object is state-modifying
// when any of its clauses is.
type StateClassifier interface {
	IsStateModifying(name string, clause domain.StatefulClause) bool
}

// StateClassifierFunc adapts a plain function to StateClassifier.
type StateClassifierFunc func(name string, clause domain.StatefulClause) bool

// IsStateModifying calls f.
func (f StateClassifierFunc) IsStateModifying(name string, clause domain.StatefulClause) bool {
	return f(name, clause)
}
