package domain

import "fmt"

// TermKind classifies a symbolic variable.
type TermKind string

const (
	// TermBool is held or not held (items, flags, reached waypoints).
	TermBool TermKind = "bool"
	// TermCounter carries an integer amount and is compared against constants.
	TermCounter TermKind = "counter"
	// TermState marks terms whose acquisition changes the player's state.
	TermState TermKind = "state"
)

// Valid reports whether k is one of the known kinds.
func (k TermKind) Valid() bool {
	switch k {
	case TermBool, TermCounter, TermState:
		return true
	}
	return false
}

// ParseTermKind converts a raw kind string. An empty string means TermBool.
func ParseTermKind(raw string) (TermKind, error) {
	if raw == "" {
		return TermBool, nil
	}
	k := TermKind(raw)
	if !k.Valid() {
		return "", fmt.Errorf("unknown term kind %q", raw)
	}
	return k, nil
}

// Term is a named symbolic variable referenced by requirement expressions.
// It is immutable once registered.
type Term struct {
	Name string   `json:"name" yaml:"name" mapstructure:"name"`
	Kind TermKind `json:"kind" yaml:"kind" mapstructure:"kind"`
}
