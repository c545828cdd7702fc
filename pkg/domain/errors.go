package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingData is returned when a required deserialized section is absent.
var ErrMissingData = errors.New("missing required data")

// ErrFinalized is returned when a finalized builder is mutated.
var ErrFinalized = errors.New("graph already finalized")

// ErrCacheMiss is returned by clause caches when a key is absent.
var ErrCacheMiss = errors.New("clause cache miss")

// DuplicateTermError is returned when a term or macro name is registered twice.
type DuplicateTermError struct {
	Name string
}

func (e *DuplicateTermError) Error() string {
	return fmt.Sprintf("term %q already registered", e.Name)
}

// CyclicMacroError is returned when macro expansion does not terminate.
// Path starts and ends with the same macro name.
type CyclicMacroError struct {
	Path []string
}

func (e *CyclicMacroError) Error() string {
	return fmt.Sprintf("cyclic macro expansion: %s", strings.Join(e.Path, " -> "))
}

// UnresolvedReferenceError is returned when an expression references a symbol
// that is neither a registered term nor a macro.
type UnresolvedReferenceError struct {
	Name   string
	Symbol string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s: unresolved reference %q", e.Name, e.Symbol)
}

// RebaseError is returned when no Region matches the start term.
type RebaseError struct {
	StartTerm string
}

func (e *RebaseError) Error() string {
	return fmt.Sprintf("rebase: no region is entered by start term %q", e.StartTerm)
}

// UndefinedObjectError is returned when a logic object references another
// logic object that was never defined.
type UndefinedObjectError struct {
	Name      string
	Reference string
}

func (e *UndefinedObjectError) Error() string {
	return fmt.Sprintf("%s: reference to undefined logic object %q", e.Name, e.Reference)
}
