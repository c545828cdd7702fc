package world

import (
	"fmt"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// Phase is a step of graph construction. Phases only move forward.
type Phase int

const (
	// PhaseWaypoints accepts waypoints, which create or alias regions.
	PhaseWaypoints Phase = iota
	// PhaseTransitions accepts transitions, which add edges and may stub regions.
	PhaseTransitions
	// PhaseLocations accepts locations and the Menu rebase.
	PhaseLocations
	// PhaseFinalized is reached after Build; the builder is read-only.
	PhaseFinalized
)

// String returns the lower-case phase name used in errors and logs.
func (p Phase) String() string {
	switch p {
	case PhaseWaypoints:
		return "waypoints"
	case PhaseTransitions:
		return "transitions"
	case PhaseLocations:
		return "locations"
	case PhaseFinalized:
		return "finalized"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// PhaseError is returned when an operation belongs to a phase the builder already left.
type PhaseError struct {
	Object    string
	Current   Phase
	Requested Phase
}

// Error implements error.
func (e *PhaseError) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("%s: cannot add %s while building %s", e.Object, e.Requested, e.Current)
	}
	return fmt.Sprintf("cannot move from %s back to %s", e.Current, e.Requested)
}

// PhaseOf returns the phase in which objects with handling h are added.
func PhaseOf(h domain.LogicHandling) Phase {
	switch h {
	case domain.HandlingTransition:
		return PhaseTransitions
	case domain.HandlingLocation:
		return PhaseLocations
	}
	return PhaseWaypoints
}
