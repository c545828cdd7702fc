package domain

import (
	"fmt"
	"strings"
)

// LogicHandling tags how a logic object participates in graph construction.
type LogicHandling string

const (
	// HandlingDefault objects (waypoints) define or merge Regions.
	HandlingDefault LogicHandling = "Default"
	// HandlingTransition objects define directed edges between Regions.
	HandlingTransition LogicHandling = "Transition"
	// HandlingLocation objects attach leaves to an existing Region.
	HandlingLocation LogicHandling = "Location"
)

// ParseLogicHandling accepts the handling names case-insensitively.
// An empty value is HandlingDefault.
func ParseLogicHandling(raw string) (LogicHandling, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "default", "waypoint":
		return HandlingDefault, nil
	case "transition":
		return HandlingTransition, nil
	case "location":
		return HandlingLocation, nil
	default:
		return "", fmt.Errorf("unknown logic handling %q", raw)
	}
}

// LogicObjectDefinition is a named requirement after normalization.
// It is immutable once produced; consumers copy Clauses before mutating.
type LogicObjectDefinition struct {
	Name     string        `json:"name" yaml:"name"`
	Clauses  Clauses       `json:"clauses" yaml:"clauses"`
	Handling LogicHandling `json:"handling" yaml:"handling"`
}

// Unreachable reports whether the object's only clause is the sentinel.
func (d LogicObjectDefinition) Unreachable() bool {
	return d.Clauses.IsSentinel()
}
