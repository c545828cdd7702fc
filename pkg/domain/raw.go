package domain

import "sort"

// RawTerm declares a term before any expression is compiled.
type RawTerm struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty" mapstructure:"kind"`
}

// RawLogic is an uncompiled named requirement.
type RawLogic struct {
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
	Logic string `json:"logic" yaml:"logic" mapstructure:"logic"`
	// Stateless waypoints behave like collectible events: they are attached
	// as Locations instead of defining Regions.
	Stateless bool `json:"stateless,omitempty" yaml:"stateless,omitempty" mapstructure:"stateless"`
}

// RawDefinitions is everything the live source needs, fully materialized.
type RawDefinitions struct {
	Terms       []RawTerm         `json:"terms" yaml:"terms"`
	Macros      map[string]string `json:"macros" yaml:"macros"`
	Waypoints   []RawLogic        `json:"waypoints" yaml:"waypoints"`
	Transitions []RawLogic        `json:"transitions" yaml:"transitions"`
	Locations   []RawLogic        `json:"locations" yaml:"locations"`
}

// MacroNames returns macro names in lexical order.
func (d *RawDefinitions) MacroNames() []string {
	names := make([]string, 0, len(d.Macros))
	for name := range d.Macros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge appends other into d. Macros in other override d.
func (d *RawDefinitions) Merge(other *RawDefinitions) {
	if other == nil {
		return
	}
	d.Terms = append(d.Terms, other.Terms...)
	if len(other.Macros) > 0 && d.Macros == nil {
		d.Macros = make(map[string]string, len(other.Macros))
	}
	for k, v := range other.Macros {
		d.Macros[k] = v
	}
	d.Waypoints = append(d.Waypoints, other.Waypoints...)
	d.Transitions = append(d.Transitions, other.Transitions...)
	d.Locations = append(d.Locations, other.Locations...)
}
