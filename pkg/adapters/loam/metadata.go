package loam

// DefinitionMetadata is the frontmatter (or JSON/YAML body) of one raw
// definition document. It uses "mapstructure" tags to match standard
// Frontmatter/YAML keys.
type DefinitionMetadata struct {
	// Kind selects the definition type: term, macro, waypoint, transition or location.
	Kind string `json:"kind" mapstructure:"kind"`

	// Name defaults to the file name without extension.
	Name string `json:"name" mapstructure:"name"`

	// TermKind is bool, counter or state. Only read for terms.
	TermKind string `json:"term_kind" mapstructure:"term_kind"`

	// Logic is the requirement text. When empty, the document body is used,
	// so long requirements can be written as Markdown content.
	Logic string `json:"logic" mapstructure:"logic"`

	// Stateless marks waypoints that behave like locations.
	Stateless bool `json:"stateless" mapstructure:"stateless"`
}
