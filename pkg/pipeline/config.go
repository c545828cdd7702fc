package pipeline

import (
	"errors"
	"slices"
)

// JobRegions is the job that enables region extraction.
const JobRegions = "regions"

// DefaultRefName names outputs when Config.RefName is empty.
const DefaultRefName = "World"

// Raw definition formats for Config.DefinitionsFormat.
const (
	FormatFiles = "files"
	FormatHCL   = "hcl"
	FormatLoam  = "loam"
)

var (
	// ErrSkipped is returned when region extraction is not among the requested jobs.
	ErrSkipped = errors.New("region extraction not requested")
	// ErrAmbiguousSource is returned when more than one world source is configured.
	ErrAmbiguousSource = errors.New("more than one world source configured")
	// ErrNoSource is returned when no world source is configured.
	ErrNoSource = errors.New("no world source configured")
)

// Config selects the source, the start region and the outputs of a run.
type Config struct {
	// WorldDefinitionPath is a pre-built world-definition document.
	WorldDefinitionPath string `yaml:"world_definition_path"`
	// RandoContextPath is a saved logic-manager snapshot.
	RandoContextPath string `yaml:"rando_context_path"`
	// DefinitionsPath holds raw definitions compiled live.
	DefinitionsPath   string `yaml:"definitions_path"`
	DefinitionsFormat string `yaml:"definitions_format" validate:"omitempty,oneof=files hcl loam"`

	RefName                string   `yaml:"ref_name"`
	StartStateTerm         string   `yaml:"start_state_term"`
	EmptyRegionsToKeepPath string   `yaml:"empty_regions_to_keep_path"`
	Jobs                   []string `yaml:"jobs" validate:"required,min=1,dive,required"`

	// OutputDir receives exported files. Nothing is written when empty.
	OutputDir string   `yaml:"output_dir"`
	Formats   []string `yaml:"formats" validate:"dive,oneof=json go mermaid"`
	GoPackage string   `yaml:"go_package"`

	Resolver   string `yaml:"resolver" validate:"omitempty,oneof=dummy strict"`
	Verify     bool   `yaml:"verify"`
	Absorption bool   `yaml:"absorption"`
	MaxClauses int    `yaml:"max_clauses" validate:"gte=0"`
}

// Requested reports whether job is among the configured jobs.
func (c Config) Requested(job string) bool {
	return slices.Contains(c.Jobs, job)
}

func (c Config) refName() string {
	if c.RefName == "" {
		return DefaultRefName
	}
	return c.RefName
}
