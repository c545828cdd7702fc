package cli

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/regiongraph/internal/config"
)

// Flag names shared by every command that runs the pipeline.
const (
	flagConfig            = "config"
	flagLogLevel          = "log-level"
	flagWorld             = "world"
	flagRandoContext      = "rando-context"
	flagDefinitions       = "definitions"
	flagDefinitionsFormat = "definitions-format"
	flagStart             = "start"
	flagKeep              = "keep"
	flagRef               = "ref"
	flagJobs              = "jobs"
	flagOut               = "out"
	flagFormat            = "format"
	flagGoPackage         = "go-package"
	flagResolver          = "resolver"
	flagVerify            = "verify"
	flagAbsorption        = "absorption"
	flagMaxClauses        = "max-clauses"
	flagRedisURL          = "redis-url"
	flagMetricsFile       = "metrics-file"
	flagAddr              = "addr"
)

// AddPersistentFlags registers the flags understood by LoadConfig on root.
func AddPersistentFlags(root *cobra.Command) {
	f := root.PersistentFlags()
	f.String(flagConfig, "", "YAML configuration file")
	f.String(flagLogLevel, "info", "Log level (debug, info, warn, error)")
	f.String(flagWorld, "", "Pre-built world definition document")
	f.String(flagRandoContext, "", "Saved logic-manager snapshot")
	f.String(flagDefinitions, "", "Raw definitions file or directory compiled live")
	f.String(flagDefinitionsFormat, "", "Raw definitions format (files, hcl, loam)")
	f.String(flagStart, "", "Start state term; empty selects the always-true region")
	f.String(flagKeep, "", "File listing empty regions to keep")
	f.String(flagRef, "", "Reference name for outputs")
	f.StringSlice(flagJobs, nil, "Requested jobs; region extraction runs only for 'regions'")
	f.String(flagResolver, "", "Variable resolver (dummy, strict)")
	f.Bool(flagVerify, false, "Check every normalization with a SAT solver")
	f.Bool(flagAbsorption, false, "Drop clauses subsumed by shorter ones")
	f.Int(flagMaxClauses, 0, "Abort when an expression expands past this many clauses (0 = unbounded)")
	f.String(flagRedisURL, "", "Redis URL for the shared clause cache and output lock")
	f.String(flagMetricsFile, "", "Write run metrics to this Prometheus textfile")
}

// AddOutputFlags registers export flags on cmd.
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagOut, "o", "", "Output directory")
	cmd.Flags().StringSlice(flagFormat, nil, "Export formats (json, go, mermaid); all when empty")
	cmd.Flags().String(flagGoPackage, "", "Package name of the generated Go file")
}

// AddServeFlags registers server flags on cmd.
func AddServeFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagAddr, config.DefaultAddr, "Listen address")
}

// LoadConfig reads the --config file, applies every flag the user set on
// top of it and validates the result.
func LoadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString(flagConfig)
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	str := func(name string, dst *string) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst, _ = flags.GetString(name)
		}
	}
	slice := func(name string, dst *[]string) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst, _ = flags.GetStringSlice(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst, _ = flags.GetBool(name)
		}
	}

	str(flagLogLevel, &cfg.LogLevel)
	str(flagWorld, &cfg.WorldDefinitionPath)
	str(flagRandoContext, &cfg.RandoContextPath)
	str(flagDefinitions, &cfg.DefinitionsPath)
	str(flagDefinitionsFormat, &cfg.DefinitionsFormat)
	str(flagStart, &cfg.StartStateTerm)
	str(flagKeep, &cfg.EmptyRegionsToKeepPath)
	str(flagRef, &cfg.RefName)
	slice(flagJobs, &cfg.Jobs)
	str(flagOut, &cfg.OutputDir)
	slice(flagFormat, &cfg.Formats)
	str(flagGoPackage, &cfg.GoPackage)
	str(flagResolver, &cfg.Resolver)
	boolean(flagVerify, &cfg.Verify)
	boolean(flagAbsorption, &cfg.Absorption)
	if f := flags.Lookup(flagMaxClauses); f != nil && f.Changed {
		cfg.MaxClauses, _ = flags.GetInt(flagMaxClauses)
	}
	str(flagRedisURL, &cfg.RedisURL)
	str(flagMetricsFile, &cfg.MetricsFile)
	str(flagAddr, &cfg.Addr)

	return cfg, cfg.Validate()
}
