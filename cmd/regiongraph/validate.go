package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/regiongraph/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check definitions and graph for consistency",
	Long: `Normalizes every logic object, builds the graph without exporting and
reports unsatisfiable requirements and regions unreachable from Menu.
Exits with status 2 when problems are found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(env *cli.Env) error {
			return cli.Validate(cmd.Context(), env, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
