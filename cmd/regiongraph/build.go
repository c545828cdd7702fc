package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/regiongraph/internal/cli"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the region graph and export it",
	Long: `Loads the configured world source, builds the region graph and, when an
output directory is given, writes it in every requested format.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(env *cli.Env) error {
			return cli.Build(cmd.Context(), env, cmd.OutOrStdout())
		})
	},
}

func init() {
	cli.AddOutputFlags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}
