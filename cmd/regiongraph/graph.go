package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/regiongraph/internal/cli"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the region graph as Mermaid",
	Long:  `Builds the region graph and outputs a Mermaid diagram (graph TD) on stdout. Nothing is written to disk.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(env *cli.Env) error {
			return cli.Graph(cmd.Context(), env, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
