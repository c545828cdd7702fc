package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/aretw0/regiongraph/internal/cli"
	"github.com/aretw0/regiongraph/internal/presentation/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the region graph over HTTP",
	Long: `Builds the region graph once and serves it read-only at /graph,
/graph.mmd, /stats, /regions/{name} and /metrics until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(env *cli.Env) error {
			ln, err := net.Listen("tcp", env.Config.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", env.Config.Addr, err)
			}
			if tui.IsTerminal(cmd.OutOrStdout()) {
				tui.PrintBanner(cmd.OutOrStdout())
			}
			return cli.Serve(cmd.Context(), env, ln)
		})
	},
}

func init() {
	cli.AddServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}
