package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/regiongraph"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of regiongraph",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "regiongraph version %s\n", regiongraph.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
