package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/regiongraph/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "regiongraph",
	Short: "Compile randomizer logic into a region graph",
	Long: `regiongraph normalizes every requirement of a randomizer world into
disjunctive normal form and condenses waypoints, transitions and locations
into a graph of regions for trackers and visualizers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, cli.ErrInvalid) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	cli.AddPersistentFlags(rootCmd)
}

// withEnv loads the configuration, builds the command environment and
// releases it after fn returns.
func withEnv(cmd *cobra.Command, fn func(*cli.Env) error) (err error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return err
	}
	env, err := cli.NewEnv(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, env.Close())
	}()
	return fn(env)
}
