// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ava-labs/bridgequeue/config"
	"github.com/ava-labs/bridgequeue/node"
	"github.com/ava-labs/bridgequeue/utils"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "bridgequeued",
	Short: "Serves the bridge priority operation queue",
	Long:  `Runs a node that persists the priority operation queue and serves it over JSON-RPC and a websocket event feed.`,
	RunE:  run,
	// Errors are printed by main.
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n, err := node.New(ctx, cfg, node.DefaultOptions()...)
	if err != nil {
		return fmt.Errorf("failed to start node: %w", err)
	}
	utils.Outf("{{green}}serving queue at:{{/}} http://%s/ext\n", n.Addr())
	return n.Run(ctx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
