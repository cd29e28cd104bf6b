package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/vizchat/internal/config"
	"github.com/sandevgo/vizchat/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "vizchat",
	Short: "vizchat — an LLM chat with a visualization workspace",
	Long:  `vizchat is a chat assistant that talks to hosted LLM providers and extracts charts and tables from the replies into a workspace.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
