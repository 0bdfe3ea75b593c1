// Package cli assembles the command tree every entrypoint runs: parsing a semantic ABI document,
// printing its resolved schema, fetching blocks from a node, and transforming them.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hyperarc/semanticabi/internal/config"
	"github.com/hyperarc/semanticabi/internal/logging"
)

type contextKey string

const (
	runtimeConfigKey contextKey = "runtimeConfig"
	loggerKey        contextKey = "logger"
)

// NewRootCmd creates the root command for the semanticabi CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "semanticabi",
		Short: "Compile semantic ABI documents and transform on-chain data against them",
		Long: `semanticabi parses a user-authored semantic ABI document, decodes the logs and
traces it describes, and runs them through the document's transform pipeline to produce
structured, schema'd rows ready for a columnar store.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			v := config.SetupViper(cmd)
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("failed to resolve configuration: %w", err)
			}

			logger := logging.NewLogger(cfg)

			ctx := context.WithValue(cmd.Context(), runtimeConfigKey, cfg)
			ctx = context.WithValue(ctx, loggerKey, logger)
			cmd.SetContext(ctx)

			return nil
		},
	}

	rootCmd.PersistentFlags().String("abi", "", "path to the semantic ABI JSON document")
	rootCmd.PersistentFlags().String("node-url", "", "JSON-RPC URL of the node to fetch blocks from")
	rootCmd.PersistentFlags().String("node-type", "erigon", "node JSON-RPC dialect (erigon or geth)")
	rootCmd.PersistentFlags().String("chain", "ethereum", "EVM chain fetched blocks belong to")
	rootCmd.PersistentFlags().String("output", "", "output file path; defaults to stdout")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("json", false, "emit machine-readable JSON output")
	rootCmd.PersistentFlags().Duration("timeout", 0, "command timeout recorded in the runtime configuration; no command enforces it")

	rootCmd.AddCommand(NewSchemaCmd())
	rootCmd.AddCommand(NewFetchCmd())
	rootCmd.AddCommand(NewTransformCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func runtimeConfigFromContext(cmd *cobra.Command) *config.RuntimeConfig {
	cfg, _ := cmd.Context().Value(runtimeConfigKey).(*config.RuntimeConfig)
	return cfg
}

func loggerFromContext(cmd *cobra.Command) *slog.Logger {
	logger, _ := cmd.Context().Value(loggerKey).(*slog.Logger)
	if logger == nil {
		return slog.Default()
	}
	return logger
}
