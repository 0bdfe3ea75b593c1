package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/fetch"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/transform"
)

// NewTransformCmd creates the `transform` command: fetch a block from a node and run it through
// a semantic ABI document's compiled pipeline, writing the resulting rows as newline-delimited
// JSON.
func NewTransformCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transform <block-number>",
		Short: "Fetch a block and transform it against a semantic ABI document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := runtimeConfigFromContext(cmd)
			logger := loggerFromContext(cmd)

			blockNumber, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid block number %q: %w", args[0], err)
			}
			if cfg.NodeURL == "" {
				return fmt.Errorf("--node-url is required")
			}

			abi, err := loadSemanticAbi(cfg.AbiPath)
			if err != nil {
				return err
			}

			transformer, err := transform.New(abi)
			if err != nil {
				return fmt.Errorf("building transform pipeline: %w", err)
			}

			if !transformer.IsValidForChain(cfg.Chain) {
				return fmt.Errorf("semantic ABI document does not apply to chain %q", cfg.Chain)
			}

			var spin *spinner.Spinner
			if !cfg.NonInteractive && !cfg.JSON {
				spin = spinner.New(spinner.CharSets[11], 100*time.Millisecond)
				spin.Suffix = fmt.Sprintf(" fetching block %d from %s", blockNumber, cfg.NodeType)
				spin.Start()
				defer spin.Stop()
			}

			fetcher := fetch.New(cfg.NodeURL, cfg.NodeType)
			blockJSON, err := fetcher.FetchBlock(cmd.Context(), blockNumber)
			if err != nil {
				return fmt.Errorf("fetching block %d: %w", blockNumber, err)
			}

			block := metadata.NewEthBlock(cfg.Chain, blockJSON)

			if spin != nil {
				spin.Suffix = fmt.Sprintf(" transforming block %d", blockNumber)
			}

			rows, err := transformer.Transform(block)
			if err != nil {
				return fmt.Errorf("transforming block %d: %w", blockNumber, err)
			}

			if spin != nil {
				spin.Stop()
			}

			logger.Info("transformed block", "blockNumber", blockNumber, "rows", len(rows))
			if !cfg.JSON {
				color.New(color.FgGreen, color.Bold).Fprint(cmd.ErrOrStderr(), "✓ ")
				color.New(color.FgWhite).Fprintf(cmd.ErrOrStderr(), "transformed block ")
				color.New(color.FgCyan, color.Bold).Fprintf(cmd.ErrOrStderr(), "%d", blockNumber)
				color.New(color.FgWhite).Fprintf(cmd.ErrOrStderr(), " into %d rows\n", len(rows))
			}

			out := cmd.OutOrStdout()
			if cfg.OutputPath != "" {
				f, err := os.Create(cfg.OutputPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", cfg.OutputPath, err)
				}
				defer f.Close()
				out = f
			}

			enc := json.NewEncoder(out)
			for _, row := range rows {
				if err := enc.Encode(row); err != nil {
					return fmt.Errorf("encoding row: %w", err)
				}
			}

			return nil
		},
	}
}
