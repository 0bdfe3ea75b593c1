package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/fetch"
)

// NewFetchCmd creates the `fetch` command: pull a single block's header, receipts, and traces
// from a node and print the raw payload, mainly useful for inspecting what a node actually
// returns before writing a semantic ABI document against it.
func NewFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <block-number>",
		Short: "Fetch a raw block payload from a node",
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

			var spin *spinner.Spinner
			if !cfg.NonInteractive && !cfg.JSON {
				spin = spinner.New(spinner.CharSets[11], 100*time.Millisecond)
				spin.Suffix = fmt.Sprintf(" fetching block %d from %s", blockNumber, cfg.NodeType)
				spin.Start()
				defer spin.Stop()
			}

			logger.Debug("fetching block", "blockNumber", blockNumber, "nodeType", cfg.NodeType)

			fetcher := fetch.New(cfg.NodeURL, cfg.NodeType)
			blockJSON, err := fetcher.FetchBlock(cmd.Context(), blockNumber)
			if err != nil {
				return fmt.Errorf("fetching block %d: %w", blockNumber, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(blockJSON)
		},
	}
}
