package cli

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/transform"
)

// NewSchemaCmd creates the `schema` command: parse a semantic ABI document and print the unioned
// output schema every primary item's rows will be padded out to.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the output schema a semantic ABI document compiles to",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := runtimeConfigFromContext(cmd)

			abi, err := loadSemanticAbi(cfg.AbiPath)
			if err != nil {
				return err
			}

			transformer, err := transform.New(abi)
			if err != nil {
				return fmt.Errorf("building transform pipeline: %w", err)
			}

			metadata := transformer.Metadata()

			if cfg.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(metadata)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Column", "Ingest Type", "Expected Type", "Array"})
			for _, col := range metadata {
				t.AppendRow(table.Row{col.Name, col.TypeMetadata.IngestType, col.TypeMetadata.ExpectedType, col.TypeMetadata.IsArray})
			}
			t.Render()

			return nil
		},
	}
}
