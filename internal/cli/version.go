package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperarc/semanticabi/internal/config"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of semanticabi",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "semanticabi %s\n", config.Version)

			if config.Commit != "unknown" || config.Date != "unknown" {
				fmt.Fprintln(cmd.OutOrStdout())
				if config.Commit != "unknown" {
					shortCommit := config.Commit
					if len(shortCommit) > 7 {
						shortCommit = shortCommit[:7]
					}
					fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", shortCommit)
				}
				if config.Date != "unknown" {
					fmt.Fprintf(cmd.OutOrStdout(), "built:  %s\n", config.Date)
				}
			}
		},
	}
}
