package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand assembles the sidediff command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sidediff",
		Short: "Side-by-side membership diff of two texts",
		Long: `sidediff renders two texts side by side. Lines are aligned by membership:
a line present anywhere on the other side is a match, a line unique to both
cursors is a change whose characters are diffed the same way.

Texts can be compared locally, fetched from a counterpart host running
"sidediff serve", compared in bulk across directory trees, or watched.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(NewCompareCommand())
	rootCmd.AddCommand(NewBatchCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
