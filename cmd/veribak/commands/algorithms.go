package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/veribak/internal/checksum"
)

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List supported checksum algorithms",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		w := cmd.OutOrStdout()
		for _, name := range checksum.Algorithms() {
			if name == checksum.Default {
				fmt.Fprintf(w, "%s (default)\n", name)
				continue
			}
			fmt.Fprintln(w, name)
		}
	},
}
