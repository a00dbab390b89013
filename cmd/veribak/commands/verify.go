package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	verifyCmd.Flags().IntVarP(&workersFlag, "workers", "w", 0,
		"number of files verified in parallel (default from config)")
	verifyCmd.Flags().BoolVar(&jsonFlag, "json", false,
		"output the verification report as JSON")
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify <manifest> <dir>",
	Short: "Verify a directory against a manifest",
	Long: `Check every file listed in a manifest against the tree at <dir> without
extracting the archive.

The manifest seal is checked first. Files present in <dir> but absent from the
manifest are ignored. Any missing or changed file makes the command exit with
status 65.`,
	Example: `  # Verify the original tree is unchanged
  veribak verify photos.manifest ./photos

  # JSON report for scripts
  veribak verify photos.manifest ./photos --json

  See Also: veribak restore, veribak inspect`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}

	report, err := mgr.Verify(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	return writeReport(outWriter(cmd), report)
}
