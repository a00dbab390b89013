package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/veribak/internal/backup"
	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/logging"
)

// restoreTarget holds the value of the --target flag.
var restoreTarget string

// Prompt hooks, replaced in tests.
var (
	pickManifest = fuzzyPickManifest
	interactive  = func(cmd *cobra.Command) bool {
		return logging.IsInteractive(cmd.InOrStdin())
	}
)

func init() {
	restoreCmd.Flags().StringVarP(&restoreTarget, "target", "t", ".",
		"directory to restore into")
	restoreCmd.Flags().IntVarP(&workersFlag, "workers", "w", 0,
		"number of files verified in parallel (default from config)")
	restoreCmd.Flags().BoolVar(&jsonFlag, "json", false,
		"output the verification report as JSON")
	rootCmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore [manifest]",
	Short: "Restore a backup and verify every file",
	Long: `Extract the archive named by a manifest into the target directory and verify
each restored file against the checksum recorded in the manifest.

The manifest seal and the archive checksum are checked before anything is
extracted. Every file that is missing or differs after extraction is reported
and the command exits with status 65.

Without a manifest argument, an interactive picker lists the manifests in the
current directory.`,
	Example: `  # Restore into ./restored
  veribak restore photos.manifest --target ./restored

  # Pick a manifest interactively
  veribak restore

  # Machine-readable report
  veribak restore photos.manifest --json

  See Also: veribak verify, veribak inspect`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}

	var manifestPath string
	if len(args) == 1 {
		manifestPath = args[0]
	} else {
		manifestPath, err = chooseManifest(cmd, mgr)
		if err != nil {
			return err
		}
		if manifestPath == "" {
			return nil
		}
	}

	report, err := mgr.Restore(cmd.Context(), manifestPath, restoreTarget)
	if err != nil {
		return err
	}
	return writeReport(outWriter(cmd), report)
}

// chooseManifest prompts for a manifest in the current directory. An empty
// path means the user cancelled.
func chooseManifest(cmd *cobra.Command, mgr *backup.Manager) (string, error) {
	if !interactive(cmd) {
		return "", errors.NewUserError(
			errors.New("no manifest given"),
			"Pass a manifest path: veribak restore <manifest>")
	}

	entries, err := mgr.List(".")
	if err != nil {
		return "", errors.NewUserError(err, "Pass a manifest path: veribak restore <manifest>")
	}
	return pickManifest(entries)
}

func fuzzyPickManifest(entries []backup.Entry) (string, error) {
	idx, err := fuzzyfinder.Find(
		entries,
		func(i int) string {
			return filepath.Base(entries[i].Path)
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			man := entries[i].Manifest
			return fmt.Sprintf("Archive: %s\nCreated: %s\nFiles: %d\nAlgorithm: %s\nChecksum: %s",
				man.ArchiveName,
				time.Unix(man.CreationTime, 0).Format(time.RFC3339),
				len(man.Files),
				man.ChecksumAlgorithm,
				man.Checksum,
			)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", nil
		}
		return "", errors.Wrap(err, "selecting manifest")
	}
	return entries[idx].Path, nil
}
