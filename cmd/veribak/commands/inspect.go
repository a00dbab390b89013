package commands

import (
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/disiqueira/gotree/v3"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/veribak/internal/manifest"
	"github.com/thoreinstein/veribak/internal/paths"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <manifest>",
	Short: "Show the contents of a manifest",
	Long: `Print a manifest's metadata, whether its seal holds, and the recorded file
tree with a short checksum for each file. A manifest with a broken seal is
still shown.

Nothing on disk other than the manifest is read.`,
	Example: `  veribak inspect photos.manifest

  See Also: veribak verify`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	man, err := manifest.Read(appFs, paths.ExpandHome(args[0]))
	if err != nil {
		return err
	}

	printManifest(cmd.OutOrStdout(), man)
	return nil
}

func printManifest(w io.Writer, man *manifest.Manifest) {
	seal := color.GreenString("valid")
	if err := man.VerifySeal(); err != nil {
		seal = color.RedString("INVALID")
	}

	fmt.Fprintf(w, "Archive:   %s\n", man.ArchiveName)
	fmt.Fprintf(w, "Created:   %s\n", time.Unix(man.CreationTime, 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Algorithm: %s\n", man.ChecksumAlgorithm)
	if man.ArchiveChecksum != "" {
		fmt.Fprintf(w, "Archive checksum: %s\n", man.ArchiveChecksum)
	}
	fmt.Fprintf(w, "Seal:      %s (%s)\n", seal, man.Checksum)
	fmt.Fprintf(w, "Files:     %d\n\n", len(man.Files))
	fmt.Fprint(w, fileTree(man).Print())
}

// fileTree arranges the manifest's paths as a directory tree.
func fileTree(man *manifest.Manifest) gotree.Tree {
	root := gotree.New(strings.TrimSuffix(man.ArchiveName, paths.ArchiveExt))
	dirs := map[string]gotree.Tree{"": root}

	var dirNode func(dir string) gotree.Tree
	dirNode = func(dir string) gotree.Tree {
		if node, ok := dirs[dir]; ok {
			return node
		}
		parent, name := path.Split(dir)
		node := dirNode(strings.TrimSuffix(parent, "/")).Add(name + "/")
		dirs[dir] = node
		return node
	}

	for _, f := range man.Files {
		dir, name := path.Split(f.Path)
		sum := f.Checksum
		if len(sum) > 12 {
			sum = sum[:12]
		}
		dirNode(strings.TrimSuffix(dir, "/")).Add(fmt.Sprintf("%s  %s", name, color.HiBlackString(sum)))
	}
	return root
}
