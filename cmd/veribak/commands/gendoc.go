package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/veribak/cmd"
	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/paths"
)

// genDocFormat holds the value of the gen-doc --format flag.
var genDocFormat string

var genDocCmd = &cobra.Command{
	Use:    "gen-doc <dir>",
	Short:  "Generate man pages or Markdown documentation for the CLI",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		outputDir := args[0]
		if err := os.MkdirAll(outputDir, paths.DefaultDirPerm); err != nil {
			return errors.Wrap(err, "creating output directory")
		}

		switch genDocFormat {
		case "man":
			header := &doc.GenManHeader{
				Title:   "VERIBAK",
				Section: "1",
				Source:  "veribak " + cmd.Version,
			}
			if err := doc.GenManTree(rootCmd, header, outputDir); err != nil {
				return errors.Wrap(err, "generating man pages")
			}
		case "markdown":
			if err := doc.GenMarkdownTreeCustom(rootCmd, outputDir, filePrepender, linkHandler); err != nil {
				return errors.Wrap(err, "generating markdown")
			}
		default:
			return errors.NewUserError(errors.Newf("unknown format %q", genDocFormat), "Use one of: man, markdown")
		}

		fmt.Fprintf(outWriter(c), "Documentation generated in %s\n", outputDir)
		return nil
	},
}

func init() {
	genDocCmd.Flags().StringVar(&genDocFormat, "format", "man", "output format: man, markdown")
	rootCmd.AddCommand(genDocCmd)
}

func filePrepender(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	// veribak_config_show.md -> veribak config show
	title := strings.ReplaceAll(base, "_", " ")
	return fmt.Sprintf("---\ntitle: %q\n---\n\n", title)
}

func linkHandler(name string) string {
	return strings.ToLower(name)
}
