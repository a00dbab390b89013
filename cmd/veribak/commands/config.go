package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/veribak/internal/config"
	"github.com/thoreinstein/veribak/internal/editor"
	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/paths"
	"github.com/thoreinstein/veribak/pkg/fileutil"
)

// configFormat holds the value of the --format flag.
var configFormat string

// configInitForce holds the value of the config init --force flag.
var configInitForce bool

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml",
		"output format: yaml, toml, json")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false,
		"overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage veribak configuration",
	Long: `Manage veribak configuration.

Configuration is read from ./config.yaml, then from the user config directory
($XDG_CONFIG_HOME/veribak/config.yaml or $VERIBAK_CONFIG_DIR). Every key can
be overridden by an environment variable such as VERIBAK_CHECKSUM_ALGORITHM.

Without a subcommand, shows the effective configuration.`,
	Example: `  # Show the effective configuration
  veribak config

  # Write a config file with the defaults
  veribak config init

See Also: veribak algorithms`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Example: `  veribak config show
  veribak config show --format toml`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if used := config.FileUsed(); used != "" {
			fmt.Fprintln(cmd.OutOrStdout(), used)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (not present, defaults in use)\n", config.File())
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in your editor",
	Long: `Open the user config file in $VERIBAK_EDITOR, $EDITOR or $VISUAL.

The file must exist; create it with 'veribak config init'.`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	return writeConfig(cmd.OutOrStdout(), currentConfig(), configFormat)
}

func writeConfig(w io.Writer, cfg config.Config, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml", "":
		data, err = yaml.Marshal(cfg)
	case "toml":
		data, err = toml.Marshal(cfg)
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	default:
		return errors.NewUserError(
			errors.Newf("unknown format %q", format),
			"Use one of: yaml, toml, json")
	}
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	_, err = w.Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := config.File()

	exists, err := fileExists(path)
	if err != nil {
		return err
	}
	if exists && !configInitForce {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrAlreadyExists, "config file %s", path),
			"Pass --force to overwrite it")
	}

	if err := appFs.MkdirAll(config.Dir(), paths.DefaultDirPerm); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := fileutil.AtomicWriteYAML(appFs, path, config.Default(), 0o644); err != nil {
		return errors.Wrap(err, "writing config")
	}

	fmt.Fprintf(outWriter(cmd), "Wrote %s\n", path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := config.File()

	exists, err := fileExists(path)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "config file %s", path),
			"Run: veribak config init")
	}

	fmt.Fprintf(outWriter(cmd), "Location: %s\n", path)
	return editor.Open(cmd.Context(), path, editor.Streams{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
		Err: cmd.ErrOrStderr(),
	}, os.Getenv)
}
