package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/veribak/internal/backup"
	"github.com/thoreinstein/veribak/internal/checksum"
	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/logging"
	"github.com/thoreinstein/veribak/internal/verify"
)

// Flags shared by several commands.
var (
	algorithmFlag      string
	workersFlag        int
	skipUnreadableFlag bool
	forceFlag          bool
	jsonFlag           bool
)

// newManager builds a backup.Manager from the loaded config. Flags the user
// set explicitly take precedence over config values.
func newManager(cmd *cobra.Command) (*backup.Manager, error) {
	cfg := currentConfig()
	flags := cmd.Flags()

	if flags.Changed("checksum-algorithm") {
		alg := checksum.Normalize(algorithmFlag)
		if !checksum.Supported(alg) {
			return nil, errors.NewUserError(
				errors.Wrapf(errors.ErrUnsupportedAlgorithm, "%q", algorithmFlag),
				"Run 'veribak algorithms' to list supported algorithms")
		}
		cfg.ChecksumAlgorithm = alg
	}
	if flags.Changed("workers") {
		if workersFlag < 1 {
			return nil, errors.NewUserError(errors.Newf("workers must be >= 1, got %d", workersFlag), "")
		}
		cfg.Workers = workersFlag
	}
	if flags.Changed("skip-unreadable") {
		cfg.SkipUnreadable = skipUnreadableFlag
	}

	opts := []backup.Option{
		backup.WithFs(appFs),
		backup.WithAlgorithm(cfg.ChecksumAlgorithm),
		backup.WithWorkers(cfg.Workers),
		backup.WithSkipUnreadable(cfg.SkipUnreadable),
		backup.WithCompressionLevel(cfg.CompressionLevel),
		backup.WithOutputDir(cfg.OutputDir),
		backup.WithLogger(logging.FromContext(cmd.Context())),
	}
	if flags.Lookup("force") != nil {
		opts = append(opts, backup.WithOverwrite(forceFlag))
	}
	return backup.NewManager(opts...), nil
}

// reportFormat returns the report format selected by --json.
func reportFormat() verify.Format {
	if jsonFlag {
		return verify.FormatJSON
	}
	return verify.FormatText
}

// writeReport prints the report and converts a failing report into an error
// carrying the data exit code.
func writeReport(w io.Writer, report *verify.Report) error {
	if err := verify.NewReporter(w, reportFormat()).Report(report); err != nil {
		return errors.Wrap(err, "writing report")
	}
	if err := report.Err(); err != nil {
		return errors.NewDataError(err, "")
	}
	return nil
}

// outWriter returns the writer for human-oriented output, discarding it when
// --quiet is set. JSON output is never suppressed.
func outWriter(cmd *cobra.Command) io.Writer {
	if quiet && !jsonFlag {
		return io.Discard
	}
	return cmd.OutOrStdout()
}

func fileExists(path string) (bool, error) {
	_, err := appFs.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "checking %s", path)
}
