// Package logging provides structured logging for veribak using slog.
//
// The package supports a TTY-aware colored text format and a JSON format,
// verbosity-driven levels including a [LevelTrace] below debug, a
// [Tee] for copying records to a log file, and helpers for carrying a
// logger through a [context.Context].
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("backup written", "archive", "nightly.tar.gz")
//
// # Context
//
// Library packages never reach for a global logger. They call [FromContext],
// which falls back to [slog.Default] when no logger was attached:
//
//	ctx = logging.NewContext(ctx, logger)
//	logging.FromContext(ctx).Debug("checksummed", "path", p)
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework.
package logging
