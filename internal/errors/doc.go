// Package errors provides error handling conventions for veribak.
//
// This package re-exports the wrapping helpers of
// [github.com/cockroachdb/errors] so callers keep a single import, defines the
// sentinel errors that make up the backup and verification failure taxonomy,
// and provides an ExitError type that carries a process exit code.
//
// # Sentinel Errors
//
// Failures are marked with a sentinel so that callers can classify them with
// [Is] without losing the underlying OS error:
//
//	if errors.Is(err, errors.ErrManifestCorrupt) {
//	    // the manifest document was edited after it was sealed
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (I/O, permissions, etc.)
//   - ExitDataErr (65): Verification failed or the manifest is corrupt
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion:
//
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
