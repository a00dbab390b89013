package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, configuration, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, permissions, etc.).
	ExitSystem = 2

	// ExitDataErr indicates the backup data failed verification (EX_DATAERR).
	ExitDataErr = 65
)

// Sentinel errors for backup and verification failures.
var (
	// ErrInvalidRoot indicates a tree root that does not exist, is not a
	// directory, or cannot be read. Always fatal.
	ErrInvalidRoot = crdb.New("invalid root")

	// ErrIO indicates a file could not be read or written.
	ErrIO = crdb.New("i/o error")

	// ErrUnsupportedAlgorithm indicates an unknown checksum algorithm name.
	ErrUnsupportedAlgorithm = crdb.New("unsupported checksum algorithm")

	// ErrManifestCorrupt indicates the manifest's aggregate checksum does not
	// match its contents.
	ErrManifestCorrupt = crdb.New("manifest corrupt")

	// ErrManifestBuildFailed indicates the canonical form of a manifest could
	// not be produced.
	ErrManifestBuildFailed = crdb.New("manifest build failed")

	// ErrInvalidManifest indicates a manifest document that is structurally
	// invalid (unparseable, duplicate or unsafe paths, missing fields).
	ErrInvalidManifest = crdb.New("invalid manifest")

	// ErrArchiveCorrupt indicates the archive file does not match the
	// checksum recorded in its manifest, or cannot be decoded.
	ErrArchiveCorrupt = crdb.New("archive corrupt")

	// ErrLocked indicates another process holds the manifest lock.
	ErrLocked = crdb.New("manifest locked")

	// ErrVerificationFailed indicates at least one file failed verification.
	ErrVerificationFailed = crdb.New("verification failed")

	// ErrAlreadyExists indicates an output that would be overwritten.
	ErrAlreadyExists = crdb.New("already exists")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = crdb.New("resource not found")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = crdb.New("invalid configuration")
)

// New creates an error with a stack trace.
func New(msg string) error {
	return crdb.NewWithDepth(1, msg)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...any) error {
	return crdb.NewWithDepthf(1, format, args...)
}

// Wrap annotates err with msg. Returns nil if err is nil.
func Wrap(err error, msg string) error {
	return crdb.WrapWithDepth(1, err, msg)
}

// Wrapf annotates err with a formatted message. Returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	return crdb.WrapWithDepthf(1, err, format, args...)
}

// Mark tags err so that errors.Is(err, reference) reports true while the
// original cause stays in the chain.
func Mark(err error, reference error) error {
	return crdb.Mark(err, reference)
}

// WithDetailf attaches a user-facing detail to err.
func WithDetailf(err error, format string, args ...any) error {
	return crdb.WithDetailf(err, format, args...)
}

// FlattenDetails returns all details attached to err, newline separated.
func FlattenDetails(err error) string {
	return crdb.FlattenDetails(err)
}

// Is reports whether any error in err's chain matches reference.
func Is(err, reference error) bool {
	return crdb.Is(err, reference)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return crdb.As(err, target)
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewDataError creates an ExitError with ExitDataErr code and a suggestion.
func NewDataError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitDataErr,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Run: veribak config show",
	}
}

// Classify maps err onto an ExitError using the sentinel taxonomy. An
// ExitError already in the chain is returned as is.
func Classify(err error) *ExitError {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if As(err, &exitErr) {
		return exitErr
	}

	switch {
	case Is(err, ErrManifestCorrupt):
		return NewDataError(err, "The manifest was modified after it was written; do not trust its file list")
	case Is(err, ErrArchiveCorrupt):
		return NewDataError(err, "Re-fetch the archive named in the manifest")
	case Is(err, ErrVerificationFailed):
		return NewDataError(err, "")
	case Is(err, ErrInvalidConfig):
		return NewConfigError(err)
	case Is(err, ErrUnsupportedAlgorithm):
		return NewUserError(err, "Run: veribak algorithms")
	case Is(err, ErrInvalidRoot), Is(err, ErrInvalidManifest), Is(err, ErrNotFound):
		return NewUserError(err, "")
	case Is(err, ErrAlreadyExists):
		return NewUserError(err, "Pass --force to overwrite the existing backup")
	case Is(err, ErrLocked):
		return NewUserError(err, "Another backup is writing this manifest; retry when it finishes")
	default:
		return NewSystemError(err, "")
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}
