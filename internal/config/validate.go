package config

import (
	"compress/gzip"
	"strings"

	"github.com/thoreinstein/veribak/internal/checksum"
	"github.com/thoreinstein/veribak/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates a version other than CurrentVersion.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidWorkers indicates a worker count below 1.
	ErrInvalidWorkers = errors.New("workers must be >= 1")

	// ErrInvalidCompression indicates a gzip level outside -2..9.
	ErrInvalidCompression = errors.New("compression_level must be between -2 and 9")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != CurrentVersion {
		errs = append(errs, errors.Wrapf(ErrUnsupportedVersion, "%d", cfg.Version))
	}

	if !checksum.Supported(cfg.ChecksumAlgorithm) {
		errs = append(errs, &FieldError{
			Field: "checksum_algorithm",
			Value: cfg.ChecksumAlgorithm,
			Err:   errors.ErrUnsupportedAlgorithm,
		})
	}

	if cfg.Workers < 1 {
		errs = append(errs, ErrInvalidWorkers)
	}

	if cfg.CompressionLevel < gzip.HuffmanOnly || cfg.CompressionLevel > gzip.BestCompression {
		errs = append(errs, ErrInvalidCompression)
	}

	if strings.ContainsRune(cfg.OutputDir, '\x00') {
		errs = append(errs, &FieldError{
			Field: "output_dir",
			Value: cfg.OutputDir,
			Err:   ErrInvalidPath,
		})
	}

	return errs
}

// FieldError represents an error for a specific field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
