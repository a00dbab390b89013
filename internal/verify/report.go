package verify

import (
	"github.com/thoreinstein/veribak/internal/errors"
)

// Kind classifies the outcome for one file.
type Kind string

const (
	// KindOK means the file is present with the recorded checksum.
	KindOK Kind = "ok"
	// KindMissing means no file exists at the recorded path.
	KindMissing Kind = "missing"
	// KindChecksumMismatch means the file's content changed.
	KindChecksumMismatch Kind = "checksum_mismatch"
	// KindIOError means the entry could not be read or is not a regular file.
	KindIOError Kind = "io_error"
)

// Status is the overall verdict.
type Status string

const (
	// StatusPass means every file is KindOK.
	StatusPass Status = "pass"
	// StatusFail means at least one file is not.
	StatusFail Status = "fail"
)

// Result is the outcome for one FileRecord.
type Result struct {
	Path     string `json:"path"`
	Kind     Kind   `json:"kind"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Message  string `json:"error,omitempty"`
	Err      error  `json:"-"`
}

// Report is the result of verifying one tree.
type Report struct {
	ArchiveName string   `json:"archive_name"`
	Algorithm   string   `json:"checksum_algorithm"`
	Root        string   `json:"root"`
	Status      Status   `json:"status"`
	Results     []Result `json:"results"`
}

// Passed reports whether every file verified.
func (r *Report) Passed() bool {
	return r.Status == StatusPass
}

// Failures returns the non-OK results in manifest order.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Kind != KindOK {
			out = append(out, res)
		}
	}
	return out
}

// Count returns the number of results of kind k.
func (r *Report) Count(k Kind) int {
	n := 0
	for _, res := range r.Results {
		if res.Kind == k {
			n++
		}
	}
	return n
}

// Err returns nil for a passing report and an error marked with
// errors.ErrVerificationFailed otherwise.
func (r *Report) Err() error {
	if r.Passed() {
		return nil
	}
	failures := r.Failures()
	return errors.Wrapf(errors.ErrVerificationFailed, "%d of %d files failed", len(failures), len(r.Results))
}

// finish derives the status from the results.
func (r *Report) finish() {
	r.Status = StatusPass
	for _, res := range r.Results {
		if res.Kind != KindOK {
			r.Status = StatusFail
			return
		}
	}
}
