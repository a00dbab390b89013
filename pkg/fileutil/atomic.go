// Package fileutil provides file system utilities including atomic write
// operations, bounded reads and advisory lock files. All functions operate on
// an [afero.Fs] so callers can substitute an in-memory file system in tests.
package fileutil

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/veribak/internal/errors"
)

// AtomicWrite streams the output of write into path atomically using a temp
// file + rename pattern. If write returns an error, or the process is
// interrupted, path is left untouched and the temp file is removed.
//
// The caller is responsible for ensuring the parent directory exists.
// Permissions are applied to the final file via the perm parameter.
func AtomicWrite(fsys afero.Fs, path string, perm os.FileMode, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)

	// Create temp file in same directory for atomic rename (same filesystem required)
	tmp, err := afero.TempFile(fsys, dir, ".veribak-atomic-*.tmp")
	if err != nil {
		return errors.Wrap(errors.Mark(err, errors.ErrIO), "creating temp file")
	}

	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = fsys.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(errors.Mark(err, errors.ErrIO), "syncing temp file")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.Mark(err, errors.ErrIO), "closing temp file")
	}

	if err := fsys.Chmod(tmpName, perm); err != nil {
		return errors.Wrap(errors.Mark(err, errors.ErrIO), "setting file permissions")
	}

	if err := fsys.Rename(tmpName, path); err != nil {
		return errors.Wrap(errors.Mark(err, errors.ErrIO), "renaming temp file")
	}
	renamed = true

	return nil
}

// AtomicWriteFile writes data to path atomically.
func AtomicWriteFile(fsys afero.Fs, path string, data []byte, perm os.FileMode) error {
	return AtomicWrite(fsys, path, perm, func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return errors.Wrap(errors.Mark(err, errors.ErrIO), "writing temp file")
		}
		return nil
	})
}

// AtomicWriteJSON writes v as indented JSON to path atomically.
// Uses 2-space indentation and appends a trailing newline for POSIX compliance.
// The file is created with 0644 permissions.
func AtomicWriteJSON(fsys afero.Fs, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling JSON")
	}

	data = append(data, '\n')

	return AtomicWriteFile(fsys, path, data, 0o644)
}

// AtomicWriteYAML writes v as YAML to path atomically with perm.
func AtomicWriteYAML(fsys afero.Fs, path string, v any, perm os.FileMode) (err error) {
	// yaml.Marshal panics on unmarshalable types; recover and return error
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}

	return AtomicWriteFile(fsys, path, data, perm)
}
