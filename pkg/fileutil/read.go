package fileutil

import (
	"io"

	"github.com/spf13/afero"

	"github.com/thoreinstein/veribak/internal/errors"
)

// MaxManifestSize bounds manifest documents read from disk (64MB).
const MaxManifestSize = 64 << 20

// ErrFileTooLarge indicates that a file exceeded the read limit.
var ErrFileTooLarge = errors.New("file exceeds maximum size")

// ReadFileWithLimit reads the file at path, failing with ErrFileTooLarge if it
// holds more than limit bytes.
func ReadFileWithLimit(fsys afero.Fs, path string, limit int64) ([]byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrIO), "opening %s", path)
	}
	defer f.Close()

	// Fail fast if the size is already known to be too large
	if info, err := f.Stat(); err == nil && info.Size() > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s is %d bytes, limit %d", path, info.Size(), limit)
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrIO), "reading %s", path)
	}

	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s exceeds %d bytes", path, limit)
	}

	return data, nil
}
