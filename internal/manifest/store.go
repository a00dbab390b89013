package manifest

import (
	"encoding/json"
	"os"

	"github.com/spf13/afero"

	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/pkg/fileutil"
)

// Read parses the manifest document at path without checking its seal or
// structure. A missing file is errors.ErrNotFound; a document that does not
// parse is errors.ErrInvalidManifest.
func Read(fsys afero.Fs, path string) (*Manifest, error) {
	data, err := fileutil.ReadFileWithLimit(fsys, path, fileutil.MaxManifestSize)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrNotFound), "manifest %s", path)
		}
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrInvalidManifest), "parsing manifest %s", path)
	}
	return &m, nil
}

// Load reads the manifest at path and checks its seal before its structure.
// Any edit to a sealed document, including one that also breaks structure,
// is errors.ErrManifestCorrupt. A document whose seal holds but which fails
// [Manifest.Validate] is errors.ErrInvalidManifest.
func Load(fsys afero.Fs, path string) (*Manifest, error) {
	m, err := Read(fsys, path)
	if err != nil {
		return nil, err
	}
	if err := m.VerifySeal(); err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}
	return m, nil
}

// Save writes m to path atomically as indented JSON.
func (m *Manifest) Save(fsys afero.Fs, path string) error {
	if err := fileutil.AtomicWriteJSON(fsys, path, m); err != nil {
		return errors.Wrapf(err, "writing manifest %s", path)
	}
	return nil
}
