package backup

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/manifest"
	"github.com/thoreinstein/veribak/internal/paths"
)

// Entry is a manifest found on disk.
type Entry struct {
	// Path is the manifest file.
	Path string

	// Manifest is the loaded document.
	Manifest *manifest.Manifest
}

// List returns the manifests in dir, sorted by creation time (newest first).
// Files that fail to load are skipped. A directory without manifests is
// errors.ErrNotFound.
func (m *Manager) List(dir string) ([]Entry, error) {
	dir = paths.ExpandHome(dir)

	infos, err := afero.ReadDir(m.fs, dir)
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrIO), "reading %s", dir)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), paths.ManifestExt) {
			continue
		}

		path := filepath.Join(dir, info.Name())
		man, err := manifest.Load(m.fs, path)
		if err != nil {
			// Skip unreadable manifests
			continue
		}
		entries = append(entries, Entry{Path: path, Manifest: man})
	}

	if len(entries) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "no manifests in %s", dir)
	}

	// Sort by date, newest first
	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case a.Manifest.CreationTime > b.Manifest.CreationTime:
			return -1
		case a.Manifest.CreationTime < b.Manifest.CreationTime:
			return 1
		default:
			return strings.Compare(a.Path, b.Path)
		}
	})

	return entries, nil
}
