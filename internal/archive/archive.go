package archive

import (
	"context"

	"github.com/spf13/afero"
)

// Packager creates and expands archive containers.
type Packager interface {
	// Create writes the files named by paths, relative to root, into a new
	// archive at dest. Paths are slash separated.
	Create(ctx context.Context, fsys afero.Fs, root string, paths []string, dest string) error

	// Extract expands the archive at path into dest and returns the slash
	// separated paths of the files written, in archive order.
	Extract(ctx context.Context, fsys afero.Fs, path string, dest string) ([]string, error)
}

var _ Packager = (*TarGz)(nil)
