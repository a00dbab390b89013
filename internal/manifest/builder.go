package manifest

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/thoreinstein/veribak/internal/checksum"
	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/logging"
	"github.com/thoreinstein/veribak/internal/paths"
	"github.com/thoreinstein/veribak/internal/tree"
)

// Builder produces sealed manifests from a directory tree.
type Builder struct {
	// Fs is the filesystem read. Defaults to the OS filesystem.
	Fs afero.Fs

	// Algorithm names the checksum algorithm. Defaults to checksum.Default.
	Algorithm string

	// Clock supplies the creation time. Defaults to time.Now.
	Clock func() time.Time

	// Workers bounds concurrent file checksums. Values below 1 mean
	// runtime.NumCPU().
	Workers int

	// SkipUnreadable is passed to the tree walker.
	SkipUnreadable bool

	// Logger overrides the logger carried in the context.
	Logger *slog.Logger

	// Exclude is passed to the tree walker.
	Exclude []string
}

// NewBuilder returns a Builder over fsys using algorithm.
func NewBuilder(fsys afero.Fs, algorithm string) *Builder {
	return &Builder{Fs: fsys, Algorithm: algorithm}
}

// Build enumerates root, checksums every file and returns a sealed manifest
// naming archiveName. Walker and checksum errors are returned unchanged; a
// file name that cannot be stored as a safe relative path (a backslash, for
// one) fails with errors.ErrManifestBuildFailed before anything is read.
func (b *Builder) Build(ctx context.Context, root, archiveName string) (*Manifest, error) {
	alg := checksum.Normalize(b.Algorithm)
	if alg == "" {
		alg = checksum.Default
	}
	if _, err := checksum.Lookup(alg); err != nil {
		return nil, err
	}
	if err := ValidateArchiveName(archiveName); err != nil {
		return nil, err
	}

	fsys := b.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	logger := b.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	walker := &tree.Walker{Fs: fsys, SkipUnreadable: b.SkipUnreadable, Logger: logger, Exclude: b.Exclude}
	files, err := walker.Enumerate(ctx, root)
	if err != nil {
		return nil, err
	}
	// Every recorded path must survive archiving and verification.
	for _, p := range files {
		if _, err := paths.CleanRel(p); err != nil {
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrManifestBuildFailed), "path %q", p)
		}
	}

	logger.Info("building manifest", "root", root, "files", len(files), "algorithm", alg)

	records, err := b.checksumAll(ctx, fsys, logger, root, files, alg)
	if err != nil {
		return nil, err
	}

	clock := b.Clock
	if clock == nil {
		clock = time.Now
	}

	m := &Manifest{
		ArchiveName:       archiveName,
		ChecksumAlgorithm: alg,
		CreationTime:      clock().Unix(),
		Files:             records,
	}
	if err := m.Seal(); err != nil {
		return nil, err
	}

	logger.Debug("sealed manifest", "archive", archiveName, "checksum", m.Checksum)
	return m, nil
}

// checksumAll digests files concurrently. Each goroutine writes only its own
// slot so the result keeps the walker's order.
func (b *Builder) checksumAll(ctx context.Context, fsys afero.Fs, logger *slog.Logger, root string, files []string, alg string) ([]FileRecord, error) {
	records := make([]FileRecord, len(files))

	workers := b.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum, err := checksum.DigestFile(fsys, filepath.Join(root, filepath.FromSlash(rel)), alg)
			if err != nil {
				return err
			}
			records[i] = FileRecord{Path: rel, Checksum: sum}
			logger.Debug("checksummed file", "path", rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
