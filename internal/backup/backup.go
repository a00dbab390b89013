package backup

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/veribak/internal/checksum"
	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/logging"
	"github.com/thoreinstein/veribak/internal/manifest"
	"github.com/thoreinstein/veribak/internal/paths"
	"github.com/thoreinstein/veribak/pkg/fileutil"
)

// Result describes a completed backup.
type Result struct {
	// Manifest is the sealed manifest as written.
	Manifest *manifest.Manifest

	// Artifacts names the files written.
	Artifacts paths.Artifacts
}

// Backup archives the tree at source under name and writes its manifest.
//
// name may carry a directory; the outputs are <name>.tar.gz and
// <name>.manifest. An existing manifest is refused with
// errors.ErrAlreadyExists unless the Manager allows overwrites, and a backup
// already writing the same manifest fails with errors.ErrLocked.
func (m *Manager) Backup(ctx context.Context, source, name string) (res *Result, err error) {
	ctx, logger := m.context(ctx)

	art, err := paths.ArtifactsFor(name, m.outputDir)
	if err != nil {
		return nil, errors.Mark(err, errors.ErrInvalidManifest)
	}
	source = paths.ExpandHome(source)

	if err := m.fs.MkdirAll(art.Dir, paths.DefaultDirPerm); err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrIO), "creating %s", art.Dir)
	}

	lock, err := fileutil.AcquireLock(m.fs, art.Lock)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	if !m.overwrite {
		exists, err := fileExists(m.fs, art.Manifest)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errors.Wrapf(errors.ErrAlreadyExists, "manifest %s", art.Manifest)
		}
	}

	builder := &manifest.Builder{
		Fs:             m.fs,
		Algorithm:      m.algorithm,
		Clock:          m.clock,
		Workers:        m.workers,
		SkipUnreadable: m.skipUnreadable,
		Logger:         logger,
		Exclude:        artifactsUnder(source, art),
	}
	man, err := builder.Build(ctx, source, art.ArchiveName())
	if err != nil {
		return nil, err
	}

	if err := m.packager.Create(ctx, m.fs, source, man.Paths(), art.Archive); err != nil {
		return nil, err
	}
	// From here on a failure must not leave an archive without a manifest.
	defer func() {
		if err != nil {
			if rmErr := m.fs.Remove(art.Archive); rmErr != nil {
				logger.Warn("removing archive after failed backup", "path", art.Archive, "error", rmErr)
			}
		}
	}()

	sum, err := checksum.DigestFile(m.fs, art.Archive, man.ChecksumAlgorithm)
	if err != nil {
		return nil, err
	}
	man.ArchiveChecksum = sum
	if err := man.Seal(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := man.Save(m.fs, art.Manifest); err != nil {
		return nil, err
	}

	logger.Info("backup complete",
		"source", source,
		"archive", art.Archive,
		"manifest", art.Manifest,
		"files", len(man.Files))

	return &Result{Manifest: man, Artifacts: art}, nil
}

// artifactsUnder returns the backup's own output files that lie inside
// source, as slash paths relative to it.
func artifactsUnder(source string, art paths.Artifacts) []string {
	absSource, err := filepath.Abs(source)
	if err != nil {
		return nil
	}

	var out []string
	for _, p := range []string{art.Archive, art.Manifest, art.Lock} {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absSource, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

// context attaches the Manager's logger to ctx and returns the logger in use.
func (m *Manager) context(ctx context.Context) (context.Context, *slog.Logger) {
	if m.logger != nil {
		return logging.NewContext(ctx, m.logger), m.logger
	}
	return ctx, logging.FromContext(ctx)
}
