package backup

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/thoreinstein/veribak/internal/checksum"
	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/manifest"
	"github.com/thoreinstein/veribak/internal/paths"
	"github.com/thoreinstein/veribak/internal/verify"
)

// Restore extracts the archive named by the manifest at manifestPath into
// target and verifies the result.
//
// Nothing is extracted unless the manifest seal holds
// (errors.ErrManifestCorrupt) and the archive matches its recorded checksum
// (errors.ErrArchiveCorrupt). A returned report may still fail; callers
// inspect report.Passed.
func (m *Manager) Restore(ctx context.Context, manifestPath, target string) (*verify.Report, error) {
	ctx, logger := m.context(ctx)

	manifestPath = paths.ExpandHome(manifestPath)
	target = paths.ExpandHome(target)

	man, err := manifest.Load(m.fs, manifestPath)
	if err != nil {
		return nil, err
	}

	archivePath := ArchivePath(manifestPath, man)
	if err := m.checkArchive(archivePath, man); err != nil {
		return nil, err
	}

	extracted, err := m.packager.Extract(ctx, m.fs, archivePath, target)
	if err != nil {
		return nil, err
	}
	if extra := unlisted(man, extracted); len(extra) > 0 {
		logger.Warn("archive holds files not in manifest", "count", len(extra), "first", extra[0])
	}

	logger.Info("restored archive", "archive", archivePath, "target", target, "files", len(extracted))

	return m.verifier().Verify(ctx, man, target)
}

// Verify checks the tree at root against the manifest at manifestPath
// without touching the archive.
func (m *Manager) Verify(ctx context.Context, manifestPath, root string) (*verify.Report, error) {
	ctx, _ = m.context(ctx)

	manifestPath = paths.ExpandHome(manifestPath)
	man, err := manifest.Load(m.fs, manifestPath)
	if err != nil {
		return nil, err
	}
	return m.verifier().Verify(ctx, man, paths.ExpandHome(root))
}

// ArchivePath returns the archive beside the manifest at manifestPath.
func ArchivePath(manifestPath string, man *manifest.Manifest) string {
	return filepath.Join(filepath.Dir(manifestPath), man.ArchiveName)
}

// checkArchive compares the archive file against the recorded checksum.
// Manifests without an archive checksum only need the archive to exist.
func (m *Manager) checkArchive(archivePath string, man *manifest.Manifest) error {
	exists, err := fileExists(m.fs, archivePath)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Wrapf(errors.ErrNotFound, "archive %s", archivePath)
	}
	if man.ArchiveChecksum == "" {
		return nil
	}

	sum, err := checksum.DigestFile(m.fs, archivePath, man.ChecksumAlgorithm)
	if err != nil {
		return err
	}
	if sum != man.ArchiveChecksum {
		return errors.WithDetailf(
			errors.Wrapf(errors.ErrArchiveCorrupt, "archive %s does not match its manifest", archivePath),
			"expected %s, computed %s", man.ArchiveChecksum, sum)
	}
	return nil
}

func (m *Manager) verifier() *verify.Verifier {
	return &verify.Verifier{Fs: m.fs, Workers: m.workers, Logger: m.logger}
}

// unlisted returns extracted paths the manifest does not record.
func unlisted(man *manifest.Manifest, extracted []string) []string {
	known := make(map[string]struct{}, len(man.Files))
	for _, f := range man.Files {
		known[f.Path] = struct{}{}
	}
	var extra []string
	for _, p := range extracted {
		if _, ok := known[p]; !ok {
			extra = append(extra, p)
		}
	}
	return extra
}

func fileExists(fsys afero.Fs, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, errors.Wrapf(errors.Mark(err, errors.ErrIO), "stat %s", path)
}
