package verify

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"syscall"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/thoreinstein/veribak/internal/checksum"
	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/logging"
	"github.com/thoreinstein/veribak/internal/manifest"
	"github.com/thoreinstein/veribak/internal/paths"
	"github.com/thoreinstein/veribak/internal/tree"
)

// Verifier checks trees against manifests.
type Verifier struct {
	// Fs is the filesystem read. Defaults to the OS filesystem.
	Fs afero.Fs

	// Workers bounds concurrent file checks. Values below 1 mean
	// runtime.NumCPU().
	Workers int

	// Logger overrides the logger carried in the context.
	Logger *slog.Logger
}

// NewVerifier returns a Verifier over fsys.
func NewVerifier(fsys afero.Fs) *Verifier {
	return &Verifier{Fs: fsys}
}

// Verify checks every file recorded in m against the tree at root.
//
// The returned error is non-nil only when verification could not run: an
// unsupported algorithm, a corrupt manifest (errors.ErrManifestCorrupt), an
// inaccessible root (errors.ErrInvalidRoot) or cancellation. The seal is
// checked before the root is touched. Per-file
// problems are recorded in the report.
func (v *Verifier) Verify(ctx context.Context, m *manifest.Manifest, root string) (*Report, error) {
	if m == nil {
		return nil, errors.Wrap(errors.ErrInvalidManifest, "nil manifest")
	}
	if _, err := checksum.Lookup(m.ChecksumAlgorithm); err != nil {
		return nil, err
	}

	fsys := v.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	logger := v.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	if err := m.VerifySeal(); err != nil {
		return nil, err
	}
	if err := tree.CheckRoot(fsys, root); err != nil {
		return nil, err
	}

	report := &Report{
		ArchiveName: m.ArchiveName,
		Algorithm:   m.ChecksumAlgorithm,
		Root:        root,
		Results:     make([]Result, len(m.Files)),
	}

	workers := v.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range m.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := checkFile(fsys, root, rec, m.ChecksumAlgorithm)
			report.Results[i] = res
			logger.Debug("verified file", "path", res.Path, "kind", string(res.Kind))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.finish()
	logger.Info("verification finished",
		"archive", m.ArchiveName,
		"status", string(report.Status),
		"files", len(report.Results),
		"failures", len(report.Failures()))
	return report, nil
}

// checkFile classifies one record. It never returns an error; problems are
// folded into the result.
func checkFile(fsys afero.Fs, root string, rec manifest.FileRecord, alg string) Result {
	res := Result{Path: rec.Path, Expected: rec.Checksum}

	full, err := paths.Join(root, rec.Path)
	if err != nil {
		return ioResult(res, err)
	}

	info, err := lstat(fsys, full)
	if err != nil {
		if isMissing(err) {
			res.Kind = KindMissing
			return res
		}
		return ioResult(res, errors.Wrapf(errors.Mark(err, errors.ErrIO), "stat %s", rec.Path))
	}
	if !info.Mode().IsRegular() {
		return ioResult(res, errors.Wrapf(errors.ErrIO, "%s is not a regular file (%s)", rec.Path, info.Mode().Type()))
	}

	sum, err := checksum.DigestFile(fsys, full, alg)
	if err != nil {
		if isMissing(err) {
			res.Kind = KindMissing
			return res
		}
		return ioResult(res, err)
	}

	res.Actual = sum
	if sum != rec.Checksum {
		res.Kind = KindChecksumMismatch
		return res
	}
	res.Kind = KindOK
	return res
}

func ioResult(res Result, err error) Result {
	res.Kind = KindIOError
	res.Err = err
	res.Message = err.Error()
	return res
}

func lstat(fsys afero.Fs, name string) (os.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return fsys.Stat(name)
}

// isMissing treats a path whose parent is a regular file as absent.
func isMissing(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
