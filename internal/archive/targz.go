package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/logging"
	"github.com/thoreinstein/veribak/internal/paths"
	"github.com/thoreinstein/veribak/pkg/fileutil"
)

const (
	// entryMode is the permission recorded for every file entry.
	entryMode = 0o644

	// archivePerm is the permission of the archive file itself.
	archivePerm = 0o644
)

// TarGz is a deterministic tar+gzip Packager.
type TarGz struct {
	// Level is a compress/gzip level. Use gzip.DefaultCompression (-1) for
	// the library default.
	Level int

	// ModTime is recorded on every entry. The zero value means the unix epoch.
	ModTime time.Time

	// Logger overrides the logger carried in the context.
	Logger *slog.Logger
}

// NewTarGz returns a TarGz using the given gzip level.
func NewTarGz(level int) *TarGz {
	return &TarGz{Level: level}
}

// Create implements Packager. The archive is written to a temporary file and
// renamed into place, so a failed or cancelled Create leaves dest untouched.
func (p *TarGz) Create(ctx context.Context, fsys afero.Fs, root string, files []string, dest string) error {
	logger := p.logger(ctx)

	sorted := slices.Clone(files)
	slices.Sort(sorted)

	modTime := p.ModTime
	if modTime.IsZero() {
		modTime = time.Unix(0, 0)
	}

	err := fileutil.AtomicWrite(fsys, dest, archivePerm, func(w io.Writer) error {
		gz, err := gzip.NewWriterLevel(w, p.Level)
		if err != nil {
			return errors.Wrapf(err, "gzip level %d", p.Level)
		}
		tw := tar.NewWriter(gz)

		for _, rel := range sorted {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := addFile(fsys, tw, root, rel, modTime); err != nil {
				return err
			}
			logger.Log(ctx, logging.LevelTrace, "archived file", "path", rel)
		}

		if err := tw.Close(); err != nil {
			return errors.Wrap(errors.Mark(err, errors.ErrIO), "closing tar stream")
		}
		if err := gz.Close(); err != nil {
			return errors.Wrap(errors.Mark(err, errors.ErrIO), "closing gzip stream")
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "creating archive %s", dest)
	}

	logger.Debug("created archive", "path", dest, "files", len(sorted))
	return nil
}

func addFile(fsys afero.Fs, tw *tar.Writer, root, rel string, modTime time.Time) error {
	full, err := paths.Join(root, rel)
	if err != nil {
		return err
	}

	f, err := fsys.Open(full)
	if err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrIO), "opening %s", full)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrIO), "stat %s", full)
	}
	if !info.Mode().IsRegular() {
		return errors.Wrapf(errors.ErrIO, "%s is not a regular file", full)
	}

	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     rel,
		Mode:     entryMode,
		Size:     info.Size(),
		ModTime:  modTime,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrIO), "writing header for %s", rel)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrIO), "archiving %s", full)
	}
	return nil
}

// Extract implements Packager.
func (p *TarGz) Extract(ctx context.Context, fsys afero.Fs, archivePath string, dest string) ([]string, error) {
	logger := p.logger(ctx)

	f, err := fsys.Open(archivePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrNotFound), "archive %s", archivePath)
		}
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrIO), "opening archive %s", archivePath)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrArchiveCorrupt), "reading archive %s", archivePath)
	}
	defer gz.Close()

	if err := fsys.MkdirAll(dest, paths.DefaultDirPerm); err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrIO), "creating %s", dest)
	}

	tr := tar.NewReader(gz)
	seen := make(map[string]struct{})
	var extracted []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrArchiveCorrupt), "reading archive %s", archivePath)
		}

		name := strings.TrimSuffix(hdr.Name, "/")
		if _, err := paths.CleanRel(name); err != nil {
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrArchiveCorrupt), "archive entry %q", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeXGlobalHeader:
			continue
		case tar.TypeDir:
			if err := safeMkdirAll(fsys, dest, name); err != nil {
				return nil, err
			}
		case tar.TypeReg:
			if _, dup := seen[name]; dup {
				return nil, errors.Wrapf(errors.ErrArchiveCorrupt, "archive entry %q appears twice", name)
			}
			seen[name] = struct{}{}
			if err := extractFile(fsys, tr, dest, name); err != nil {
				return nil, err
			}
			extracted = append(extracted, name)
			logger.Log(ctx, logging.LevelTrace, "extracted file", "path", name)
		default:
			return nil, errors.Wrapf(errors.ErrArchiveCorrupt, "archive entry %q has unsupported type %q", name, hdr.Typeflag)
		}
	}

	logger.Debug("extracted archive", "path", archivePath, "dest", dest, "files", len(extracted))
	return extracted, nil
}

func extractFile(fsys afero.Fs, r io.Reader, dest, name string) error {
	if dir := path.Dir(name); dir != "." {
		if err := safeMkdirAll(fsys, dest, dir); err != nil {
			return err
		}
	}
	if err := rejectLinks(fsys, dest, name); err != nil {
		return err
	}

	target := filepath.Join(dest, filepath.FromSlash(name))
	out, err := fsys.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, entryMode)
	if err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrIO), "creating %s", target)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return errors.Wrapf(errors.Mark(err, errors.ErrArchiveCorrupt), "extracting %s", name)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrIO), "closing %s", target)
	}
	return nil
}

// safeMkdirAll creates dest/rel after checking no existing component is a
// symlink.
func safeMkdirAll(fsys afero.Fs, dest, rel string) error {
	if err := rejectLinks(fsys, dest, rel); err != nil {
		return err
	}
	dir := filepath.Join(dest, filepath.FromSlash(rel))
	if err := fsys.MkdirAll(dir, paths.DefaultDirPerm); err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrIO), "creating %s", dir)
	}
	return nil
}

// rejectLinks fails if any existing component of dest/rel is a symlink, which
// would let an entry escape dest.
func rejectLinks(fsys afero.Fs, dest, rel string) error {
	lst, ok := fsys.(afero.Lstater)
	if !ok {
		return nil
	}

	cur := dest
	for _, seg := range strings.Split(rel, "/") {
		cur = filepath.Join(cur, seg)
		info, _, err := lst.LstatIfPossible(cur)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return errors.Wrapf(errors.Mark(err, errors.ErrIO), "stat %s", cur)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.Wrapf(paths.ErrUnsafePath, "%s is a symlink", cur)
		}
	}
	return nil
}

func (p *TarGz) logger(ctx context.Context) *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return logging.FromContext(ctx)
}
