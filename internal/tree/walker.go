package tree

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/logging"
)

// Walker enumerates regular files on a filesystem.
type Walker struct {
	// Fs is the filesystem walked. Defaults to the OS filesystem.
	Fs afero.Fs

	// SkipUnreadable skips directories that cannot be listed instead of
	// failing the walk.
	SkipUnreadable bool

	// Logger receives skip warnings. When nil the logger in the context is used.
	Logger *slog.Logger

	// Exclude lists slash-separated paths, relative to the root, of files
	// left out of the result.
	Exclude []string
}

// NewWalker returns a Walker over fsys.
func NewWalker(fsys afero.Fs) *Walker {
	return &Walker{Fs: fsys}
}

// Enumerate returns the relative paths of every regular file under root.
//
// A root that does not exist, is not a directory, or cannot be listed fails
// with errors.ErrInvalidRoot. A subdirectory that cannot be listed fails with
// errors.ErrIO naming the directory unless SkipUnreadable is set.
func (w *Walker) Enumerate(ctx context.Context, root string) ([]string, error) {
	fsys := w.fs()
	logger := w.logger(ctx)

	if err := CheckRoot(fsys, root); err != nil {
		return nil, err
	}

	// A trailing separator makes lstat resolve a symlinked root.
	walkRoot := root
	if !strings.HasSuffix(walkRoot, string(filepath.Separator)) {
		walkRoot += string(filepath.Separator)
	}
	cleanRoot := filepath.Clean(root)

	var files []string
	err := afero.Walk(fsys, walkRoot, func(path string, info os.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(cleanRoot, filepath.Clean(path))
		if err != nil {
			return errors.Wrapf(err, "relativizing %s", path)
		}
		rel = filepath.ToSlash(rel)

		if walkErr != nil {
			if rel == "." {
				return errors.Wrapf(errors.Mark(walkErr, errors.ErrInvalidRoot), "reading root %s", root)
			}
			if w.SkipUnreadable {
				logger.Warn("skipping unreadable entry", "path", rel, "error", walkErr)
				if info != nil && !info.IsDir() {
					return nil
				}
				return filepath.SkipDir
			}
			return errors.Wrapf(errors.Mark(walkErr, errors.ErrIO), "reading %s", rel)
		}

		mode := info.Mode()
		switch {
		case rel == ".":
			return nil
		case mode.IsDir():
			return nil
		case mode.IsRegular():
			if slices.Contains(w.Exclude, rel) {
				logger.Debug("excluding file", "path", rel)
				return nil
			}
			files = append(files, rel)
			logger.Log(ctx, logging.LevelTrace, "enumerated file", "path", rel)
			return nil
		case mode&fs.ModeSymlink != 0:
			logger.Warn("skipping symlink", "path", rel)
			return nil
		default:
			logger.Warn("skipping non-regular file", "path", rel, "mode", mode.Type().String())
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	logger.Debug("enumerated tree", "root", root, "files", len(files))
	return files, nil
}

// CheckRoot verifies root is a directory that can be listed, failing with
// errors.ErrInvalidRoot otherwise.
func CheckRoot(fsys afero.Fs, root string) error {
	info, err := fsys.Stat(root)
	if err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrInvalidRoot), "root %s", root)
	}
	if !info.IsDir() {
		return errors.Wrapf(errors.ErrInvalidRoot, "root %s is not a directory", root)
	}

	d, err := fsys.Open(root)
	if err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrInvalidRoot), "opening root %s", root)
	}
	defer d.Close()
	if _, err := d.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(errors.Mark(err, errors.ErrInvalidRoot), "listing root %s", root)
	}
	return nil
}

func (w *Walker) fs() afero.Fs {
	if w.Fs == nil {
		return afero.NewOsFs()
	}
	return w.Fs
}

func (w *Walker) logger(ctx context.Context) *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return logging.FromContext(ctx)
}
