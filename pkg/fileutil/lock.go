package fileutil

import (
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/thoreinstein/veribak/internal/errors"
)

// Lock is an advisory lock file created with O_EXCL. Only the holder whose
// token is in the file may release it.
type Lock struct {
	fsys  afero.Fs
	path  string
	token string
}

// AcquireLock creates the lock file at path. If the file already exists the
// returned error is marked with errors.ErrLocked.
func AcquireLock(fsys afero.Fs, path string) (*Lock, error) {
	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrLocked), "lock %s is held", path)
		}
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrIO), "creating lock %s", path)
	}

	token := uuid.NewString()
	_, werr := f.WriteString(token + "\n")
	cerr := f.Close()
	if werr != nil || cerr != nil {
		_ = fsys.Remove(path)
		if werr == nil {
			werr = cerr
		}
		return nil, errors.Wrapf(errors.Mark(werr, errors.ErrIO), "writing lock %s", path)
	}

	return &Lock{fsys: fsys, path: path, token: token}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release removes the lock file if it still carries this holder's token.
func (l *Lock) Release() error {
	data, err := afero.ReadFile(l.fsys, l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(errors.Mark(err, errors.ErrIO), "reading lock %s", l.path)
	}
	if string(data) != l.token+"\n" {
		return errors.Newf("lock %s is owned by another holder", l.path)
	}
	if err := l.fsys.Remove(l.path); err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrIO), "removing lock %s", l.path)
	}
	return nil
}
