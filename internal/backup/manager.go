package backup

import (
	"compress/gzip"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/thoreinstein/veribak/internal/archive"
	"github.com/thoreinstein/veribak/internal/checksum"
)

// Manager handles backup creation, restoration and verification.
type Manager struct {
	fs               afero.Fs
	packager         archive.Packager
	algorithm        string
	clock            func() time.Time
	workers          int
	skipUnreadable   bool
	overwrite        bool
	outputDir        string
	compressionLevel int
	logger           *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithFs sets the filesystem for every read and write.
func WithFs(fsys afero.Fs) Option {
	return func(m *Manager) {
		if fsys != nil {
			m.fs = fsys
		}
	}
}

// WithPackager overrides the archive packager.
func WithPackager(p archive.Packager) Option {
	return func(m *Manager) {
		m.packager = p
	}
}

// WithAlgorithm sets the checksum algorithm for new backups.
func WithAlgorithm(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.algorithm = checksum.Normalize(name)
		}
	}
}

// WithClock sets the source of manifest creation times.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithWorkers bounds concurrent checksum work.
func WithWorkers(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithSkipUnreadable skips unreadable directories during backup.
func WithSkipUnreadable(skip bool) Option {
	return func(m *Manager) {
		m.skipUnreadable = skip
	}
}

// WithOverwrite allows a backup to replace an existing manifest.
func WithOverwrite(overwrite bool) Option {
	return func(m *Manager) {
		m.overwrite = overwrite
	}
}

// WithOutputDir sets the directory relative backup names resolve against.
func WithOutputDir(dir string) Option {
	return func(m *Manager) {
		m.outputDir = dir
	}
}

// WithCompressionLevel sets the gzip level of the default packager.
func WithCompressionLevel(level int) Option {
	return func(m *Manager) {
		m.compressionLevel = level
	}
}

// WithLogger sets the logger. Without it the logger in the context is used.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		fs:               afero.NewOsFs(),
		algorithm:        checksum.Default,
		clock:            time.Now,
		compressionLevel: gzip.DefaultCompression,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.packager == nil {
		m.packager = &archive.TarGz{Level: m.compressionLevel}
	}
	return m
}
