package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/thoreinstein/veribak/internal/errors"
)

// AppName is the directory name used under the XDG config home.
const AppName = "veribak"

// Artifact suffixes.
const (
	ArchiveExt  = ".tar.gz"
	ManifestExt = ".manifest"
	LockExt     = ".lock"
)

// ErrUnsafePath indicates a relative path that is absolute, unclean, or
// escapes its root.
var ErrUnsafePath = errors.New("unsafe relative path")

// DefaultDirPerm is the permission for directories veribak creates.
const DefaultDirPerm = 0o755

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// ConfigDir returns <ConfigHome>/veribak.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ExpandHome expands a leading ~ to the user's home directory.
// The path is returned unchanged if the home directory cannot be resolved.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// Artifacts names the files that make up one backup.
type Artifacts struct {
	// Dir is the directory holding all artifacts.
	Dir string
	// Base is the backup name without extension.
	Base string
	// Archive is the full path of the .tar.gz file.
	Archive string
	// Manifest is the full path of the .manifest file.
	Manifest string
	// Lock is the full path of the manifest lock file.
	Lock string
}

// ArchiveName returns the archive base name stored in manifests.
func (a Artifacts) ArchiveName() string {
	return a.Base + ArchiveExt
}

// ArtifactsFor derives artifact paths from a backup name such as
// "out/nightly". An explicit .tar.gz or .manifest suffix is dropped. outputDir
// is prepended to relative names when non-empty.
func ArtifactsFor(name, outputDir string) (Artifacts, error) {
	name = ExpandHome(strings.TrimSpace(name))
	name = strings.TrimSuffix(name, ArchiveExt)
	name = strings.TrimSuffix(name, ManifestExt)

	if outputDir != "" && !filepath.IsAbs(name) {
		name = filepath.Join(ExpandHome(outputDir), name)
	}

	dir, base := filepath.Split(filepath.Clean(name))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return Artifacts{}, errors.Newf("invalid archive name %q", name)
	}
	if dir == "" {
		dir = "."
	}
	dir = filepath.Clean(dir)

	manifest := filepath.Join(dir, base+ManifestExt)
	return Artifacts{
		Dir:      dir,
		Base:     base,
		Archive:  filepath.Join(dir, base+ArchiveExt),
		Manifest: manifest,
		Lock:     manifest + LockExt,
	}, nil
}

// CleanRel validates a slash-separated path relative to some root and returns
// it unchanged if it is safe. It never rewrites a path into a different one,
// because a manifest entry must name exactly one file.
func CleanRel(p string) (string, error) {
	switch {
	case p == "":
		return "", errors.Wrap(ErrUnsafePath, "empty path")
	case strings.ContainsRune(p, '\x00'):
		return "", errors.Wrapf(ErrUnsafePath, "%q contains NUL", p)
	case strings.ContainsRune(p, '\\'):
		return "", errors.Wrapf(ErrUnsafePath, "%q contains a backslash", p)
	case strings.HasPrefix(p, "/"):
		return "", errors.Wrapf(ErrUnsafePath, "%q is absolute", p)
	case filepath.VolumeName(filepath.FromSlash(p)) != "":
		return "", errors.Wrapf(ErrUnsafePath, "%q has a volume name", p)
	}

	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "":
			return "", errors.Wrapf(ErrUnsafePath, "%q has an empty segment", p)
		case ".", "..":
			return "", errors.Wrapf(ErrUnsafePath, "%q has a %q segment", p, seg)
		}
	}
	return p, nil
}

// Join resolves a validated relative path under root using the OS separator.
func Join(root, rel string) (string, error) {
	if _, err := CleanRel(rel); err != nil {
		return "", err
	}
	return filepath.Join(root, filepath.FromSlash(rel)), nil
}
