package manifest

import (
	"strings"

	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/paths"
)

// Validate checks the structural rules every manifest must satisfy: a plain
// archive name, a named algorithm, a checksum, and unique safe relative
// paths each with a checksum. It does not check the seal.
func (m *Manifest) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrInvalidManifest, "nil manifest")
	}
	if err := ValidateArchiveName(m.ArchiveName); err != nil {
		return err
	}
	if strings.TrimSpace(m.ChecksumAlgorithm) == "" {
		return errors.Wrap(errors.ErrInvalidManifest, "checksum_algorithm is empty")
	}
	if m.Checksum == "" {
		return errors.Wrap(errors.ErrInvalidManifest, "checksum is empty")
	}

	seen := make(map[string]struct{}, len(m.Files))
	for i, f := range m.Files {
		if _, err := paths.CleanRel(f.Path); err != nil {
			return errors.Wrapf(errors.Mark(err, errors.ErrInvalidManifest), "files[%d]", i)
		}
		if _, dup := seen[f.Path]; dup {
			return errors.Wrapf(errors.ErrInvalidManifest, "duplicate path %q", f.Path)
		}
		seen[f.Path] = struct{}{}
		if f.Checksum == "" {
			return errors.Wrapf(errors.ErrInvalidManifest, "path %q has no checksum", f.Path)
		}
	}
	return nil
}

// ValidateArchiveName rejects names that are empty or carry a directory.
func ValidateArchiveName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.Wrap(errors.ErrInvalidManifest, "archive_name is empty")
	case strings.ContainsAny(name, `/\`), name == ".", name == "..":
		return errors.Wrapf(errors.ErrInvalidManifest, "archive_name %q must be a base name", name)
	}
	return nil
}
