package manifest

// FileRecord is the recorded checksum of one file.
type FileRecord struct {
	// Path is the slash-separated path relative to the backed-up root.
	Path string `json:"path"`

	// Checksum is the lowercase hex digest of the file content.
	Checksum string `json:"checksum"`
}

// Manifest describes one backup.
type Manifest struct {
	// ArchiveChecksum is the digest of the archive file, empty until the
	// archive has been written.
	ArchiveChecksum string `json:"archive_checksum,omitempty"`

	// ArchiveName is the base name of the sibling archive.
	ArchiveName string `json:"archive_name"`

	// Checksum is the aggregate digest over the canonical form.
	Checksum string `json:"checksum"`

	// ChecksumAlgorithm names the algorithm for both file and aggregate
	// checksums.
	ChecksumAlgorithm string `json:"checksum_algorithm"`

	// CreationTime is the build time in unix seconds.
	CreationTime int64 `json:"creation_time"`

	// Files is sorted by path.
	Files []FileRecord `json:"files"`
}

// Paths returns the recorded paths in manifest order.
func (m *Manifest) Paths() []string {
	out := make([]string, len(m.Files))
	for i, f := range m.Files {
		out[i] = f.Path
	}
	return out
}

// Lookup returns the record for path.
func (m *Manifest) Lookup(path string) (FileRecord, bool) {
	for _, f := range m.Files {
		if f.Path == path {
			return f, true
		}
	}
	return FileRecord{}, false
}
