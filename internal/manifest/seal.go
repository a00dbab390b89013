package manifest

import (
	"github.com/thoreinstein/veribak/internal/checksum"
	"github.com/thoreinstein/veribak/internal/errors"
)

// ComputeChecksum returns the aggregate digest of the manifest's current
// fields using its own algorithm.
func (m *Manifest) ComputeChecksum() (string, error) {
	canon, err := Canonical(m)
	if err != nil {
		return "", err
	}
	return checksum.DigestBytes(canon, m.ChecksumAlgorithm)
}

// Seal recomputes and stores the aggregate checksum.
func (m *Manifest) Seal() error {
	sum, err := m.ComputeChecksum()
	if err != nil {
		return err
	}
	m.Checksum = sum
	return nil
}

// VerifySeal reports errors.ErrManifestCorrupt when the stored checksum does
// not match the manifest's fields. The error detail carries both digests.
func (m *Manifest) VerifySeal() error {
	sum, err := m.ComputeChecksum()
	if err != nil {
		return err
	}
	if sum != m.Checksum {
		return errors.WithDetailf(
			errors.Wrapf(errors.ErrManifestCorrupt, "aggregate checksum mismatch for %s", m.ArchiveName),
			"expected %s, computed %s", m.Checksum, sum)
	}
	return nil
}
