// Package manifest builds, seals, validates and persists backup manifests.
//
// A manifest binds an archive name, a checksum algorithm, a creation time and
// one FileRecord per backed-up file. Its aggregate checksum is the digest of
// the canonical form produced by [Canonical], which writes the fields in a
// fixed order as compact JSON:
//
//	{"archive_checksum":S,"archive_name":S,"checksum_algorithm":S,
//	 "creation_time":N,"files":[{"path":S,"checksum":S},...]}
//
// archive_checksum appears only when set. The on-disk document produced by
// [Save] is ordinary indented JSON; its layout never affects the seal.
//
// # Building
//
//	b := manifest.NewBuilder(afero.NewOsFs(), "sha3_256")
//	m, err := b.Build(ctx, "/srv/data", "nightly.tar.gz")
//
// Build returns a sealed manifest. Any later change to its fields must be
// followed by [Manifest.Seal] or [Manifest.VerifySeal] will report
// errors.ErrManifestCorrupt.
package manifest
