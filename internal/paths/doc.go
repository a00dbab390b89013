// Package paths provides path resolution utilities for veribak.
//
// It wraps github.com/adrg/xdg for the configuration directory, derives the
// sibling artifact names of a backup (archive, manifest, lock file), and
// validates the slash-separated relative paths stored in manifests and
// archives.
//
// # Artifacts
//
// A backup named "out/nightly" produces:
//
//	out/nightly.tar.gz         the archive
//	out/nightly.manifest       the manifest document
//	out/nightly.manifest.lock  held only while the manifest is written
//
// # Relative Paths
//
// [CleanRel] is the single gatekeeper for paths that come from untrusted
// documents. It rejects absolute paths, backslashes, empty or "." segments,
// and any ".." segment, so a joined path can never escape its root.
package paths
