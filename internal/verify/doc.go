// Package verify checks a directory tree against a manifest.
//
// Verification first checks the manifest's own seal; a corrupt manifest fails
// with errors.ErrManifestCorrupt and no file is examined. Every FileRecord is
// then checked and classified, without stopping at the first failure, so one
// [Report] lists every discrepancy.
package verify
