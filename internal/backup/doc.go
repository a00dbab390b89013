// Package backup sequences the walker, manifest builder, archive packager
// and verifier into the backup, restore and verify operations.
//
// A backup named "out/nightly" produces two sibling artifacts:
//
//	out/nightly.tar.gz    the archive
//	out/nightly.manifest  the sealed manifest
//
// While a backup runs, out/nightly.manifest.lock is held exclusively so two
// backups can never write the same manifest. Both artifacts are written to a
// temporary file and renamed into place.
//
// # Basic Usage
//
//	mgr := backup.NewManager(
//		backup.WithAlgorithm("sha3_256"),
//		backup.WithWorkers(4),
//	)
//	res, err := mgr.Backup(ctx, "/srv/data", "out/nightly")
//
//	report, err := mgr.Restore(ctx, "out/nightly.manifest", "/srv/restore")
//	if err == nil && !report.Passed() {
//		// report.Failures() lists every missing or changed file
//	}
//
// Restore checks the manifest seal and the recorded archive checksum before
// anything is extracted.
package backup
