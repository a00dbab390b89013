package verify

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/logging"
	"github.com/thoreinstein/veribak/internal/manifest"
)

func writeTree(t *testing.T, fsys afero.Fs, root string, files map[string]string) {
	t.Helper()
	if err := fsys.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := afero.WriteFile(fsys, filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func build(t *testing.T, fsys afero.Fs, root string) *manifest.Manifest {
	t.Helper()
	b := &manifest.Builder{
		Fs:        fsys,
		Algorithm: "sha3_256",
		Clock:     func() time.Time { return time.Unix(1700000000, 0) },
		Workers:   2,
	}
	m, err := b.Build(context.Background(), root, "nightly.tar.gz")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return m
}

func scenario(t *testing.T) (afero.Fs, *manifest.Manifest) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, "/src", map[string]string{
		"foo/bar.txt": "hello",
		"baz.txt":     "world",
	})
	return fsys, build(t, fsys, "/src")
}

func TestVerify_RoundTrip(t *testing.T) {
	fsys, m := scenario(t)

	v := &Verifier{Fs: fsys, Logger: logging.ForTest(t)}
	report, err := v.Verify(context.Background(), m, "/src")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !report.Passed() {
		t.Fatalf("Status = %s, failures = %+v", report.Status, report.Failures())
	}
	if len(report.Results) != 2 || report.Count(KindOK) != 2 {
		t.Errorf("Results = %+v", report.Results)
	}
	if report.Err() != nil {
		t.Errorf("Err() = %v, want nil", report.Err())
	}
}

func TestVerify_AppendedByte(t *testing.T) {
	fsys, m := scenario(t)
	if err := afero.WriteFile(fsys, "/src/baz.txt", []byte("world!"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := NewVerifier(fsys).Verify(context.Background(), m, "/src")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if report.Status != StatusFail {
		t.Fatalf("Status = %s, want fail", report.Status)
	}

	failures := report.Failures()
	if len(failures) != 1 {
		t.Fatalf("Failures() = %+v, want one", failures)
	}
	got := failures[0]
	if got.Path != "baz.txt" || got.Kind != KindChecksumMismatch {
		t.Errorf("failure = %+v, want baz.txt checksum_mismatch", got)
	}
	if got.Actual != "d10d4a08cf02b0ffef87b500bb4221e53472bc24457b4430c38a781d19465957" {
		t.Errorf("Actual = %s", got.Actual)
	}
	if !errors.Is(report.Err(), errors.ErrVerificationFailed) {
		t.Errorf("Err() = %v, want ErrVerificationFailed", report.Err())
	}
}

func TestVerify_Missing(t *testing.T) {
	fsys, m := scenario(t)
	if err := fsys.Remove("/src/foo/bar.txt"); err != nil {
		t.Fatal(err)
	}

	report, err := NewVerifier(fsys).Verify(context.Background(), m, "/src")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	failures := report.Failures()
	if len(failures) != 1 || failures[0].Path != "foo/bar.txt" || failures[0].Kind != KindMissing {
		t.Errorf("Failures() = %+v, want foo/bar.txt missing", failures)
	}
	if r, _ := findResult(report, "baz.txt"); r.Kind != KindOK {
		t.Errorf("baz.txt kind = %s, want ok", r.Kind)
	}
}

func TestVerify_NoShortCircuit(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, "/src", map[string]string{
		"a.txt": "a",
		"b.txt": "b",
		"c.txt": "c",
		"d.txt": "d",
	})
	m := build(t, fsys, "/src")

	if err := fsys.Remove("/src/a.txt"); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fsys, "/src/c.txt", []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fsys.Remove("/src/d.txt"); err != nil {
		t.Fatal(err)
	}

	report, err := (&Verifier{Fs: fsys, Workers: 1}).Verify(context.Background(), m, "/src")
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]Kind{
		"a.txt": KindMissing,
		"b.txt": KindOK,
		"c.txt": KindChecksumMismatch,
		"d.txt": KindMissing,
	}
	if len(report.Results) != len(want) {
		t.Fatalf("Results = %+v", report.Results)
	}
	for i, res := range report.Results {
		if res.Path != m.Files[i].Path {
			t.Errorf("Results[%d].Path = %s, want manifest order %s", i, res.Path, m.Files[i].Path)
		}
		if res.Kind != want[res.Path] {
			t.Errorf("%s kind = %s, want %s", res.Path, res.Kind, want[res.Path])
		}
	}
}

func TestVerify_ManifestCorrupt(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(m *manifest.Manifest)
	}{
		{name: "file checksum", tamper: func(m *manifest.Manifest) { m.Files[0].Checksum = strings.Repeat("0", 64) }},
		{name: "archive name", tamper: func(m *manifest.Manifest) { m.ArchiveName = "evil.tar.gz" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys, m := scenario(t)
			tt.tamper(m)

			report, err := NewVerifier(fsys).Verify(context.Background(), m, "/src")
			if !errors.Is(err, errors.ErrManifestCorrupt) {
				t.Fatalf("Verify() error = %v, want ErrManifestCorrupt", err)
			}
			if report != nil {
				t.Errorf("no report should be produced for a corrupt manifest, got %+v", report)
			}
		})
	}
}

func TestVerify_SealCheckedBeforeRoot(t *testing.T) {
	fsys, m := scenario(t)
	m.Files[0].Checksum = strings.Repeat("0", 64)

	_, err := NewVerifier(fsys).Verify(context.Background(), m, "/gone")
	if !errors.Is(err, errors.ErrManifestCorrupt) {
		t.Errorf("Verify() error = %v, want ErrManifestCorrupt", err)
	}
}

func TestVerify_FatalErrors(t *testing.T) {
	fsys, m := scenario(t)

	t.Run("unsupported algorithm", func(t *testing.T) {
		bad := *m
		bad.ChecksumAlgorithm = "whirlpool"
		if _, err := NewVerifier(fsys).Verify(context.Background(), &bad, "/src"); !errors.Is(err, errors.ErrUnsupportedAlgorithm) {
			t.Errorf("Verify() error = %v, want ErrUnsupportedAlgorithm", err)
		}
	})

	t.Run("missing root", func(t *testing.T) {
		if _, err := NewVerifier(fsys).Verify(context.Background(), m, "/gone"); !errors.Is(err, errors.ErrInvalidRoot) {
			t.Errorf("Verify() error = %v, want ErrInvalidRoot", err)
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		if _, err := NewVerifier(fsys).Verify(context.Background(), m, "/src/baz.txt"); !errors.Is(err, errors.ErrInvalidRoot) {
			t.Errorf("Verify() error = %v, want ErrInvalidRoot", err)
		}
	})

	t.Run("nil manifest", func(t *testing.T) {
		if _, err := NewVerifier(fsys).Verify(context.Background(), nil, "/src"); !errors.Is(err, errors.ErrInvalidManifest) {
			t.Errorf("Verify() error = %v, want ErrInvalidManifest", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := NewVerifier(fsys).Verify(ctx, m, "/src"); !errors.Is(err, context.Canceled) {
			t.Errorf("Verify() error = %v, want context.Canceled", err)
		}
	})
}

func TestVerify_DirectoryInPlaceOfFile(t *testing.T) {
	fsys, m := scenario(t)
	if err := fsys.Remove("/src/baz.txt"); err != nil {
		t.Fatal(err)
	}
	if err := fsys.Mkdir("/src/baz.txt", 0o755); err != nil {
		t.Fatal(err)
	}

	report, err := NewVerifier(fsys).Verify(context.Background(), m, "/src")
	if err != nil {
		t.Fatal(err)
	}
	r, _ := findResult(report, "baz.txt")
	if r.Kind != KindIOError {
		t.Errorf("baz.txt kind = %s, want io_error", r.Kind)
	}
	if !errors.Is(r.Err, errors.ErrIO) {
		t.Errorf("Err = %v, want ErrIO", r.Err)
	}
}

func TestVerify_UnsafePathIsIOError(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, "/src", map[string]string{"a.txt": "a"})
	writeTree(t, fsys, "/", map[string]string{"secret.txt": "s"})

	m := &manifest.Manifest{
		ArchiveName:       "a.tar.gz",
		ChecksumAlgorithm: "sha256",
		Files:             []manifest.FileRecord{{Path: "../secret.txt", Checksum: "00"}},
	}
	if err := m.Seal(); err != nil {
		t.Fatal(err)
	}

	report, err := NewVerifier(fsys).Verify(context.Background(), m, "/src")
	if err != nil {
		t.Fatal(err)
	}
	if report.Results[0].Kind != KindIOError {
		t.Errorf("kind = %s, want io_error", report.Results[0].Kind)
	}
}

func TestVerify_SymlinkIsIOError(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	fsys := afero.NewOsFs()
	m := build(t, fsys, root)

	if err := os.Rename(filepath.Join(root, "a.txt"), filepath.Join(root, "b.txt")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "b.txt"), filepath.Join(root, "a.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	report, err := NewVerifier(fsys).Verify(context.Background(), m, root)
	if err != nil {
		t.Fatal(err)
	}
	if report.Results[0].Kind != KindIOError {
		t.Errorf("kind = %s, want io_error", report.Results[0].Kind)
	}
}

func TestVerify_UnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	fsys := afero.NewOsFs()
	m := build(t, fsys, root)

	if err := os.Chmod(path, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(path, 0o644) })

	report, err := NewVerifier(fsys).Verify(context.Background(), m, root)
	if err != nil {
		t.Fatal(err)
	}
	if report.Results[0].Kind != KindIOError {
		t.Errorf("kind = %s, want io_error", report.Results[0].Kind)
	}
}

func findResult(r *Report, path string) (Result, bool) {
	for _, res := range r.Results {
		if res.Path == path {
			return res, true
		}
	}
	return Result{}, false
}
