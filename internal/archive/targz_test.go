package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/logging"
)

func writeTree(t *testing.T, fsys afero.Fs, root string, files map[string]string) []string {
	t.Helper()
	var names []string
	for name, content := range files {
		if err := afero.WriteFile(fsys, filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func TestTarGz_RoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	files := map[string]string{
		"foo/bar.txt":     "hello",
		"baz.txt":         "world",
		"deep/a/b/c.bin":  "\x00\x01\x02",
		"empty.txt":       "",
		"spaces in/n.txt": "spaced",
	}
	names := writeTree(t, fsys, "/src", files)

	p := &TarGz{Level: gzip.BestSpeed, Logger: logging.ForTest(t)}
	if err := p.Create(context.Background(), fsys, "/src", names, "/out/a.tar.gz"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := p.Extract(context.Background(), fsys, "/out/a.tar.gz", "/restore")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !slices.Equal(got, names) {
		t.Errorf("Extract() = %v, want %v", got, names)
	}

	for name, want := range files {
		data, err := afero.ReadFile(fsys, filepath.Join("/restore", name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", name, data, want)
		}
	}
}

func TestTarGz_Deterministic(t *testing.T) {
	fsys := afero.NewMemMapFs()
	names := writeTree(t, fsys, "/src", map[string]string{
		"b.txt":   "b",
		"a.txt":   "a",
		"c/d.txt": "d",
	})

	p := NewTarGz(gzip.DefaultCompression)
	if err := p.Create(context.Background(), fsys, "/src", names, "/one.tar.gz"); err != nil {
		t.Fatal(err)
	}

	reversed := slices.Clone(names)
	slices.Reverse(reversed)
	if err := p.Create(context.Background(), fsys, "/src", reversed, "/two.tar.gz"); err != nil {
		t.Fatal(err)
	}

	one, _ := afero.ReadFile(fsys, "/one.tar.gz")
	two, _ := afero.ReadFile(fsys, "/two.tar.gz")
	if !bytes.Equal(one, two) {
		t.Error("archives of the same tree differ")
	}
}

func TestTarGz_HeadersCarryNoOwnerInfo(t *testing.T) {
	fsys := afero.NewMemMapFs()
	names := writeTree(t, fsys, "/src", map[string]string{"a.txt": "a"})

	if err := NewTarGz(gzip.DefaultCompression).Create(context.Background(), fsys, "/src", names, "/a.tar.gz"); err != nil {
		t.Fatal(err)
	}

	f, err := fsys.Open("/a.tar.gz")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	hdr, err := tar.NewReader(gz).Next()
	if err != nil {
		t.Fatal(err)
	}
	if hdr.Name != "a.txt" || hdr.Mode != 0o644 || hdr.Uid != 0 || hdr.Uname != "" || hdr.ModTime.Unix() != 0 {
		t.Errorf("header = %+v", hdr)
	}
}

func TestTarGz_CreateMissingFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, "/src", map[string]string{"a.txt": "a"})

	err := NewTarGz(gzip.DefaultCompression).Create(context.Background(), fsys, "/src", []string{"a.txt", "gone.txt"}, "/a.tar.gz")
	if !errors.Is(err, errors.ErrIO) {
		t.Fatalf("Create() error = %v, want ErrIO", err)
	}
	if exists, _ := afero.Exists(fsys, "/a.tar.gz"); exists {
		t.Error("failed Create should not leave an archive behind")
	}
}

func TestTarGz_CreateCancelled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	names := writeTree(t, fsys, "/src", map[string]string{"a.txt": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewTarGz(gzip.DefaultCompression).Create(ctx, fsys, "/src", names, "/a.tar.gz"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Create() error = %v, want context.Canceled", err)
	}
	if exists, _ := afero.Exists(fsys, "/a.tar.gz"); exists {
		t.Error("cancelled Create should not leave an archive behind")
	}
}

func TestTarGz_InvalidLevel(t *testing.T) {
	fsys := afero.NewMemMapFs()
	names := writeTree(t, fsys, "/src", map[string]string{"a.txt": "a"})
	if err := NewTarGz(42).Create(context.Background(), fsys, "/src", names, "/a.tar.gz"); err == nil {
		t.Error("Create() with level 42 should fail")
	}
}

// craft writes a tar.gz with the given headers, each holding body.
func craft(t *testing.T, fsys afero.Fs, path string, hdrs ...*tar.Header) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, h := range hdrs {
		body := []byte("evil")
		if h.Typeflag == tar.TypeReg {
			h.Size = int64(len(body))
		}
		if err := tw.WriteHeader(h); err != nil {
			t.Fatal(err)
		}
		if h.Typeflag == tar.TypeReg {
			if _, err := tw.Write(body); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fsys, path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestTarGz_ExtractRejectsUnsafeEntries(t *testing.T) {
	tests := []struct {
		name string
		hdr  *tar.Header
	}{
		{name: "parent traversal", hdr: &tar.Header{Name: "../evil.txt", Typeflag: tar.TypeReg, Mode: 0o644}},
		{name: "nested traversal", hdr: &tar.Header{Name: "a/../../evil.txt", Typeflag: tar.TypeReg, Mode: 0o644}},
		{name: "absolute", hdr: &tar.Header{Name: "/tmp/evil.txt", Typeflag: tar.TypeReg, Mode: 0o644}},
		{name: "symlink", hdr: &tar.Header{Name: "link", Linkname: "/etc/passwd", Typeflag: tar.TypeSymlink}},
		{name: "hardlink", hdr: &tar.Header{Name: "hard", Linkname: "a.txt", Typeflag: tar.TypeLink}},
		{name: "fifo", hdr: &tar.Header{Name: "pipe", Typeflag: tar.TypeFifo}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			craft(t, fsys, "/evil.tar.gz", tt.hdr)

			_, err := NewTarGz(gzip.DefaultCompression).Extract(context.Background(), fsys, "/evil.tar.gz", "/restore/inner")
			if !errors.Is(err, errors.ErrArchiveCorrupt) {
				t.Fatalf("Extract() error = %v, want ErrArchiveCorrupt", err)
			}
			for _, p := range []string{"/restore/evil.txt", "/evil.txt", "/tmp/evil.txt"} {
				if exists, _ := afero.Exists(fsys, p); exists {
					t.Errorf("%s was written outside the destination", p)
				}
			}
		})
	}
}

func TestTarGz_ExtractDuplicateEntry(t *testing.T) {
	fsys := afero.NewMemMapFs()
	craft(t, fsys, "/dup.tar.gz",
		&tar.Header{Name: "a.txt", Typeflag: tar.TypeReg, Mode: 0o644},
		&tar.Header{Name: "a.txt", Typeflag: tar.TypeReg, Mode: 0o644},
	)

	_, err := NewTarGz(gzip.DefaultCompression).Extract(context.Background(), fsys, "/dup.tar.gz", "/restore")
	if !errors.Is(err, errors.ErrArchiveCorrupt) {
		t.Errorf("Extract() error = %v, want ErrArchiveCorrupt", err)
	}
}

func TestTarGz_ExtractAcceptsDirectories(t *testing.T) {
	fsys := afero.NewMemMapFs()
	craft(t, fsys, "/dirs.tar.gz",
		&tar.Header{Name: "d/", Typeflag: tar.TypeDir, Mode: 0o755},
		&tar.Header{Name: "d/f.txt", Typeflag: tar.TypeReg, Mode: 0o644},
	)

	got, err := NewTarGz(gzip.DefaultCompression).Extract(context.Background(), fsys, "/dirs.tar.gz", "/restore")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !slices.Equal(got, []string{"d/f.txt"}) {
		t.Errorf("Extract() = %v, want [d/f.txt]", got)
	}
}

func TestTarGz_ExtractCorrupt(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/junk.tar.gz", []byte("definitely not gzip"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewTarGz(gzip.DefaultCompression).Extract(context.Background(), fsys, "/junk.tar.gz", "/restore")
	if !errors.Is(err, errors.ErrArchiveCorrupt) {
		t.Errorf("Extract() error = %v, want ErrArchiveCorrupt", err)
	}
}

func TestTarGz_ExtractMissing(t *testing.T) {
	_, err := NewTarGz(gzip.DefaultCompression).Extract(context.Background(), afero.NewMemMapFs(), "/nope.tar.gz", "/restore")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Extract() error = %v, want ErrNotFound", err)
	}
}

func TestTarGz_ExtractRefusesSymlinkedDestination(t *testing.T) {
	base := t.TempDir()
	outside := filepath.Join(base, "outside")
	dest := filepath.Join(base, "dest")
	for _, d := range []string{outside, dest} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Symlink(outside, filepath.Join(dest, "d")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	fsys := afero.NewOsFs()
	archivePath := filepath.Join(base, "a.tar.gz")
	craft(t, fsys, archivePath, &tar.Header{Name: "d/f.txt", Typeflag: tar.TypeReg, Mode: 0o644})

	_, err := NewTarGz(gzip.DefaultCompression).Extract(context.Background(), fsys, archivePath, dest)
	if err == nil || !strings.Contains(err.Error(), "symlink") {
		t.Fatalf("Extract() error = %v, want symlink refusal", err)
	}
	if _, err := os.Stat(filepath.Join(outside, "f.txt")); !os.IsNotExist(err) {
		t.Error("entry was written through the symlink")
	}
}
