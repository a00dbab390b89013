// Package checksum computes hex content digests under a named algorithm.
//
// Algorithm names are lowercase with underscores (sha256, sha3_256, blake2b)
// so manifests written by other tools remain readable. A manifest records the
// name it was built with, and verification always resolves that recorded name
// rather than the caller's current default.
package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"

	"github.com/thoreinstein/veribak/internal/errors"
)

// Algorithm names understood by Lookup.
const (
	MD5      = "md5"
	SHA1     = "sha1"
	SHA224   = "sha224"
	SHA256   = "sha256"
	SHA384   = "sha384"
	SHA512   = "sha512"
	SHA3_224 = "sha3_224"
	SHA3_256 = "sha3_256"
	SHA3_384 = "sha3_384"
	SHA3_512 = "sha3_512"
	BLAKE2b  = "blake2b"
	BLAKE2s  = "blake2s"
)

// Default is the algorithm used when none is configured.
const Default = SHA3_256

var registry = map[string]func() hash.Hash{
	MD5:      md5.New,
	SHA1:     sha1.New,
	SHA224:   sha256.New224,
	SHA256:   sha256.New,
	SHA384:   sha512.New384,
	SHA512:   sha512.New,
	SHA3_224: sha3.New224,
	SHA3_256: sha3.New256,
	SHA3_384: sha3.New384,
	SHA3_512: sha3.New512,
	BLAKE2b: func() hash.Hash {
		h, _ := blake2b.New512(nil)
		return h
	},
	BLAKE2s: func() hash.Hash {
		h, _ := blake2s.New256(nil)
		return h
	},
}

// Lookup returns a constructor for the named algorithm.
// Names are matched case-insensitively and "-" is accepted for "_".
func Lookup(name string) (func() hash.Hash, error) {
	newHash, ok := registry[Normalize(name)]
	if !ok {
		return nil, errors.WithDetailf(
			errors.Wrapf(errors.ErrUnsupportedAlgorithm, "%q", name),
			"supported: %s", strings.Join(Algorithms(), ", "))
	}
	return newHash, nil
}

// Normalize returns the canonical spelling of an algorithm name.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

// Supported reports whether name resolves to a known algorithm.
func Supported(name string) bool {
	_, ok := registry[Normalize(name)]
	return ok
}

// Algorithms returns the supported algorithm names in sorted order.
func Algorithms() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Digest reads r to EOF and returns the lowercase hex digest of its bytes.
// Read failures are marked with errors.ErrIO.
func Digest(r io.Reader, algorithm string) (string, error) {
	newHash, err := Lookup(algorithm)
	if err != nil {
		return "", err
	}

	h := newHash()
	if _, err := io.Copy(h, r); err != nil {
		return "", errors.Wrap(errors.Mark(err, errors.ErrIO), "reading input")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestBytes returns the lowercase hex digest of data.
func DigestBytes(data []byte, algorithm string) (string, error) {
	newHash, err := Lookup(algorithm)
	if err != nil {
		return "", err
	}

	h := newHash()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestFile returns the digest of the file at path on fsys.
// Open and read failures name the path and are marked with errors.ErrIO.
func DigestFile(fsys afero.Fs, path, algorithm string) (string, error) {
	if _, err := Lookup(algorithm); err != nil {
		return "", err
	}

	f, err := fsys.Open(path)
	if err != nil {
		return "", errors.Wrapf(errors.Mark(err, errors.ErrIO), "opening %s", path)
	}
	defer f.Close()

	sum, err := Digest(f, algorithm)
	if err != nil {
		return "", errors.Wrapf(err, "checksumming %s", path)
	}
	return sum, nil
}
