package manifest

import (
	"bytes"
	"strconv"
	"unicode/utf8"

	"github.com/thoreinstein/veribak/internal/errors"
)

const hexDigits = "0123456789abcdef"

// Canonical returns the byte form the aggregate checksum is computed over.
// The Checksum field is never included. Strings that are not valid UTF-8
// fail with errors.ErrManifestBuildFailed.
func Canonical(m *Manifest) ([]byte, error) {
	if m == nil {
		return nil, errors.Wrap(errors.ErrManifestBuildFailed, "nil manifest")
	}

	var buf bytes.Buffer
	buf.Grow(128 + len(m.Files)*96)

	buf.WriteByte('{')
	if m.ArchiveChecksum != "" {
		if err := writeField(&buf, "archive_checksum", m.ArchiveChecksum); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}
	if err := writeField(&buf, "archive_name", m.ArchiveName); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := writeField(&buf, "checksum_algorithm", m.ChecksumAlgorithm); err != nil {
		return nil, err
	}
	buf.WriteString(`,"creation_time":`)
	buf.WriteString(strconv.FormatInt(m.CreationTime, 10))

	buf.WriteString(`,"files":[`)
	for i, f := range m.Files {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		if err := writeField(&buf, "path", f.Path); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		if err := writeField(&buf, "checksum", f.Checksum); err != nil {
			return nil, err
		}
		buf.WriteByte('}')
	}
	buf.WriteString("]}")

	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key, value string) error {
	buf.WriteByte('"')
	buf.WriteString(key)
	buf.WriteString(`":`)
	if !utf8.ValidString(value) {
		return errors.Wrapf(errors.ErrManifestBuildFailed, "%s %q is not valid UTF-8", key, value)
	}
	writeString(buf, value)
	return nil
}

// writeString quotes s. Multi-byte sequences are copied verbatim since none
// of their bytes fall below 0x80.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if c < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[c>>4])
				buf.WriteByte(hexDigits[c&0xf])
				continue
			}
			buf.WriteByte(c)
		}
	}
	buf.WriteByte('"')
}
