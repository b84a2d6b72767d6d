package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Kind identifies a supported container format.
type Kind string

const (
	KindZip Kind = "zip"
	KindISO Kind = "iso"
)

// ErrUnsupportedFormat is returned when a file is neither a ZIP archive nor
// an ISO 9660 image.
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// Entry is a regular file inside an open container. The stream is lazy and
// read-only; Open may be called more than once.
type Entry interface {
	// Path is the entry's logical path inside the container, using forward
	// slashes.
	Path() string
	// Size is the uncompressed byte length.
	Size() int64
	// Modified is the entry timestamp recorded in the container, zero when
	// the format does not carry one.
	Modified() time.Time
	// Open returns a fresh reader over the entry bytes.
	Open() (io.ReadCloser, error)
}

// Reader enumerates the entries of an open container. Entries may be called
// repeatedly; each call re-enumerates from the container's table of contents.
type Reader interface {
	Kind() Kind
	Entries() ([]Entry, error)
	Close() error
}

// Open opens the container at path, detecting its kind.
func Open(path string) (Reader, error) {
	kind, err := DetectKind(path)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindZip:
		return openZip(path)
	case KindISO:
		return openISO(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// DetectKind determines the container format from the file extension, with a
// magic-byte fallback for files named without one.
func DetectKind(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return KindZip, nil
	case ".iso", ".img":
		return KindISO, nil
	}
	return sniffKind(path)
}

const (
	// isoMagicOffset is where the primary volume descriptor's "CD001"
	// identifier sits: sector 16, one byte past the descriptor type.
	isoMagicOffset = 16*2048 + 1
	isoMagic       = "CD001"
)

func sniffKind(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	header := make([]byte, 4)
	if _, err := io.ReadFull(f, header); err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if header[0] == 'P' && header[1] == 'K' {
		return KindZip, nil
	}

	magic := make([]byte, len(isoMagic))
	if _, err := f.ReadAt(magic, isoMagicOffset); err == nil && string(magic) == isoMagic {
		return KindISO, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}
