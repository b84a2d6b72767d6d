package archive

import (
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/kdomanski/iso9660"
)

type isoReader struct {
	file  *os.File
	image *iso9660.Image
}

func openISO(filePath string) (Reader, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open iso %s: %w", filePath, err)
	}
	image, err := iso9660.OpenImage(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("parse iso %s: %w", filePath, err)
	}
	return &isoReader{file: f, image: image}, nil
}

func (r *isoReader) Kind() Kind { return KindISO }

// Entries walks the directory record tree depth-first with children sorted by
// name, which keeps enumeration order stable across runs on the same image.
func (r *isoReader) Entries() ([]Entry, error) {
	root, err := r.image.RootDir()
	if err != nil {
		return nil, fmt.Errorf("read iso root directory: %w", err)
	}
	var entries []Entry
	if err := collectISO(root, "", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func collectISO(dir *iso9660.File, prefix string, entries *[]Entry) error {
	children, err := dir.GetChildren()
	if err != nil {
		return fmt.Errorf("list iso directory %s: %w", prefix, err)
	}
	sort.Slice(children, func(i, j int) bool {
		return cleanISOName(children[i].Name()) < cleanISOName(children[j].Name())
	})
	for _, child := range children {
		name := cleanISOName(child.Name())
		if name == "" || name == "." || name == ".." {
			continue
		}
		childPath := path.Join(prefix, name)
		if child.IsDir() {
			if err := collectISO(child, childPath, entries); err != nil {
				return err
			}
			continue
		}
		*entries = append(*entries, isoEntry{file: child, path: childPath})
	}
	return nil
}

// cleanISOName drops the ";1" version suffix and trailing dot some 9660
// writers append to identifiers.
func cleanISOName(name string) string {
	if idx := strings.IndexByte(name, ';'); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSuffix(name, ".")
}

func (r *isoReader) Close() error { return r.file.Close() }

type isoEntry struct {
	file *iso9660.File
	path string
}

func (e isoEntry) Path() string { return e.path }

func (e isoEntry) Size() int64 { return e.file.Size() }

func (e isoEntry) Modified() time.Time { return e.file.ModTime() }

func (e isoEntry) Open() (io.ReadCloser, error) {
	return io.NopCloser(e.file.Reader()), nil
}
