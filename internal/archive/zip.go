package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"time"
)

type zipReader struct {
	rc *zip.ReadCloser
}

func openZip(path string) (Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip %s: %w", path, err)
	}
	return &zipReader{rc: rc}, nil
}

func (z *zipReader) Kind() Kind { return KindZip }

func (z *zipReader) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, len(z.rc.File))
	for _, file := range z.rc.File {
		if file.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, zipEntry{file: file})
	}
	return entries, nil
}

func (z *zipReader) Close() error { return z.rc.Close() }

type zipEntry struct {
	file *zip.File
}

func (e zipEntry) Path() string { return e.file.Name }

func (e zipEntry) Size() int64 { return int64(e.file.UncompressedSize64) }

func (e zipEntry) Modified() time.Time { return e.file.Modified }

func (e zipEntry) Open() (io.ReadCloser, error) { return e.file.Open() }
