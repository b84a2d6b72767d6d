// Package fileutil provides the small filesystem helpers shared by the
// extraction and rendering pipeline.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteStream copies r to dst with default permissions (0o644), creating
// parent directories as needed. Returns the number of bytes written.
func WriteStream(r io.Reader, dst string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	written, err := io.Copy(out, r)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return written, err
	}
	if err := out.Close(); err != nil {
		return written, err
	}
	return written, nil
}

// fileNameReplacer swaps separator-like characters for dashes and strips the
// rest of the characters that give filesystems trouble.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

// SanitizeFileName makes an archive entry name safe to use as a destination
// file name. Empty or dot-only results fall back to "record".
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(fileNameReplacer.Replace(strings.TrimSpace(name)))
	if name == "" || strings.Trim(name, ".") == "" {
		return "record"
	}
	return name
}

// BestEffortTimes applies a modification time to path, ignoring failure.
// Archive timestamps are advisory; content is what matters.
func BestEffortTimes(path string, modified time.Time) {
	if modified.IsZero() {
		return
	}
	_ = os.Chtimes(path, modified, modified)
}

// UniquePath returns name inside dir, appending _1, _2, ... before the
// extension until no file of that name exists.
func UniquePath(dir, name string) string {
	candidate := filepath.Join(dir, name)
	if _, err := os.Stat(candidate); err != nil {
		return candidate
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}

// ListFiles returns the regular files directly inside dir, sorted by name.
// A missing directory yields an empty slice.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// DirHasFiles reports whether dir contains at least one regular file.
func DirHasFiles(dir string) (bool, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}
