package testsupport

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/kdomanski/iso9660"
)

// WriteZip creates a ZIP archive at path containing the given entries, in
// sorted name order so fixture archives are deterministic.
func WriteZip(t testing.TB, path string, entries map[string][]byte) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, name := range sortedKeys(entries) {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip entry %s: %v", name, err)
		}
		if _, err := entry.Write(entries[name]); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}

// WriteISO creates an ISO 9660 image at path containing the given entries.
func WriteISO(t testing.TB, path string, entries map[string][]byte) {
	t.Helper()

	writer, err := iso9660.NewWriter()
	if err != nil {
		t.Fatalf("new iso writer: %v", err)
	}
	defer func() {
		if err := writer.Cleanup(); err != nil {
			t.Errorf("iso writer cleanup: %v", err)
		}
	}()

	for _, name := range sortedKeys(entries) {
		if err := writer.AddFile(bytes.NewReader(entries[name]), name); err != nil {
			t.Fatalf("iso entry %s: %v", name, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if err := writer.WriteTo(f, "DICOMEXPORT"); err != nil {
		t.Fatalf("write iso: %v", err)
	}
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func sortedKeys(entries map[string][]byte) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
