package archive_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"dicomexport/internal/archive"
	"dicomexport/internal/testsupport"
)

func readEntry(t *testing.T, entry archive.Entry) []byte {
	t.Helper()
	rc, err := entry.Open()
	if err != nil {
		t.Fatalf("open %s: %v", entry.Path(), err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read %s: %v", entry.Path(), err)
	}
	return data
}

func TestOpenZipEnumeratesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.zip")
	testsupport.WriteZip(t, path, map[string][]byte{
		"series1/IM0001.dcm": []byte("first"),
		"series1/IM0002.dcm": []byte("second"),
		"README.txt":         []byte("notes"),
	})

	reader, err := archive.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	if reader.Kind() != archive.KindZip {
		t.Fatalf("kind = %q", reader.Kind())
	}

	entries, err := reader.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	byPath := map[string][]byte{}
	for _, entry := range entries {
		byPath[entry.Path()] = readEntry(t, entry)
	}
	if string(byPath["series1/IM0002.dcm"]) != "second" {
		t.Fatalf("unexpected content: %v", byPath)
	}
}

func TestOpenZipEntriesIsRestartable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.zip")
	testsupport.WriteZip(t, path, map[string][]byte{"a.dcm": []byte("a")})

	reader, err := archive.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	first, err := reader.Entries()
	if err != nil {
		t.Fatal(err)
	}
	second, err := reader.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("enumeration not repeatable: %d then %d", len(first), len(second))
	}
	if string(readEntry(t, first[0])) != "a" || string(readEntry(t, second[0])) != "a" {
		t.Fatal("entry streams should be independently readable")
	}
}

func TestOpenISOWalksDepthFirstSorted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.iso")
	testsupport.WriteISO(t, path, map[string][]byte{
		"zeta.txt":           []byte("z"),
		"series1/IM0002.dcm": []byte("two"),
		"series1/IM0001.dcm": []byte("one"),
	})

	reader, err := archive.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	if reader.Kind() != archive.KindISO {
		t.Fatalf("kind = %q", reader.Kind())
	}

	entries, err := reader.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	// Children are visited in name order, directories descended in place.
	if filepath.Base(entries[0].Path()) != "IM0001.dcm" {
		t.Fatalf("unexpected first entry %q", entries[0].Path())
	}
	if string(readEntry(t, entries[0])) != "one" {
		t.Fatal("wrong bytes for first entry")
	}
}

func TestDetectKindByMagicBytes(t *testing.T) {
	dir := t.TempDir()

	zipPath := filepath.Join(dir, "renamed.bin")
	testsupport.WriteZip(t, filepath.Join(dir, "tmp.zip"), map[string][]byte{"a": []byte("a")})
	if err := os.Rename(filepath.Join(dir, "tmp.zip"), zipPath); err != nil {
		t.Fatal(err)
	}
	kind, err := archive.DetectKind(zipPath)
	if err != nil || kind != archive.KindZip {
		t.Fatalf("zip sniff failed: %v %v", kind, err)
	}

	isoPath := filepath.Join(dir, "disc.raw")
	testsupport.WriteISO(t, filepath.Join(dir, "tmp.iso"), map[string][]byte{"a": []byte("a")})
	if err := os.Rename(filepath.Join(dir, "tmp.iso"), isoPath); err != nil {
		t.Fatal(err)
	}
	kind, err = archive.DetectKind(isoPath)
	if err != nil || kind != archive.KindISO {
		t.Fatalf("iso sniff failed: %v %v", kind, err)
	}
}

func TestOpenRejectsUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.bin")
	if err := os.WriteFile(path, []byte("just some text, nothing else"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := archive.Open(path)
	if err == nil {
		t.Fatal("expected error for unsupported file")
	}
}

func TestOpenRejectsCorruptZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	if err := os.WriteFile(path, []byte("PK\x03\x04 truncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := archive.Open(path); err == nil {
		t.Fatal("expected error for corrupt zip")
	}
}
