package extract_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dicomexport/internal/archive"
	"dicomexport/internal/extract"
	"dicomexport/internal/services"
	"dicomexport/internal/testsupport"
)

func newEngine(t *testing.T) (*extract.Engine, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	return extract.New(cfg, nil), cfg.Paths.OutputDir
}

func writeMixedZip(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "study.zip")
	testsupport.WriteZip(t, path, map[string][]byte{
		"DICOM/IM0001.dcm": testsupport.DicomBytes(t, testsupport.DefaultImageSpec()),
		"DICOM/IM0002.dcm": testsupport.DicomBytes(t, testsupport.DefaultImageSpec()),
		"DICOM/IM0003.dcm": testsupport.DicomBytes(t, testsupport.DefaultImageSpec()),
		"README.txt":       []byte("burned by the scanner workstation"),
	})
	return path
}

func TestRunExtractsRecordsAndSkipsNonDicom(t *testing.T) {
	engine, _ := newEngine(t)
	archivePath := writeMixedZip(t, t.TempDir())

	report, err := engine.Run(context.Background(), archivePath, "", false)
	if err != nil {
		t.Fatal(err)
	}

	summary := report.Summary()
	if summary.Written != 3 {
		t.Fatalf("written = %d", summary.Written)
	}
	if summary.NonDicom != 1 {
		t.Fatalf("non-dicom = %d", summary.NonDicom)
	}
	if summary.Failed != 0 {
		t.Fatalf("failed = %d", summary.Failed)
	}

	paths := report.ExtractedPaths()
	if len(paths) != 3 {
		t.Fatalf("extracted paths = %v", paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing extracted file %s: %v", p, err)
		}
	}
}

func TestRunDerivesDestinationFromBasenameAndKind(t *testing.T) {
	engine, outputDir := newEngine(t)
	archivePath := writeMixedZip(t, t.TempDir())

	report, err := engine.Run(context.Background(), archivePath, "", false)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(outputDir, "study_zip")
	if report.Destination != want {
		t.Fatalf("destination = %q, want %q", report.Destination, want)
	}
	if report.Kind != archive.KindZip {
		t.Fatalf("kind = %q", report.Kind)
	}
}

func TestRunSecondInvocationIsCacheHit(t *testing.T) {
	engine, _ := newEngine(t)
	archivePath := writeMixedZip(t, t.TempDir())
	ctx := context.Background()

	first, err := engine.Run(ctx, archivePath, "", false)
	if err != nil {
		t.Fatal(err)
	}

	stamp := map[string]int64{}
	for _, p := range first.ExtractedPaths() {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatal(err)
		}
		stamp[p] = info.Size()
	}

	second, err := engine.Run(ctx, archivePath, "", false)
	if err != nil {
		t.Fatalf("cache hit must succeed: %v", err)
	}
	if !second.CacheHit {
		t.Fatal("expected cache hit")
	}
	summary := second.Summary()
	if summary.Skipped != 3 || summary.Written != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	// Idempotence: identical file set, nothing modified.
	paths := second.ExtractedPaths()
	if len(paths) != len(stamp) {
		t.Fatalf("file set changed: %v", paths)
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() != stamp[p] {
			t.Fatalf("file %s modified on cache hit", p)
		}
	}
}

func TestRunConflictSuffixWithinSingleRun(t *testing.T) {
	engine, _ := newEngine(t)
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "dupes.zip")
	// Same base name in two directories collides at the flat destination.
	testsupport.WriteZip(t, archivePath, map[string][]byte{
		"a/IM0001.dcm": testsupport.DicomBytes(t, testsupport.DefaultImageSpec()),
		"b/IM0001.dcm": testsupport.DicomBytes(t, testsupport.DefaultImageSpec()),
	})

	report, err := engine.Run(context.Background(), archivePath, "", false)
	if err != nil {
		t.Fatal(err)
	}

	summary := report.Summary()
	if summary.Written != 1 || summary.Renamed != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	seen := map[string]bool{}
	for _, f := range report.Files {
		if seen[f.Destination] {
			t.Fatalf("duplicate destination %q", f.Destination)
		}
		seen[f.Destination] = true
	}
	if !seen[filepath.Join(report.Destination, "IM0001_1.dcm")] {
		t.Fatalf("expected conflict suffix, got %v", report.Files)
	}
}

func TestRunOverwriteReplacesExistingFiles(t *testing.T) {
	engine, _ := newEngine(t)
	archivePath := writeMixedZip(t, t.TempDir())
	ctx := context.Background()

	if _, err := engine.Run(ctx, archivePath, "", false); err != nil {
		t.Fatal(err)
	}
	report, err := engine.Run(ctx, archivePath, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if report.CacheHit {
		t.Fatal("overwrite run must not cache-hit")
	}
	summary := report.Summary()
	if summary.Overwritten != 3 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRunNoQualifyingRecords(t *testing.T) {
	engine, _ := newEngine(t)
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "nothing.zip")
	testsupport.WriteZip(t, archivePath, map[string][]byte{
		"readme.txt": []byte("no medical content here"),
	})

	report, err := engine.Run(context.Background(), archivePath, "", false)
	if !errors.Is(err, services.ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
	if report == nil || report.NonDicom != 1 {
		t.Fatalf("report = %+v", report)
	}
	if services.ExitCode(err) != services.ExitNoRecords {
		t.Fatalf("exit code = %d", services.ExitCode(err))
	}
}

func TestRunUnparsableArchiveFailsWithOpenError(t *testing.T) {
	engine, _ := newEngine(t)
	path := filepath.Join(t.TempDir(), "garbage.zip")
	if err := os.WriteFile(path, []byte("PK\x03\x04but it is not really a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := engine.Run(context.Background(), path, "", false)
	if !errors.Is(err, services.ErrArchiveOpen) {
		t.Fatalf("expected ErrArchiveOpen, got %v", err)
	}
	if services.ExitCode(err) != services.ExitArchiveUnreadable {
		t.Fatalf("exit code = %d", services.ExitCode(err))
	}
}

func TestRunExplicitDestinationUsedVerbatim(t *testing.T) {
	engine, _ := newEngine(t)
	archivePath := writeMixedZip(t, t.TempDir())
	dest := filepath.Join(t.TempDir(), "chosen")

	report, err := engine.Run(context.Background(), archivePath, dest, false)
	if err != nil {
		t.Fatal(err)
	}
	if report.Destination != dest {
		t.Fatalf("destination = %q", report.Destination)
	}
	if _, err := os.Stat(filepath.Join(dest, "IM0001.dcm")); err != nil {
		t.Fatalf("file not in explicit destination: %v", err)
	}
}

func TestRunFromISOImage(t *testing.T) {
	engine, _ := newEngine(t)
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "study.iso")
	testsupport.WriteISO(t, archivePath, map[string][]byte{
		"DICOM/IM0001.dcm": testsupport.DicomBytes(t, testsupport.DefaultImageSpec()),
		"AUTORUN.INF":      []byte("[autorun]\nopen=viewer.exe\n"),
	})

	report, err := engine.Run(context.Background(), archivePath, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if report.Kind != archive.KindISO {
		t.Fatalf("kind = %q", report.Kind)
	}
	summary := report.Summary()
	if summary.Written != 1 || summary.NonDicom != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRunDirectoryIndexExtractedAsRecord(t *testing.T) {
	engine, _ := newEngine(t)
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "study.zip")
	testsupport.WriteZip(t, archivePath, map[string][]byte{
		"DICOMDIR":         testsupport.DicomBytes(t, testsupport.DirectoryIndexSpec()),
		"DICOM/IM0001.dcm": testsupport.DicomBytes(t, testsupport.DefaultImageSpec()),
	})

	report, err := engine.Run(context.Background(), archivePath, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if report.Summary().Written != 2 {
		t.Fatalf("summary = %+v", report.Summary())
	}
	if _, err := os.Stat(filepath.Join(report.Destination, "DICOMDIR")); err != nil {
		t.Fatalf("DICOMDIR not extracted: %v", err)
	}
}
