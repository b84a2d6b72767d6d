package catalog_test

import (
	"context"
	"testing"
	"time"

	"dicomexport/internal/catalog"
	"dicomexport/internal/testsupport"
)

func TestRecordAndListRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, runID := range []string{"run-one", "run-two"} {
		err := store.RecordRun(ctx, catalog.Run{
			RunID:       runID,
			ArchivePath: "/data/study.zip",
			Kind:        "zip",
			Destination: "/out/study_zip",
			Written:     3,
			NonDicom:    1,
			Started:     base.Add(time.Duration(i) * time.Minute),
			Finished:    base.Add(time.Duration(i)*time.Minute + 30*time.Second),
		})
		if err != nil {
			t.Fatalf("record %s: %v", runID, err)
		}
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("run count = %d, want 2", len(runs))
	}
	if runs[0].RunID != "run-two" {
		t.Fatalf("newest run first, got %s", runs[0].RunID)
	}
	if runs[1].Written != 3 || runs[1].NonDicom != 1 {
		t.Fatalf("counts not persisted: %+v", runs[1])
	}
	if !runs[1].Started.Equal(base) {
		t.Fatalf("started = %v, want %v", runs[1].Started, base)
	}
}

func TestListRunsLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		err := store.RecordRun(ctx, catalog.Run{
			RunID:       time.Now().Format("150405.000000000") + string(rune('a'+i)),
			ArchivePath: "/data/study.iso",
			Kind:        "iso",
			Destination: "/out/study_iso",
			Started:     time.Now().Add(time.Duration(i) * time.Second),
			Finished:    time.Now().Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("run count = %d, want 2", len(runs))
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	err = store.RecordRun(context.Background(), catalog.Run{
		RunID:       "persisted",
		ArchivePath: "/data/a.zip",
		Kind:        "zip",
		Destination: "/out/a_zip",
		Started:     time.Now(),
		Finished:    time.Now(),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "persisted" {
		t.Fatalf("history lost across reopen: %+v", runs)
	}
}
