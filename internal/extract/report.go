package extract

import (
	"time"

	"dicomexport/internal/archive"
	"dicomexport/internal/dicomfile"
)

// Outcome describes what happened to a single archive entry.
type Outcome string

const (
	// OutcomeWritten means the entry landed at a fresh destination path.
	OutcomeWritten Outcome = "written"
	// OutcomeSkipped means nothing was written: either the whole destination
	// was a cache hit, or the entry is not a DICOM record.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeOverwritten means an existing file was replaced (overwrite on).
	OutcomeOverwritten Outcome = "overwritten"
	// OutcomeRenamed means a conflict suffix was appended to avoid an
	// existing file.
	OutcomeRenamed Outcome = "renamed"
	// OutcomeFailed means the entry could not be read or written.
	OutcomeFailed Outcome = "failed"
)

// File records the fate of one archive entry.
type File struct {
	SourceEntry string
	Destination string
	Class       dicomfile.Class
	Outcome     Outcome
	Error       string
}

// Summary aggregates per-entry outcomes.
type Summary struct {
	Written     int
	Skipped     int
	Overwritten int
	Renamed     int
	Failed      int
	NonDicom    int
}

// Report is the aggregate result of one extraction run.
type Report struct {
	RunID       string
	ArchivePath string
	Kind        archive.Kind
	Destination string
	// DerivedDestination is set when the caller supplied no destination and
	// the engine derived one under the output root.
	DerivedDestination bool
	// CacheHit marks the all-or-nothing skip of a non-empty destination.
	CacheHit bool
	// Existing lists the files already present on a cache hit; rendering
	// consumes these instead of freshly written paths.
	Existing []string
	Files    []File
	NonDicom int
	Started  time.Time
	Finished time.Time
}

// Summary tallies outcomes across all record entries.
func (r *Report) Summary() Summary {
	s := Summary{NonDicom: r.NonDicom}
	for _, f := range r.Files {
		switch f.Outcome {
		case OutcomeWritten:
			s.Written++
		case OutcomeSkipped:
			s.Skipped++
		case OutcomeOverwritten:
			s.Overwritten++
		case OutcomeRenamed:
			s.Renamed++
		case OutcomeFailed:
			s.Failed++
		}
	}
	return s
}

// ExtractedPaths returns the destination files available for rendering, in
// enumeration order. On a cache hit these are the pre-existing files.
func (r *Report) ExtractedPaths() []string {
	if r.CacheHit {
		return append([]string{}, r.Existing...)
	}
	var paths []string
	for _, f := range r.Files {
		switch f.Outcome {
		case OutcomeWritten, OutcomeOverwritten, OutcomeRenamed:
			paths = append(paths, f.Destination)
		}
	}
	return paths
}

// Materialized reports how many record entries were successfully written.
func (r *Report) Materialized() int {
	s := r.Summary()
	return s.Written + s.Overwritten + s.Renamed
}
