package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"dicomexport/internal/archive"
	"dicomexport/internal/config"
	"dicomexport/internal/dicomfile"
	"dicomexport/internal/fileutil"
	"dicomexport/internal/logging"
	"dicomexport/internal/services"
)

const component = "extractor"

// lockSuffix names the sibling lock file guarding a destination against
// concurrent runs. It lives next to the destination, not inside it, so the
// empty-directory cache check never sees it.
const lockSuffix = ".lock"

// Engine materializes DICOM records from an archive into a destination tree.
type Engine struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs an engine. A nil logger disables logging.
func New(cfg *config.Config, logger *slog.Logger) *Engine {
	return &Engine{cfg: cfg, logger: logging.NewComponentLogger(logger, component)}
}

// DerivedDestination computes the deterministic destination for an archive
// when the caller supplies none: "<basename>_<kind>" under the output root.
func (e *Engine) DerivedDestination(archivePath string, kind archive.Kind) string {
	base := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	return filepath.Join(e.cfg.Paths.OutputDir, fmt.Sprintf("%s_%s", base, kind))
}

// Run extracts all DICOM records from archivePath into dest. An empty dest
// selects the derived destination. The returned report is non-nil whenever
// the archive could be opened, even if the run error is non-nil.
func (e *Engine) Run(ctx context.Context, archivePath, dest string, overwrite bool) (*Report, error) {
	reader, err := archive.Open(archivePath)
	if err != nil {
		return nil, services.Wrap(services.ErrArchiveOpen, component, "open", archivePath, err)
	}
	defer reader.Close()

	derived := dest == ""
	if derived {
		dest = e.DerivedDestination(archivePath, reader.Kind())
	}

	report := &Report{
		ArchivePath:        archivePath,
		Kind:               reader.Kind(),
		Destination:        dest,
		DerivedDestination: derived,
		Started:            time.Now().UTC(),
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, services.Wrap(services.ErrValidation, component, "create destination", dest, err)
	}
	if err := checkDestination(dest, e.cfg.Extraction.MinFreeSpaceMiB); err != nil {
		return nil, err
	}

	if e.cfg.Extraction.LockDestination {
		lock := flock.New(filepath.Clean(dest) + lockSuffix)
		locked, err := lock.TryLock()
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, component, "lock destination", dest, err)
		}
		if !locked {
			return nil, services.Wrap(services.ErrValidation, component, "lock destination",
				fmt.Sprintf("another run is extracting into %s", dest), nil)
		}
		defer func() { _ = lock.Unlock() }()
	}

	entries, err := reader.Entries()
	if err != nil {
		return nil, services.Wrap(services.ErrArchiveOpen, component, "enumerate", archivePath, err)
	}

	if !overwrite {
		hasFiles, err := fileutil.DirHasFiles(dest)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, component, "inspect destination", dest, err)
		}
		if hasFiles {
			return e.cacheHit(ctx, report, entries, dest)
		}
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		e.processEntry(entry, dest, overwrite, report)
	}

	report.Finished = time.Now().UTC()
	summary := report.Summary()
	e.logger.Info("extraction finished",
		logging.String(logging.FieldArchive, archivePath),
		logging.String(logging.FieldDestination, dest),
		logging.Int("written", summary.Written),
		logging.Int("overwritten", summary.Overwritten),
		logging.Int("renamed", summary.Renamed),
		logging.Int("failed", summary.Failed),
		logging.Int("non_dicom", summary.NonDicom),
	)

	if report.Materialized() == 0 {
		return report, services.Wrap(services.ErrNoRecords, component, "",
			fmt.Sprintf("no DICOM records materialized from %s", archivePath), nil)
	}
	return report, nil
}

// cacheHit marks every record entry skipped and reports the files already in
// the destination so a render pass can still run against them.
func (e *Engine) cacheHit(ctx context.Context, report *Report, entries []archive.Entry, dest string) (*Report, error) {
	report.CacheHit = true

	existing, err := fileutil.ListFiles(dest)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, component, "inspect destination", dest, err)
	}
	report.Existing = existing

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		classification := e.classify(entry)
		switch classification.Class {
		case dicomfile.ClassNotDicom:
			report.NonDicom++
		case dicomfile.ClassUnreadable:
			report.Files = append(report.Files, File{
				SourceEntry: entry.Path(),
				Class:       classification.Class,
				Outcome:     OutcomeFailed,
				Error:       classification.Reason,
			})
		default:
			report.Files = append(report.Files, File{
				SourceEntry: entry.Path(),
				Destination: filepath.Join(dest, fileutil.SanitizeFileName(filepath.Base(entry.Path()))),
				Class:       classification.Class,
				Outcome:     OutcomeSkipped,
			})
		}
	}

	report.Finished = time.Now().UTC()
	e.logger.Info("destination already populated, skipping extraction",
		logging.String(logging.FieldDestination, dest),
		logging.Int("existing_files", len(report.Existing)),
	)
	return report, nil
}

func (e *Engine) processEntry(entry archive.Entry, dest string, overwrite bool, report *Report) {
	classification := e.classify(entry)
	switch classification.Class {
	case dicomfile.ClassNotDicom:
		report.NonDicom++
		e.logger.Debug("skipping non-DICOM entry", logging.String(logging.FieldEntry, entry.Path()))
		return
	case dicomfile.ClassUnreadable:
		report.Files = append(report.Files, File{
			SourceEntry: entry.Path(),
			Class:       classification.Class,
			Outcome:     OutcomeFailed,
			Error:       classification.Reason,
		})
		e.logger.Warn("unreadable entry",
			logging.String(logging.FieldEntry, entry.Path()),
			logging.String("reason", classification.Reason),
		)
		return
	}

	name := fileutil.SanitizeFileName(filepath.Base(entry.Path()))
	destPath := filepath.Join(dest, name)
	outcome := OutcomeWritten
	if _, err := os.Stat(destPath); err == nil {
		if overwrite {
			outcome = OutcomeOverwritten
		} else {
			destPath = fileutil.UniquePath(dest, name)
			outcome = OutcomeRenamed
		}
	}

	if err := e.writeEntry(entry, destPath); err != nil {
		report.Files = append(report.Files, File{
			SourceEntry: entry.Path(),
			Destination: destPath,
			Class:       classification.Class,
			Outcome:     OutcomeFailed,
			Error:       err.Error(),
		})
		e.logger.Warn("entry write failed",
			logging.String(logging.FieldEntry, entry.Path()),
			logging.Error(err),
		)
		return
	}

	report.Files = append(report.Files, File{
		SourceEntry: entry.Path(),
		Destination: destPath,
		Class:       classification.Class,
		Outcome:     outcome,
	})
	e.logger.Debug("entry extracted",
		logging.String(logging.FieldEntry, entry.Path()),
		logging.String(logging.FieldDestination, destPath),
		logging.String("outcome", string(outcome)),
	)
}

func (e *Engine) classify(entry archive.Entry) dicomfile.Classification {
	rc, err := entry.Open()
	if err != nil {
		return dicomfile.Classification{
			Class:  dicomfile.ClassUnreadable,
			Reason: fmt.Sprintf("open entry: %v", err),
		}
	}
	defer rc.Close()
	return dicomfile.Classify(rc, e.cfg.Extraction.ClassifyWindowBytes)
}

func (e *Engine) writeEntry(entry archive.Entry, destPath string) error {
	rc, err := entry.Open()
	if err != nil {
		return services.Wrap(services.ErrArchiveRead, component, "open entry", entry.Path(), err)
	}
	defer rc.Close()

	if _, err := fileutil.WriteStream(rc, destPath); err != nil {
		return services.Wrap(services.ErrArchiveRead, component, "write entry", entry.Path(), err)
	}
	fileutil.BestEffortTimes(destPath, entry.Modified())
	return nil
}
