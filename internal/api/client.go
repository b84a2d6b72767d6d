package api

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"dicomexport/internal/catalog"
	"dicomexport/internal/config"
	"dicomexport/internal/extract"
	"dicomexport/internal/gallery"
	"dicomexport/internal/logging"
	"dicomexport/internal/render"
	"dicomexport/internal/services"
)

const component = "api"

// ExtractRequest selects an archive and destination for one run.
type ExtractRequest struct {
	ArchivePath string
	// Destination overrides the derived destination when non-empty.
	Destination string
	Overwrite   bool
}

// RenderRequest asks for images and a gallery from a completed extraction.
type RenderRequest struct {
	Report *extract.Report
}

// GalleryReport summarizes one render pass.
type GalleryReport struct {
	RunID        string
	ExportDir    string
	DocumentPath string
	Images       []render.Result
	Rendered     int
	NoImage      int
	Failed       int
}

// Client wires the extraction and rendering pipeline together.
type Client struct {
	cfg      *config.Config
	logger   *slog.Logger
	engine   *extract.Engine
	renderer *render.Renderer
	builder  *gallery.Builder
	store    *catalog.Store
}

// New builds a client. The catalog is opened only when enabled; a catalog
// open failure is returned so the operator sees it rather than silently
// losing history.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	client := &Client{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, component),
		engine:   extract.New(cfg, logger),
		renderer: render.New(cfg, logger),
		builder:  gallery.New(cfg, logger),
	}
	if cfg.Catalog.Enabled {
		store, err := catalog.Open(cfg)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, component, "open catalog", cfg.Catalog.Path, err)
		}
		client.store = store
	}
	return client, nil
}

// Close releases the catalog connection.
func (c *Client) Close() error {
	return c.store.Close()
}

// Catalog returns the run-history store, or nil when disabled.
func (c *Client) Catalog() *catalog.Store {
	return c.store
}

// Extract runs one extraction and records it in the catalog. The report is
// returned alongside ErrNoRecords so callers can still render or inspect
// what happened.
func (c *Client) Extract(ctx context.Context, req ExtractRequest) (*extract.Report, error) {
	runID := uuid.NewString()
	c.logger.Info("extraction starting",
		logging.String(logging.FieldRunID, runID),
		logging.String(logging.FieldArchive, req.ArchivePath),
	)

	report, err := c.engine.Run(ctx, req.ArchivePath, req.Destination, req.Overwrite)
	if report != nil {
		report.RunID = runID
		c.record(ctx, report, 0)
	}
	if err != nil {
		return report, err
	}
	return report, nil
}

// Render produces annotated images for every extracted record and writes the
// gallery document. Decode failures are tallied, not fatal.
func (c *Client) Render(ctx context.Context, req RenderRequest) (*GalleryReport, error) {
	if req.Report == nil {
		return nil, services.Wrap(services.ErrValidation, component, "render", "nil extraction report", nil)
	}

	exportDir := ExportDir(req.Report)
	out := &GalleryReport{RunID: req.Report.RunID, ExportDir: exportDir}

	for _, sourcePath := range req.Report.ExtractedPaths() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		result, err := c.renderer.Render(sourcePath, exportDir)
		switch {
		case err != nil && errors.Is(err, services.ErrDecode):
			out.Failed++
			c.logger.Warn("record did not decode",
				logging.String(logging.FieldEntry, sourcePath),
				logging.Error(err),
			)
		case err != nil:
			return out, err
		case result == nil:
			out.NoImage++
		default:
			out.Images = append(out.Images, *result)
			out.Rendered++
		}
	}

	document, err := c.builder.Build(out.Images, exportDir)
	if err != nil {
		return out, err
	}
	out.DocumentPath = document

	c.logger.Info("render finished",
		logging.String(logging.FieldRunID, out.RunID),
		logging.Int("rendered", out.Rendered),
		logging.Int("no_image", out.NoImage),
		logging.Int("failed", out.Failed),
	)
	c.updateRendered(ctx, req.Report, out.Rendered)
	return out, nil
}

// ExportDir is the render output location for a run. An explicit destination
// gains an export subdirectory; a derived destination gets a sibling
// directory so the record cache stays a flat file set.
func ExportDir(report *extract.Report) string {
	if report.DerivedDestination {
		return filepath.Clean(report.Destination) + "_export"
	}
	return filepath.Join(report.Destination, "export")
}

func (c *Client) record(ctx context.Context, report *extract.Report, rendered int) {
	if c.store == nil {
		return
	}
	summary := report.Summary()
	finished := report.Finished
	if finished.IsZero() {
		finished = time.Now().UTC()
	}
	err := c.store.RecordRun(ctx, catalog.Run{
		RunID:       report.RunID,
		ArchivePath: report.ArchivePath,
		Kind:        string(report.Kind),
		Destination: report.Destination,
		CacheHit:    report.CacheHit,
		Written:     summary.Written,
		Skipped:     summary.Skipped,
		Overwritten: summary.Overwritten,
		Renamed:     summary.Renamed,
		Failed:      summary.Failed,
		NonDicom:    summary.NonDicom,
		Rendered:    rendered,
		Started:     report.Started,
		Finished:    finished,
	})
	if err != nil {
		c.logger.Warn("catalog record failed",
			logging.String(logging.FieldRunID, report.RunID),
			logging.Error(err),
		)
	}
}

func (c *Client) updateRendered(ctx context.Context, report *extract.Report, rendered int) {
	if c.store == nil || rendered == 0 {
		return
	}
	if err := c.store.UpdateRendered(ctx, report.RunID, rendered); err != nil {
		c.logger.Warn("catalog update failed",
			logging.String(logging.FieldRunID, report.RunID),
			logging.Error(err),
		)
	}
}
