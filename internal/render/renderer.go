package render

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
	"golang.org/x/image/font"

	"dicomexport/internal/config"
	"dicomexport/internal/dicomfile"
	"dicomexport/internal/logging"
	"dicomexport/internal/services"
)

const component = "renderer"

// Result pairs a rendered image with the metadata stamped onto it.
type Result struct {
	OutputPath string
	Meta       dicomfile.Metadata
}

// Renderer decodes extracted records and writes annotated PNG rasters.
type Renderer struct {
	cfg      *config.Config
	logger   *slog.Logger
	face     font.Face
	fontPath string
}

// New constructs a renderer, resolving the overlay font once.
func New(cfg *config.Config, logger *slog.Logger) *Renderer {
	componentLogger := logging.NewComponentLogger(logger, component)
	face, fontPath := resolveFace(cfg.Rendering.FontCandidates, cfg.Rendering.FontSize, componentLogger)
	return &Renderer{
		cfg:      cfg,
		logger:   componentLogger,
		face:     face,
		fontPath: fontPath,
	}
}

// FontPath reports the resolved TTF path, empty when the bundled bitmap face
// is in use.
func (r *Renderer) FontPath() string { return r.fontPath }

// Render decodes the record at sourcePath and writes an annotated PNG into
// exportDir. A record without pixel data returns (nil, nil): that is a valid
// outcome, not a failure. Malformed pixel data returns a decode error.
func (r *Renderer) Render(sourcePath, exportDir string) (*Result, error) {
	dataset, err := dicom.ParseFile(sourcePath, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, component, "parse", sourcePath, err)
	}
	meta := dicomfile.MetadataFromDataset(dataset, sourcePath)

	element, err := dataset.FindElementByTag(tag.PixelData)
	if err != nil {
		// No pixel data at all, e.g. a DICOMDIR index.
		r.logger.Debug("record has no pixel data", logging.String("source", sourcePath))
		return nil, nil
	}

	info, ok := element.Value.GetValue().(dicom.PixelDataInfo)
	if !ok || len(info.Frames) == 0 {
		return nil, nil
	}

	native, err := info.Frames[0].GetNativeFrame()
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, component, "decode frame", sourcePath, err)
	}
	if native.Rows <= 0 || native.Cols <= 0 || len(native.Data) < native.Rows*native.Cols {
		return nil, services.Wrap(services.ErrDecode, component, "decode frame",
			fmt.Sprintf("%s: frame dimensions %dx%d do not match %d pixels", sourcePath, native.Cols, native.Rows, len(native.Data)), nil)
	}

	img := normalizeFrame(native)

	ctx := gg.NewContextForImage(img)
	if r.face != nil {
		r.overlay(ctx, meta)
	}

	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrValidation, component, "create export directory", exportDir, err)
	}
	outputPath := filepath.Join(exportDir, outputName(sourcePath))
	if err := ctx.SavePNG(outputPath); err != nil {
		return nil, services.Wrap(services.ErrValidation, component, "write image", outputPath, err)
	}

	r.logger.Debug("rendered record",
		logging.String("source", sourcePath),
		logging.String("image", outputPath),
	)
	return &Result{OutputPath: outputPath, Meta: meta}, nil
}

// overlay stamps the header fields into the top-left corner, white text over
// a one-pixel shadow so it stays readable on bright tissue.
func (r *Renderer) overlay(ctx *gg.Context, meta dicomfile.Metadata) {
	lines := []string{
		meta.DisplayPatientName(),
		"ID " + meta.PatientID,
		meta.StudyDate,
		meta.SeriesDescription,
		meta.Modality,
		"loc " + meta.SliceLocation.String(),
		"#" + meta.InstanceNumber.String(),
	}

	ctx.SetFontFace(r.face)
	lineHeight := r.cfg.Rendering.FontSize * 1.4
	if lineHeight < 10 {
		lineHeight = 10
	}
	y := lineHeight
	for _, line := range lines {
		ctx.SetRGB(0, 0, 0)
		ctx.DrawString(line, 5, y+1)
		ctx.SetRGB(1, 1, 1)
		ctx.DrawString(line, 4, y)
		y += lineHeight
	}
}

func outputName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}
