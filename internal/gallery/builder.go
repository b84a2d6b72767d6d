package gallery

import (
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"dicomexport/internal/config"
	"dicomexport/internal/dicomfile"
	"dicomexport/internal/logging"
	"dicomexport/internal/render"
	"dicomexport/internal/services"
)

const component = "gallery"

// DocumentName is the gallery file written into the export directory.
const DocumentName = "index.html"

//go:embed gallery.gohtml
var documentTemplate string

// Series is one ordered group of rendered images.
type Series struct {
	Number      dicomfile.OptionalInt
	Description string
	Images      []render.Result
}

// Label is the series heading shown in the document.
func (s Series) Label() string {
	return fmt.Sprintf("Series %s - %s", s.Number, s.Description)
}

// Builder renders the gallery document.
type Builder struct {
	cfg    *config.Config
	logger *slog.Logger
	tmpl   *template.Template
}

// New constructs a builder. The embedded template is parsed once.
func New(cfg *config.Config, logger *slog.Logger) *Builder {
	return &Builder{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, component),
		tmpl: template.Must(template.New(DocumentName).
			Funcs(template.FuncMap{"base": filepath.Base}).
			Parse(documentTemplate)),
	}
}

// Build groups and sorts results, writes the document into exportDir, and
// returns its path. The document is regenerated from scratch on every call.
func (b *Builder) Build(results []render.Result, exportDir string) (string, error) {
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrValidation, component, "create export directory", exportDir, err)
	}

	series := GroupSeries(results)

	var flattened []render.Result
	for _, s := range series {
		flattened = append(flattened, s.Images...)
	}
	imageNames := make([]string, 0, len(flattened))
	for _, img := range flattened {
		imageNames = append(imageNames, filepath.Base(img.OutputPath))
	}

	data := struct {
		Header     dicomfile.Metadata
		HasHeader  bool
		Series     []Series
		ImageNames []string
		ThumbWidth int
	}{
		Series:     series,
		ImageNames: imageNames,
		ThumbWidth: b.cfg.Rendering.ThumbnailWidth,
	}
	if len(results) > 0 {
		data.Header = results[0].Meta
		data.HasHeader = true
	}

	path := filepath.Join(exportDir, DocumentName)
	file, err := os.Create(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, component, "write document", path, err)
	}
	defer file.Close()

	if err := b.tmpl.Execute(file, data); err != nil {
		return "", services.Wrap(services.ErrValidation, component, "render document", path, err)
	}

	b.logger.Info("gallery written",
		logging.String("document", path),
		logging.Int("series", len(series)),
		logging.Int("images", len(flattened)),
	)
	return path, nil
}

// GroupSeries buckets results by (series number, description) and orders each
// bucket by (slice location, instance number). Unknown values sort after
// known ones; remaining ties keep enumeration order.
func GroupSeries(results []render.Result) []Series {
	type key struct {
		number      dicomfile.OptionalInt
		description string
	}

	buckets := map[key][]render.Result{}
	var order []key
	for _, result := range results {
		k := key{number: result.Meta.SeriesNumber, description: result.Meta.SeriesDescription}
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], result)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].number.Known != order[j].number.Known {
			return order[i].number.Known
		}
		if order[i].number.Known && order[i].number.Value != order[j].number.Value {
			return order[i].number.Value < order[j].number.Value
		}
		return order[i].description < order[j].description
	})

	series := make([]Series, 0, len(order))
	for _, k := range order {
		images := buckets[k]
		sort.SliceStable(images, func(i, j int) bool {
			return lessImage(images[i].Meta, images[j].Meta)
		})
		series = append(series, Series{Number: k.number, Description: k.description, Images: images})
	}
	return series
}

func lessImage(a, b dicomfile.Metadata) bool {
	if c := compareOptionalFloat(a.SliceLocation, b.SliceLocation); c != 0 {
		return c < 0
	}
	if c := compareOptionalInt(a.InstanceNumber, b.InstanceNumber); c != 0 {
		return c < 0
	}
	return false
}

func compareOptionalFloat(a, b dicomfile.OptionalFloat) int {
	switch {
	case a.Known && b.Known:
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	case a.Known:
		return -1
	case b.Known:
		return 1
	default:
		return 0
	}
}

func compareOptionalInt(a, b dicomfile.OptionalInt) int {
	switch {
	case a.Known && b.Known:
		return a.Value - b.Value
	case a.Known:
		return -1
	case b.Known:
		return 1
	default:
		return 0
	}
}
