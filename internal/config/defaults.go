package config

const (
	defaultOutputDir           = "~/.local/share/dicomexport/output"
	defaultLogDir              = "~/.local/share/dicomexport/logs"
	defaultCatalogPath         = "~/.local/share/dicomexport/catalog.db"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultClassifyWindowBytes = 4096
	defaultMinFreeSpaceMiB     = 64
	defaultFontSize            = 12
	defaultThumbnailWidth      = 240
)

// defaultFontCandidates is a ranked list of monospace faces commonly present
// on Linux installs. Missing entries are skipped at renderer construction.
var defaultFontCandidates = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationMono-Regular.ttf",
	"/usr/share/fonts/TTF/DejaVuSansMono.ttf",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Extraction: Extraction{
			ClassifyWindowBytes: defaultClassifyWindowBytes,
			MinFreeSpaceMiB:     defaultMinFreeSpaceMiB,
			LockDestination:     true,
		},
		Rendering: Rendering{
			FontCandidates: append([]string{}, defaultFontCandidates...),
			FontSize:       defaultFontSize,
			ThumbnailWidth: defaultThumbnailWidth,
		},
		Catalog: Catalog{
			Enabled: true,
			Path:    defaultCatalogPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
