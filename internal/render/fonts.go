package render

import (
	"log/slog"
	"os"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"dicomexport/internal/logging"
)

// resolveFace probes the ranked candidate list once and returns the first
// face that loads, falling back to the bundled bitmap face. The returned path
// is empty for the fallback.
func resolveFace(candidates []string, size float64, logger *slog.Logger) (font.Face, string) {
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		face, err := gg.LoadFontFace(candidate, size)
		if err != nil {
			logger.Warn("font candidate failed to load",
				logging.String("candidate", candidate),
				logging.Error(err),
			)
			continue
		}
		return face, candidate
	}
	if len(candidates) > 0 {
		logger.Warn("no font candidate usable, overlay uses bundled bitmap face")
	}
	return basicfont.Face7x13, ""
}
