package testsupport

import (
	"path/filepath"
	"testing"

	"dicomexport/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Catalog.Path = filepath.Join(base, "catalog.db")
	// Keep overlay output deterministic across hosts: no system fonts.
	cfg.Rendering.FontCandidates = nil
	cfg.Extraction.MinFreeSpaceMiB = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithCatalogDisabled turns off run-history recording.
func WithCatalogDisabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Catalog.Enabled = false
	}
}

// WithFontCandidates overrides the renderer font search list.
func WithFontCandidates(paths ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Rendering.FontCandidates = paths
	}
}
