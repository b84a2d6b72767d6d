package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateRendering(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.ClassifyWindowBytes < 132 {
		return fmt.Errorf("extraction.classify_window_bytes must be at least 132 (DICOM preamble plus magic), got %d", c.Extraction.ClassifyWindowBytes)
	}
	if c.Extraction.MinFreeSpaceMiB < 0 {
		return errors.New("extraction.min_free_space_mib must not be negative")
	}
	return nil
}

func (c *Config) validateRendering() error {
	if c.Rendering.FontSize <= 0 {
		return errors.New("rendering.font_size must be positive")
	}
	if c.Rendering.ThumbnailWidth < 32 {
		return fmt.Errorf("rendering.thumbnail_width must be at least 32, got %d", c.Rendering.ThumbnailWidth)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Enabled && c.Catalog.Path == "" {
		return errors.New("catalog.path must be set when catalog.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
