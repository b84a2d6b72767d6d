// Package config loads, normalizes, and validates exporter configuration.
//
// Configuration lives in a TOML file (default ~/.config/dicomexport/config.toml)
// with all values optional; Default() supplies working settings so the tool
// runs without any file present. Load expands ~ in path fields and rejects
// values the pipeline cannot work with.
package config
