package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dicomexport/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := os.WriteFile(target, []byte(config.SampleConfig()), 0o644); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Validate and display the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			if !exists {
				fmt.Fprintln(out, "No config file found; defaults are in effect.")
			}
			fmt.Fprintf(out, "output_dir        = %s\n", cfg.Paths.OutputDir)
			fmt.Fprintf(out, "log_dir           = %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "classify_window   = %d bytes\n", cfg.Extraction.ClassifyWindowBytes)
			fmt.Fprintf(out, "min_free_space    = %d MiB\n", cfg.Extraction.MinFreeSpaceMiB)
			fmt.Fprintf(out, "lock_destination  = %t\n", cfg.Extraction.LockDestination)
			fmt.Fprintf(out, "font_candidates   = %s\n", strings.Join(cfg.Rendering.FontCandidates, ", "))
			fmt.Fprintf(out, "font_size         = %g\n", cfg.Rendering.FontSize)
			fmt.Fprintf(out, "thumbnail_width   = %d\n", cfg.Rendering.ThumbnailWidth)
			fmt.Fprintf(out, "catalog.enabled   = %t\n", cfg.Catalog.Enabled)
			fmt.Fprintf(out, "catalog.path      = %s\n", cfg.Catalog.Path)
			fmt.Fprintf(out, "logging.format    = %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "logging.level     = %s\n", cfg.Logging.Level)
			return nil
		},
	}
	return cmd
}
