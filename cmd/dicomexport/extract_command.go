package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dicomexport/internal/api"
	"dicomexport/internal/extract"
	"dicomexport/internal/services"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var overwriteFlag bool
	var renderFlag bool

	cmd := &cobra.Command{
		Use:   "extract <archive>",
		Short: "Extract DICOM records from a ZIP or ISO archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			client, err := api.New(cfg, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			report, runErr := client.Extract(cmd.Context(), api.ExtractRequest{
				ArchivePath: args[0],
				Destination: outputFlag,
				Overwrite:   overwriteFlag,
			})
			if report != nil {
				printExtractSummary(cmd, report)
			}
			if runErr != nil {
				if errors.Is(runErr, services.ErrNoRecords) && report != nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No qualifying DICOM records found.")
				}
				return runErr
			}

			if renderFlag {
				gallery, err := client.Render(cmd.Context(), api.RenderRequest{Report: report})
				if err != nil {
					return err
				}
				printRenderSummary(cmd, gallery)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Destination directory (default: derived under output root)")
	cmd.Flags().BoolVar(&overwriteFlag, "overwrite", false, "Replace files already present at the destination")
	cmd.Flags().BoolVar(&renderFlag, "render", false, "Render annotated images and a gallery after extraction")
	return cmd
}

func printExtractSummary(cmd *cobra.Command, report *extract.Report) {
	out := cmd.OutOrStdout()
	summary := report.Summary()

	fmt.Fprintf(out, "Archive:     %s (%s)\n", report.ArchivePath, report.Kind)
	fmt.Fprintf(out, "Destination: %s\n", report.Destination)
	if report.CacheHit {
		fmt.Fprintf(out, "Destination already populated; reusing %d existing files.\n", len(report.Existing))
	}

	rows := [][]string{
		{"written", fmt.Sprintf("%d", summary.Written)},
		{"skipped", fmt.Sprintf("%d", summary.Skipped)},
		{"overwritten", fmt.Sprintf("%d", summary.Overwritten)},
		{"renamed", fmt.Sprintf("%d", summary.Renamed)},
		{"failed", fmt.Sprintf("%d", summary.Failed)},
		{"non-DICOM", fmt.Sprintf("%d", summary.NonDicom)},
	}
	fmt.Fprintln(out, renderTable([]string{"Outcome", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))

	for _, file := range report.Files {
		if file.Outcome == extract.OutcomeFailed {
			fmt.Fprintf(out, "warning: %s: %s\n", file.SourceEntry, file.Error)
		}
	}
}

func printRenderSummary(cmd *cobra.Command, gallery *api.GalleryReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rendered %d images (%d without pixel data, %d failed to decode).\n",
		gallery.Rendered, gallery.NoImage, gallery.Failed)
	fmt.Fprintf(out, "Gallery: %s\n", gallery.DocumentPath)
}
