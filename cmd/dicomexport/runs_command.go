package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"dicomexport/internal/catalog"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded extraction runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Catalog.Enabled {
				return fmt.Errorf("run catalog is disabled in configuration")
			}

			store, err := catalog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.Started.Local().Format(time.DateTime),
					run.Kind,
					run.ArchivePath,
					run.Destination,
					cacheLabel(run.CacheHit),
					strconv.Itoa(run.Written + run.Overwritten + run.Renamed),
					strconv.Itoa(run.Failed),
					strconv.Itoa(run.Rendered),
				})
			}
			headers := []string{"Started", "Kind", "Archive", "Destination", "Cache", "Extracted", "Failed", "Rendered"}
			aligns := []columnAlignment{
				alignLeft, alignLeft, alignLeft, alignLeft,
				alignLeft, alignRight, alignRight, alignRight,
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum runs to list (0 for all)")
	return cmd
}

func cacheLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return ""
}
