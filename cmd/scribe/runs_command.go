package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scribe/internal/recordstore"
)

func newRunsCommand(cctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent ingestion runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := recordstore.Open(cfg.Paths.DatabasePath)
			if err != nil {
				return fmt.Errorf("open record store: %w", err)
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderRunsTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func renderRunsTable(runs []recordstore.Run) string {
	const timeLayout = "2006-01-02 15:04:05"

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		finished := "running"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Local().Format(timeLayout)
		}
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(timeLayout),
			finished,
			strconv.Itoa(run.Processed),
			strconv.Itoa(run.Failed),
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Finished", "Processed", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}
