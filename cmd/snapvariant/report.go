package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/ajramos/snapvariant/internal/ledger"
)

const messageWidth = 60

func newReportCmd(a *app) *cobra.Command {
	var (
		runID  string
		latest bool
		failed bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show recorded results",
		Long: `Show the results recorded in the ledger. By default the most recent run is
shown; --run selects another run and --latest shows the newest result of every
artifact across runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runID != "" && latest {
				return fmt.Errorf("--run and --latest are mutually exclusive")
			}
			ctx := cmd.Context()
			store, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var (
				records []ledger.Record
				title   string
			)
			switch {
			case latest:
				title = "LATEST RESULTS"
				records, err = store.Latest(ctx)
			default:
				if runID == "" {
					runID, err = store.LatestRunID(ctx)
					if err != nil {
						return err
					}
					if runID == "" {
						fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
						return nil
					}
				}
				title = "RUN " + runID
				records, err = store.RunResults(ctx, runID)
			}
			if err != nil {
				return err
			}

			t := newTable(cmd)
			t.SetTitle(title)
			t.AppendHeader(table.Row{"ARTIFACT", "TEST", "VARIANT", "STATE", "DURATION", "MESSAGE"})
			t.SetColumnConfigs([]table.ColumnConfig{
				{Name: "DURATION", Align: text.AlignRight},
			})

			shown, failures := 0, 0
			for _, r := range records {
				if r.State != ledger.StateSuccess {
					failures++
				} else if failed {
					continue
				}
				shown++
				t.AppendRow(table.Row{
					r.Artifact,
					r.Test,
					r.Variant,
					r.State,
					r.Duration.Round(time.Millisecond).String(),
					truncate(r.Message, messageWidth),
				})
			}
			t.Render()
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d failed\n", failures, len(records))

			a.logger.Debug().Int("shown", shown).Int("failed", failures).Msg("report rendered")
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "run ID to show (default: most recent run)")
	cmd.Flags().BoolVar(&latest, "latest", false, "show the newest result of every artifact across runs")
	cmd.Flags().BoolVar(&failed, "failed", false, "show failed invocations only")
	return cmd
}

func newRunsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs(ctx)
			if err != nil {
				return err
			}

			t := newTable(cmd)
			t.SetTitle("RUNS")
			t.AppendHeader(table.Row{"RUN", "STARTED", "TOTAL", "FAILED"})
			for _, r := range runs {
				t.AppendRow(table.Row{r.RunID, r.StartedAt.Format(time.RFC3339), r.Total, r.Failed})
			}
			t.Render()
			return nil
		},
	}
}

func (a *app) openLedger(ctx context.Context) (*ledger.Store, error) {
	if a.cfg.LedgerPath == "" {
		return nil, fmt.Errorf("no results ledger configured: set ledger_path or SNAPVARIANT_LEDGER_PATH")
	}
	store, err := ledger.Open(ctx, a.cfg.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("open results ledger: %w", err)
	}
	return store, nil
}
