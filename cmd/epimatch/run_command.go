package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"epimatch/internal/batch"
	"epimatch/internal/queue"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process every pending queue item",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			return drainQueue(cmd, ctx, store)
		},
	}
}

// drainQueue runs the batch pipeline under the run lock and renders the
// results and failures.
func drainQueue(cmd *cobra.Command, ctx *commandContext, store *queue.Store) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	lock, err := batch.AcquireRunLock(cfg.Paths.CacheDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	runner, err := ctx.buildRunner(store)
	if err != nil {
		return err
	}
	summary, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if summary.Processed == 0 {
		fmt.Fprintln(out, "Queue is empty")
		return nil
	}

	if len(summary.Results) > 0 {
		rows := make([][]string, 0, len(summary.Results))
		for _, result := range summary.Results {
			rows = append(rows, []string{
				result.Item.SourcePath,
				result.Item.ProposedName,
				fmt.Sprintf("%.2f", result.Decision.Confidence),
				fmt.Sprintf("%d", len(result.Decision.Checkpoints)),
			})
		}
		fmt.Fprintln(out, renderTable(out,
			[]string{"File", "Proposed Name", "Confidence", "Checkpoints"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
	}

	if len(summary.Failures) > 0 {
		rows := make([][]string, 0, len(summary.Failures))
		for _, failure := range summary.Failures {
			rows = append(rows, []string{failure.Item.SourcePath, failure.Err.Error()})
		}
		fmt.Fprintln(out, renderTable(out,
			[]string{"File", "Problem"},
			rows,
			[]columnAlignment{alignLeft, alignLeft}))
	}

	fmt.Fprintf(out, "Processed %d file(s): %d matched, %d need attention\n",
		summary.Processed, len(summary.Results), len(summary.Failures))
	return nil
}
