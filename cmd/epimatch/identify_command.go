package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"epimatch/internal/batch"
	"epimatch/internal/config"
	"epimatch/internal/queue"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var showFlag string
	var seasonFlag int
	var enqueueOnly bool

	cmd := &cobra.Command{
		Use:   "identify <file-or-directory>...",
		Short: "Identify episodes for video files and print proposed names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			enqueued, err := enqueuePaths(cmd, ctx, store, args, showFlag, seasonFlag)
			if err != nil {
				return err
			}
			if enqueued == 0 {
				return errors.New("no video files found")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %d file(s)\n", enqueued)
			if enqueueOnly {
				return nil
			}
			return drainQueue(cmd, ctx, store)
		},
	}

	cmd.Flags().StringVar(&showFlag, "show", "", "Show title (default: detected from the path)")
	cmd.Flags().IntVar(&seasonFlag, "season", 0, "Season number (default: detected from the path)")
	cmd.Flags().BoolVar(&enqueueOnly, "enqueue-only", false, "Queue the files without processing them")
	return cmd
}

func enqueuePaths(cmd *cobra.Command, ctx *commandContext, store *queue.Store, args []string, showFlag string, seasonFlag int) (int, error) {
	enqueued := 0
	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return enqueued, err
		}
		videos, err := batch.ScanVideos(path)
		if err != nil {
			return enqueued, err
		}
		for _, video := range videos {
			show, season := batch.DetectShowSeason(video)
			if showFlag != "" {
				show = showFlag
			}
			if seasonFlag > 0 {
				season = seasonFlag
			}
			if strings.TrimSpace(show) == "" {
				return enqueued, fmt.Errorf("cannot detect show title for %s; pass --show", video)
			}
			if _, err := store.NewFile(cmd.Context(), video, show, season); err != nil {
				return enqueued, err
			}
			enqueued++
		}
	}
	return enqueued, nil
}
