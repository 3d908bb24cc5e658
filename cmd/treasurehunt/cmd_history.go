package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"treasurehunt/pkg/core"
	"treasurehunt/pkg/hunt"
	"treasurehunt/pkg/storage"
)

func newHistoryCmd(gf *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List saved runs, or show one run in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(gf, cmd.ErrOrStderr())
			if err != nil {
				return reportErr(cmd, err)
			}
			h, err := a.openHistory()
			if err != nil {
				return reportErr(cmd, err)
			}
			defer h.Close()
			svc := hunt.NewService(hunt.WithHistory(h), hunt.WithLogger(a.logger))

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				run, err := svc.Get(cmd.Context(), args[0])
				if err != nil {
					return reportErr(cmd, err)
				}
				printRun(out, run)
				return run.Report.WriteText(out, true)
			}

			runs, err := svc.List(cmd.Context(), limit)
			if err != nil {
				return reportErr(cmd, err)
			}
			printRuns(out, runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to list")
	return cmd
}

func printRuns(w io.Writer, runs []*hunt.Run) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tR\tG\tT\tFOUND\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Params.Regions, r.Params.Groups,
			r.Params.Treasures, r.Found, r.Duration.Round(time.Microsecond))
	}
	tw.Flush()
}

func printRun(w io.Writer, r *hunt.Run) {
	fmt.Fprintf(w, "Run %s (seed %d)\n", r.ID, r.Params.Seed)
	fmt.Fprintf(w, "Regions %d, groups %d, treasures %d\n", r.Params.Regions, r.Params.Groups, r.Params.Treasures)
	for _, p := range r.Partitions {
		fmt.Fprintf(w, "  %s\n", p)
	}
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <journal>",
		Short: "Print the notifications recorded in a journal file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := storage.OpenJournalIterator(args[0])
			if err != nil {
				return reportErr(cmd, err)
			}
			defer it.Close()

			out := cmd.OutOrStdout()
			total, found := 0, 0
			for {
				e, err := it.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return reportErr(cmd, fmt.Errorf("record %d: %w", total+1, err))
				}
				fmt.Fprintln(out, e.Notification.String())
				total++
				if e.Notification.Found {
					found++
				}
			}
			fmt.Fprintf(out, "\n%d notifications, %d treasures\n", total, found)
			return nil
		},
	}
}

func newPartitionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "partitions <R> <G>",
		Short: "Show how R regions are split among G groups",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseCounts([]string{args[0], args[1], "1"})
			if err != nil {
				return reportErr(cmd, err)
			}
			if err := core.Validate(p.Regions, p.Groups, 1); err != nil {
				return reportErr(cmd, err)
			}
			for _, part := range core.Partitions(p.Regions, p.Groups) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d regions\n", part, part.Len())
			}
			return nil
		},
	}
}
