package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"treasurehunt/pkg/common"
	"treasurehunt/pkg/core"
	"treasurehunt/pkg/hunt"
	"treasurehunt/pkg/storage"
)

var errBadArgs = errors.New("expected three positive integers R G T")

type huntFlags struct {
	seed    int64
	quiet   bool
	sorted  bool
	save    bool
	journal string
}

func (hf *huntFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int64Var(&hf.seed, "seed", 0, "seed for treasure placement (0 = random)")
	f.BoolVarP(&hf.quiet, "quiet", "q", false, "do not print per-region notifications")
	f.BoolVar(&hf.sorted, "sorted", false, "print the final region list in ascending order")
	f.BoolVar(&hf.save, "save", false, "persist the run to the history database")
	f.StringVar(&hf.journal, "journal", "", "append per-region notifications to this journal file")
}

// parseCounts 解析 R G T；只接受正整数，范围检查交给 core.Validate
func parseCounts(args []string) (common.HuntParams, error) {
	if len(args) != 3 {
		return common.HuntParams{}, errBadArgs
	}
	var vals [3]int
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil || v <= 0 {
			return common.HuntParams{}, fmt.Errorf("%w: %q", errBadArgs, a)
		}
		vals[i] = v
	}
	return common.HuntParams{Regions: vals[0], Groups: vals[1], Treasures: vals[2]}, nil
}

func runHunt(cmd *cobra.Command, a *app, hf *huntFlags, args []string) error {
	params := a.cfg.Params()
	if len(args) > 0 {
		p, err := parseCounts(args)
		if err != nil {
			return err
		}
		p.Seed = params.Seed
		params = p
	}
	if cmd.Flags().Changed("seed") {
		params.Seed = hf.seed
	}
	if err := core.Validate(params.Regions, params.Groups, params.Treasures); err != nil {
		return err
	}

	opts := []hunt.Option{hunt.WithLogger(a.logger), hunt.WithMetrics(a.metrics)}
	if hf.save {
		h, err := a.openHistory()
		if err != nil {
			return err
		}
		defer h.Close()
		opts = append(opts, hunt.WithHistory(h))
	}

	var notifiers []core.Notifier
	if a.cfg.Search.Notify && !hf.quiet {
		notifiers = append(notifiers, core.NewWriterNotifier(cmd.OutOrStdout()))
	}
	journalPath := hf.journal
	if journalPath == "" {
		journalPath = a.cfg.Storage.Journal
	}
	var journal *storage.Journal
	if journalPath != "" {
		j, err := storage.OpenJournal(journalPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()
		journal = j
		notifiers = append(notifiers, j)
	}

	svc := hunt.NewService(opts...)
	run, err := svc.Run(cmd.Context(), params, core.MultiNotifier(notifiers...))
	if err != nil {
		return err
	}
	if journal != nil {
		if err := journal.Err(); err != nil {
			return fmt.Errorf("write journal: %w", err)
		}
		if err := journal.Sync(); err != nil {
			return fmt.Errorf("sync journal: %w", err)
		}
	}

	if err := run.Report.WriteText(cmd.OutOrStdout(), hf.sorted); err != nil {
		return err
	}
	if hf.save {
		fmt.Fprintf(cmd.OutOrStdout(), "run %s saved (seed %d)\n", run.ID, run.Params.Seed)
	}
	return nil
}
