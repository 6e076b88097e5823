package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/stix-triage/internal/logging"
)

// #region inspect
var inspectFlags struct {
	runID string
	limit int
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List interesting items and, for one run, its indicator verdicts",
	Args:  cobra.NoArgs,
	RunE:  runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVar(&inspectFlags.runID, "run", "", "Restrict to one run ID")
	f.IntVar(&inspectFlags.limit, "limit", 50, "Maximum interesting items to list")
}

func runInspect(cmd *cobra.Command, _ []string) error {
	_, store, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	items, err := store.InterestingItems(ctx, inspectFlags.runID, inspectFlags.limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Interesting items: %d\n", len(items))
	for _, it := range items {
		f, err := store.File(ctx, it.ObjID)
		path := fmt.Sprintf("object %d", it.ObjID)
		if err == nil {
			path = f.FullPath()
		}
		fmt.Fprintf(out, "  #%d %s | %s | %s | %s\n", it.ID, it.SetName, it.Category, it.Title, path)
	}

	if inspectFlags.runID == "" {
		return nil
	}
	evals, err := logging.Evaluations(ctx, store.DB(), inspectFlags.runID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Verdicts for run %s:\n", inspectFlags.runID)
	for _, e := range evals {
		capped := ""
		if e.Capped {
			capped = " (capped)"
		}
		fmt.Fprintf(out, "  %-13s %s artifacts=%d%s\n", e.Verdict, e.Label, e.Artifacts, capped)
	}
	return nil
}
// #endregion inspect
