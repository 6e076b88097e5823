package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/stix-triage/internal/document"
	"github.com/danielpatrickdp/stix-triage/internal/logging"
	"github.com/danielpatrickdp/stix-triage/internal/metrics"
	"github.com/danielpatrickdp/stix-triage/internal/result"
	"github.com/danielpatrickdp/stix-triage/internal/triage"
)

// #region eval
var evalFlags struct {
	shortCircuit bool
	reportAll    bool
	workers      int
	metricsFile  string
}

var evalCmd = &cobra.Command{
	Use:   "eval <document.yaml>...",
	Short: "Evaluate indicator documents and tag matching case objects",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEval,
}

func init() {
	f := evalCmd.Flags()
	f.BoolVar(&evalFlags.shortCircuit, "short-circuit", false, "Stop compositions at the first decisive child")
	f.BoolVar(&evalFlags.reportAll, "report-all", false, "Report false and indeterminate indicators too")
	f.IntVar(&evalFlags.workers, "workers", 0, "Concurrent indicator evaluations (0 keeps the config value)")
	f.StringVar(&evalFlags.metricsFile, "metrics-file", "", "Write Prometheus text metrics to this file")
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, store, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if cmd.Flags().Changed("short-circuit") {
		cfg.ShortCircuit = evalFlags.shortCircuit
	}
	if cmd.Flags().Changed("report-all") {
		cfg.ReportAll = evalFlags.reportAll
	}
	if evalFlags.workers > 0 {
		cfg.Workers = evalFlags.workers
	}

	reg := prometheus.NewRegistry()
	runner := triage.NewRunner(store, cfg, logging.New("triage"), metrics.New(reg))
	out := cmd.OutOrStdout()

	var errs []error
	for _, path := range args {
		doc, err := document.Load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sum, err := runner.Run(cmd.Context(), doc)
		if sum != nil {
			printSummary(out, sum)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}

	if evalFlags.metricsFile != "" {
		if err := writeMetrics(reg, evalFlags.metricsFile); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
// #endregion eval

// #region output
func printSummary(w io.Writer, sum *triage.Summary) {
	fmt.Fprintf(w, "Document: %s (run %s)\n", sum.Document, sum.RunID)
	for _, rep := range sum.Reports {
		id := ""
		if rep.Indicator.ID != "" && rep.Indicator.ID != rep.Label {
			id = " (" + rep.Indicator.ID + ")"
		}
		fmt.Fprintf(w, "[%s] %s%s artifacts=%d\n", rep.Result.State, rep.Label, id, rep.Outcome.Created)
		if rep.Result.Description != "" {
			fmt.Fprintln(w, result.Indent(rep.Result.Description, 2))
		}
		if rep.Outcome.Capped {
			fmt.Fprintf(w, "  %s\n", rep.Outcome.Notice)
		}
	}
	fmt.Fprintf(w, "Indicators: %d evaluated, %d true, %d false, %d indeterminate; %d artifacts created\n",
		sum.Evaluated, sum.True, sum.False, sum.Indeterminate, sum.Artifacts)
}

func writeMetrics(g prometheus.Gatherer, path string) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			f.Close()
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return f.Close()
}
// #endregion output
