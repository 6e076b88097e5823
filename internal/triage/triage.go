// Package triage runs every indicator of a document against a case: it exports
// registry hives once, evaluates indicators concurrently, then records artifacts
// and audit rows in document order.
package triage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/stix-triage/internal/casedb"
	"github.com/danielpatrickdp/stix-triage/internal/config"
	"github.com/danielpatrickdp/stix-triage/internal/correlate"
	"github.com/danielpatrickdp/stix-triage/internal/cybox"
	"github.com/danielpatrickdp/stix-triage/internal/evaluator"
	"github.com/danielpatrickdp/stix-triage/internal/hive"
	"github.com/danielpatrickdp/stix-triage/internal/logging"
	"github.com/danielpatrickdp/stix-triage/internal/metrics"
	"github.com/danielpatrickdp/stix-triage/internal/observable"
	"github.com/danielpatrickdp/stix-triage/internal/result"
)

// #region runner
// Runner evaluates documents against one case.
type Runner struct {
	store    *casedb.Store
	exporter *hive.Exporter
	cfg      config.Config
	log      *slog.Logger
	metrics  *metrics.Metrics

	// OpenHive overrides the hive parser; nil means hive.OpenFile.
	OpenHive hive.Opener
}

// NewRunner wires a runner. log and m may be nil.
func NewRunner(store *casedb.Store, cfg config.Config, log *slog.Logger, m *metrics.Metrics) *Runner {
	if log == nil {
		log = logging.New("triage")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Runner{
		store:    store,
		exporter: hive.NewExporter(store, cfg.ScratchDir, log),
		cfg:      cfg,
		log:      log,
		metrics:  m,
	}
}
// #endregion runner

// #region run
// Run evaluates every indicator of doc. When ctx is cancelled no further
// indicators start; verdicts already computed are still recorded and the
// context error is returned with the partial summary.
func (r *Runner) Run(ctx context.Context, doc *cybox.Document) (*Summary, error) {
	sum := &Summary{RunID: uuid.NewString(), Document: doc.Name}
	log := r.log.With("run_id", sum.RunID, "document", doc.Name)

	env := &evaluator.Env{
		Store:    r.store,
		Index:    cybox.NewIndex(doc),
		OpenHive: r.OpenHive,
		Log:      log,
	}
	if doc.HasKind(cybox.KindRegistryKey) {
		hives, err := r.exporter.Export(ctx)
		if err != nil {
			log.Warn("hive export failed, registry observables will be indeterminate", "error", err)
		}
		env.Hives = hives
		sum.Hives = len(hives)
	}
	log.Info("evaluating", "indicators", len(doc.Indicators), "indexed_objects", env.Index.Len(), "workers", r.cfg.Workers)

	results := make([]result.ObservableResult, len(doc.Indicators))
	done := make([]bool, len(doc.Indicators))

	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)
	for i, ind := range doc.Indicators {
		if ctx.Err() != nil {
			break
		}
		i, ind := i, ind
		g.Go(func() error {
			start := time.Now()
			ev := observable.New(env, observable.Options{ShortCircuit: r.cfg.ShortCircuit, Metrics: r.metrics})
			results[i] = ev.EvaluateIndicator(ctx, ind)
			done[i] = true
			r.metrics.IndicatorDuration(time.Since(start))
			return nil
		})
	}
	_ = g.Wait()

	// artifact and audit writes run even after cancellation
	wctx := context.WithoutCancel(ctx)
	var errs []error
	for i, ind := range doc.Indicators {
		if !done[i] {
			continue
		}
		rep, err := r.record(wctx, sum.RunID, doc.Name, ind, results[i])
		if err != nil {
			errs = append(errs, err)
		}
		sum.Evaluated++
		sum.Artifacts += rep.Outcome.Created
		switch rep.Result.State {
		case result.True:
			sum.True++
		case result.False:
			sum.False++
		default:
			sum.Indeterminate++
		}
		if rep.Result.IsTrue() || r.cfg.ReportAll {
			sum.Reports = append(sum.Reports, rep)
		}
	}
	log.Info("run complete", "evaluated", sum.Evaluated, "true", sum.True, "false", sum.False,
		"indeterminate", sum.Indeterminate, "artifacts", sum.Artifacts)

	if err := ctx.Err(); err != nil {
		errs = append(errs, fmt.Errorf("run cancelled after %d of %d indicators: %w", sum.Evaluated, len(doc.Indicators), err))
	}
	return sum, errors.Join(errs...)
}
// #endregion run

// #region record
// record persists one verdict: artifacts for True results, then the audit row.
func (r *Runner) record(ctx context.Context, runID, docName string, ind *cybox.Indicator, res result.ObservableResult) (Report, error) {
	rep := Report{Indicator: ind, Label: ind.Label(), Result: res}

	out, saveErr := correlate.Save(ctx, correlate.WithRunID(r.store, runID), ind, res, r.cfg.ArtifactCap)
	rep.Outcome = out
	if saveErr != nil {
		r.log.Error("create artifacts", "indicator", rep.Label, "error", saveErr)
	}
	if out.Capped {
		r.log.Warn(out.Notice, "indicator", rep.Label)
	}

	logErr := logging.LogEvaluation(ctx, r.store.DB(), logging.EvaluationEntry{
		RunID:       runID,
		Document:    docName,
		IndicatorID: ind.ID,
		Label:       rep.Label,
		Verdict:     res.State.String(),
		Artifacts:   out.Created,
		Capped:      out.Capped,
		Description: res.Description,
	})
	if logErr != nil {
		r.log.Error("audit log", "indicator", rep.Label, "error", logErr)
	}

	r.metrics.Verdict(res.State.String())
	r.metrics.Artifacts(out.Created, out.Capped)
	r.log.Debug("indicator evaluated", "indicator", rep.Label, "verdict", res.State.String(), "artifacts", out.Created)
	return rep, errors.Join(saveErr, logErr)
}
// #endregion record
