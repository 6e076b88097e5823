// Package correlate turns a True indicator verdict into interesting-item
// artifacts on the originating case objects.
package correlate

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/stix-triage/internal/casedb"
	"github.com/danielpatrickdp/stix-triage/internal/cybox"
	"github.com/danielpatrickdp/stix-triage/internal/result"
)

// #region constants
// DefaultCap bounds the artifacts created for one indicator.
const DefaultCap = 1000

// SetNamePrefix heads the set name of every created item.
const SetNamePrefix = "STIX Indicator - "
// #endregion constants

// #region sink
// Sink persists one interesting item.
type Sink interface {
	CreateInterestingItem(ctx context.Context, item casedb.InterestingItem) (int64, error)
}

type runSink struct {
	Sink
	runID string
}

func (s runSink) CreateInterestingItem(ctx context.Context, item casedb.InterestingItem) (int64, error) {
	item.RunID = s.runID
	return s.Sink.CreateInterestingItem(ctx, item)
}

// WithRunID stamps every item written through sink with runID.
func WithRunID(sink Sink, runID string) Sink {
	return runSink{Sink: sink, runID: runID}
}
// #endregion sink

// #region save
// Outcome reports what Save wrote.
type Outcome struct {
	Created int
	Capped  bool
	Notice  string
}

// Save creates one item per distinct artifact of a True result, stopping after
// limit items. Non-True results write nothing. A limit <= 0 means DefaultCap.
func Save(ctx context.Context, sink Sink, ind *cybox.Indicator, res result.ObservableResult, limit int) (Outcome, error) {
	var out Outcome
	if !res.IsTrue() {
		return out, nil
	}
	if limit <= 0 {
		limit = DefaultCap
	}
	label := ind.Label()

	for _, ref := range result.UnionArtifacts(res.Artifacts, nil) {
		if out.Created >= limit {
			out.Capped = true
			out.Notice = fmt.Sprintf("Too many artifacts (more than %d) for indicator %s; stopped creating artifacts", limit, label)
			break
		}
		_, err := sink.CreateInterestingItem(ctx, casedb.InterestingItem{
			ObjID:    ref.ObjectID,
			SetName:  SetNamePrefix + label,
			Title:    ref.ObservableID,
			Category: ref.ObjectType,
		})
		if err != nil {
			return out, fmt.Errorf("create artifact for %s: %w", label, err)
		}
		out.Created++
	}
	return out, nil
}
// #endregion save
