package evaluator

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/danielpatrickdp/stix-triage/internal/casedb"
	"github.com/danielpatrickdp/stix-triage/internal/cybox"
	"github.com/danielpatrickdp/stix-triage/internal/hive"
	"github.com/danielpatrickdp/stix-triage/internal/match"
	"github.com/danielpatrickdp/stix-triage/internal/result"
)

// #region store
// Store is the read side of the case datastore used by the evaluators. It must
// be safe for concurrent use.
type Store interface {
	FindFiles(ctx context.Context, clause match.Clause) ([]casedb.File, error)
	HasArtifact(ctx context.Context, objID int64, t casedb.ArtifactType) (bool, error)
	ArtifactsOfType(ctx context.Context, t casedb.ArtifactType) ([]casedb.Artifact, error)
	ArtifactsByAttributeSubstring(ctx context.Context, t casedb.ArtifactType, attr casedb.AttributeType, substr string) ([]casedb.Artifact, error)
}
// #endregion store

// #region env
// Env is everything an evaluator may consult. It is shared read-only by all
// evaluations of one document.
type Env struct {
	Store    Store
	Index    *cybox.Index
	Hives    []hive.Hive
	OpenHive hive.Opener // nil means hive.OpenFile
	Log      *slog.Logger
}

func (e *Env) logger() *slog.Logger {
	if e.Log == nil {
		return slog.Default()
	}
	return e.Log
}

func (e *Env) opener() hive.Opener {
	if e.OpenHive == nil {
		return hive.OpenFile
	}
	return e.OpenHive
}
// #endregion env

// #region evaluator
// Evaluator computes the result of one observable. Instances are built per
// observable, evaluated once and discarded.
type Evaluator interface {
	Evaluate(ctx context.Context) result.ObservableResult
}
// #endregion evaluator

// #region helpers
// warnUnsupported records the present fields of p that have no evaluator.
func warnUnsupported(w *result.Warnings, p cybox.Properties) {
	warnExtra(w, cybox.Unsupported(p))
}

func warnExtra(w *result.Warnings, extra map[string]*cybox.Field) {
	var names []string
	for name, f := range extra {
		if !f.IsEmpty() {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)
	w.Add("Unsupported fields: %s", strings.Join(names, ", "))
}

// artifactRefs maps artifacts to refs, one per source object.
func artifactRefs(arts []casedb.Artifact, observableID string, kind cybox.Kind) []result.ArtifactRef {
	seen := make(map[int64]bool, len(arts))
	var refs []result.ArtifactRef
	for _, a := range arts {
		if seen[a.ObjID] {
			continue
		}
		seen[a.ObjID] = true
		refs = append(refs, result.ArtifactRef{ObjectID: a.ObjID, ObservableID: observableID, ObjectType: kind.String()})
	}
	return refs
}

func describe(kind cybox.Kind, msg string, w *result.Warnings) string {
	return kind.String() + ": " + msg + w.String()
}

func noEvaluatableFields(kind cybox.Kind, id string, w *result.Warnings) result.ObservableResult {
	return result.NewIndeterminate(id, describe(kind, "No evaluatable fields", w))
}

func failed(kind cybox.Kind, id string, err error, w *result.Warnings) result.ObservableResult {
	return result.NewIndeterminate(id, describe(kind, "Exception during evaluation: "+err.Error(), w))
}

func condition(f *cybox.Field) cybox.ConditionType {
	if f == nil || f.Condition == "" {
		return cybox.Equals
	}
	return f.Condition
}

func apply(f *cybox.Field) cybox.ApplyPolicy {
	if f == nil || f.Apply == "" {
		return cybox.ApplyAny
	}
	return f.Apply
}

func joinValues(f *cybox.Field) string {
	if f == nil {
		return ""
	}
	return strings.Join(f.Values, ", ")
}
// #endregion helpers

// #region artifact-set
// artifactSet is an insertion-ordered set of artifacts keyed by artifact ID.
type artifactSet struct {
	order []int64
	byID  map[int64]casedb.Artifact
}

func newArtifactSet(arts ...casedb.Artifact) *artifactSet {
	s := &artifactSet{byID: make(map[int64]casedb.Artifact)}
	s.add(arts...)
	return s
}

func (s *artifactSet) add(arts ...casedb.Artifact) {
	for _, a := range arts {
		if _, ok := s.byID[a.ID]; ok {
			continue
		}
		s.byID[a.ID] = a
		s.order = append(s.order, a.ID)
	}
}

func (s *artifactSet) intersect(other *artifactSet) *artifactSet {
	out := newArtifactSet()
	for _, id := range s.order {
		if _, ok := other.byID[id]; ok {
			out.add(s.byID[id])
		}
	}
	return out
}

func (s *artifactSet) len() int { return len(s.order) }

func (s *artifactSet) list() []casedb.Artifact {
	out := make([]casedb.Artifact, len(s.order))
	for i, id := range s.order {
		out[i] = s.byID[id]
	}
	return out
}
// #endregion artifact-set
