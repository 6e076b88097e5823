package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/stix-triage/internal/casedb"
	"github.com/danielpatrickdp/stix-triage/internal/cybox"
	"github.com/danielpatrickdp/stix-triage/internal/result"
)

// #region email
// Email matches message headers. Each present header is searched on its own
// attribute and a message must appear in every header's hit set.
type Email struct {
	env *Env
	obj *cybox.Email
	id  string
}

func NewEmail(env *Env, obj *cybox.Email, id string) *Email {
	return &Email{env: env, obj: obj, id: id}
}

func (e *Email) Evaluate(ctx context.Context) result.ObservableResult {
	var w result.Warnings
	warnUnsupported(&w, e.obj)

	fields := []struct {
		name  string
		field *cybox.Field
		attr  casedb.AttributeType
	}{
		{"To", e.obj.To, casedb.AttrEmailTo},
		{"CC", e.obj.CC, casedb.AttrEmailCC},
		{"From", e.obj.From, casedb.AttrEmailFrom},
		{"Subject", e.obj.Subject, casedb.AttrSubject},
	}

	var combined *artifactSet
	var searched []string
	for _, f := range fields {
		if f.field.IsEmpty() {
			continue
		}
		hits, err := findBySubstring(ctx, e.env.Store, casedb.ArtEmailMsg, f.attr, f.field, f.name, &w)
		if err != nil {
			return failed(cybox.KindEmail, e.id, err, &w)
		}
		searched = append(searched, f.name)
		if combined == nil {
			combined = hits
		} else {
			combined = combined.intersect(hits)
		}
	}

	if combined == nil {
		return noEvaluatableFields(cybox.KindEmail, e.id, &w)
	}
	on := strings.Join(searched, ", ")
	if combined.len() == 0 {
		return result.NewFalse(e.id, describe(cybox.KindEmail, "No matches found for "+on, &w))
	}
	return result.NewTrue(e.id,
		describe(cybox.KindEmail, fmt.Sprintf("Found %d matches for %s", combined.len(), on), &w),
		artifactRefs(combined.list(), e.id, cybox.KindEmail))
}
// #endregion email

// #region substring-search
// findBySubstring searches attr for each value of f. The datastore only offers
// substring search, so other conditions are approximated with a warning. ANY
// unions the per-value hits, ALL intersects them, NONE cannot be expressed.
func findBySubstring(ctx context.Context, store Store, t casedb.ArtifactType, attr casedb.AttributeType,
	f *cybox.Field, name string, w *result.Warnings) (*artifactSet, error) {
	if cond := condition(f); cond != cybox.Contains {
		w.Add("Ignoring condition %s on %s, doing substring comparison", cond, name)
	}

	ap := apply(f)
	if ap == cybox.ApplyNone {
		return nil, fmt.Errorf("cannot apply NONE to substring search on %s", name)
	}

	var out *artifactSet
	for _, v := range f.Values {
		arts, err := store.ArtifactsByAttributeSubstring(ctx, t, attr, v)
		if err != nil {
			return nil, err
		}
		hits := newArtifactSet(arts...)
		switch {
		case out == nil:
			out = hits
		case ap == cybox.ApplyAll:
			out = out.intersect(hits)
		default:
			out.add(hits.list()...)
		}
	}
	if out == nil {
		out = newArtifactSet()
	}
	return out, nil
}
// #endregion substring-search
