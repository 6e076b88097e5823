package evaluator

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/stix-triage/internal/casedb"
	"github.com/danielpatrickdp/stix-triage/internal/cybox"
	"github.com/danielpatrickdp/stix-triage/internal/match"
	"github.com/danielpatrickdp/stix-triage/internal/result"
)

// #region keyword-search
// keywordSearch matches one field against keyword-hit artifacts. Addresses,
// domains and URIs are stored as extracted keywords rather than typed
// attributes, and each hit is one occurrence, so ALL and NONE only see one
// keyword at a time.
type keywordSearch struct {
	env         *Env
	kind        cybox.Kind
	id          string
	field       *cybox.Field
	stripScheme bool
	props       cybox.Properties
}

func (k keywordSearch) evaluate(ctx context.Context) result.ObservableResult {
	var w result.Warnings
	warnUnsupported(&w, k.props)
	if k.field.IsEmpty() {
		return noEvaluatableFields(k.kind, k.id, &w)
	}

	cond, ap := condition(k.field), apply(k.field)
	if ap == cybox.ApplyAll || ap == cybox.ApplyNone {
		w.Add("Apply condition %s may not work correctly", ap)
	}

	values := k.field.Values
	if k.stripScheme {
		values = match.StripSchemes(values)
	}

	candidates, err := k.candidates(ctx, values, cond, ap)
	if err != nil {
		return failed(k.kind, k.id, err, &w)
	}

	var hits []casedb.Artifact
	for _, a := range candidates {
		kw, ok := a.Attr(casedb.AttrKeyword)
		if !ok {
			continue
		}
		if k.stripScheme {
			kw = match.StripScheme(kw)
		}
		ok, err := match.Match(values, cond, ap, kw)
		if err != nil {
			w.AddErr(err)
			return result.NewIndeterminate(k.id, describe(k.kind, "Could not evaluate "+joinValues(k.field), &w))
		}
		if ok {
			hits = append(hits, a)
		}
	}

	if len(hits) == 0 {
		return result.NewFalse(k.id, describe(k.kind, "No matches for "+joinValues(k.field), &w))
	}
	return result.NewTrue(k.id,
		describe(k.kind, fmt.Sprintf("Found %d matches for %s", len(hits), joinValues(k.field)), &w),
		artifactRefs(hits, k.id, k.kind))
}

// candidates narrows the keyword hits with substring queries when every match
// must contain a value; otherwise it loads all keyword hits.
func (k keywordSearch) candidates(ctx context.Context, values []string, cond cybox.ConditionType, ap cybox.ApplyPolicy) ([]casedb.Artifact, error) {
	positive := cond == cybox.Equals || cond == cybox.Contains || cond == cybox.StartsWith || cond == cybox.EndsWith
	if !positive || ap == cybox.ApplyNone {
		return k.env.Store.ArtifactsOfType(ctx, casedb.ArtKeywordHit)
	}
	if ap == cybox.ApplyAll {
		// every hit must contain the first value
		values = values[:1]
	}
	set := newArtifactSet()
	for _, v := range values {
		arts, err := k.env.Store.ArtifactsByAttributeSubstring(ctx, casedb.ArtKeywordHit, casedb.AttrKeyword, v)
		if err != nil {
			return nil, err
		}
		set.add(arts...)
	}
	return set.list(), nil
}
// #endregion keyword-search

// #region address
// Address matches network addresses against keyword hits.
type Address struct {
	search keywordSearch
}

func NewAddress(env *Env, obj *cybox.Address, id string) *Address {
	return &Address{search: keywordSearch{env: env, kind: cybox.KindAddress, id: id, field: obj.Value, props: obj}}
}

func (e *Address) Evaluate(ctx context.Context) result.ObservableResult {
	return e.search.evaluate(ctx)
}
// #endregion address

// #region domain
// Domain matches domain names against keyword hits, ignoring URL schemes.
type Domain struct {
	search keywordSearch
}

func NewDomain(env *Env, obj *cybox.Domain, id string) *Domain {
	return &Domain{search: keywordSearch{env: env, kind: cybox.KindDomain, id: id, field: obj.Value, stripScheme: true, props: obj}}
}

func (e *Domain) Evaluate(ctx context.Context) result.ObservableResult {
	return e.search.evaluate(ctx)
}
// #endregion domain

// #region uri
// URI matches URIs against keyword hits, ignoring URL schemes.
type URI struct {
	search keywordSearch
}

func NewURI(env *Env, obj *cybox.URI, id string) *URI {
	return &URI{search: keywordSearch{env: env, kind: cybox.KindURI, id: id, field: obj.Value, stripScheme: true, props: obj}}
}

func (e *URI) Evaluate(ctx context.Context) result.ObservableResult {
	return e.search.evaluate(ctx)
}
// #endregion uri
