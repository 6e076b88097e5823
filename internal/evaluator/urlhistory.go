package evaluator

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/stix-triage/internal/casedb"
	"github.com/danielpatrickdp/stix-triage/internal/cybox"
	"github.com/danielpatrickdp/stix-triage/internal/result"
)

// #region url-history
// URLHistory matches browser history. Each entry is matched on its own against
// the whole history population; any matching entry makes the object True.
type URLHistory struct {
	env *Env
	obj *cybox.URLHistory
	id  string
}

func NewURLHistory(env *Env, obj *cybox.URLHistory, id string) *URLHistory {
	return &URLHistory{env: env, obj: obj, id: id}
}

func (e *URLHistory) Evaluate(ctx context.Context) result.ObservableResult {
	var w result.Warnings
	warnUnsupported(&w, e.obj)

	var browser []fieldAttr
	if !e.obj.BrowserName.IsEmpty() {
		browser = []fieldAttr{{"Browser_Name", e.obj.BrowserName, casedb.AttrProgName}}
	}

	var queries [][]fieldAttr
	for _, entry := range e.obj.Entries {
		warnExtra(&w, entry.Extra)
		fields := presentFields([]fieldAttr{
			{"URL", entry.URL, casedb.AttrURL},
			{"Hostname", entry.Hostname, casedb.AttrDomain},
			{"Referrer_URL", entry.ReferrerURL, casedb.AttrReferrer},
			{"Page_Title", entry.PageTitle, casedb.AttrTitle},
			{"User_Profile_Name", entry.UserProfileName, casedb.AttrUserName},
		})
		if len(fields) == 0 {
			continue
		}
		queries = append(queries, append(fields, browser...))
	}
	if len(e.obj.Entries) == 0 && len(browser) > 0 {
		queries = append(queries, browser)
	}
	if len(queries) == 0 {
		return noEvaluatableFields(cybox.KindURLHistory, e.id, &w)
	}

	history, err := e.env.Store.ArtifactsOfType(ctx, casedb.ArtWebHistory)
	if err != nil {
		return failed(cybox.KindURLHistory, e.id, err, &w)
	}

	hits := newArtifactSet()
	matchedEntries := 0
	for _, fields := range queries {
		found := false
		for _, a := range history {
			ok, err := matchRecord(a, fields)
			if err != nil {
				w.AddErr(err)
				return result.NewIndeterminate(e.id, describe(cybox.KindURLHistory, "Could not evaluate "+fieldNames(fields), &w))
			}
			if ok {
				hits.add(a)
				found = true
			}
		}
		if found {
			matchedEntries++
		}
	}

	if hits.len() == 0 {
		return result.NewFalse(e.id, describe(cybox.KindURLHistory,
			fmt.Sprintf("No matches for %d history entries", len(queries)), &w))
	}
	return result.NewTrue(e.id,
		describe(cybox.KindURLHistory,
			fmt.Sprintf("Found %d matches for %d of %d history entries", hits.len(), matchedEntries, len(queries)), &w),
		artifactRefs(hits.list(), e.id, cybox.KindURLHistory))
}
// #endregion url-history
