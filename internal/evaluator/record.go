package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/stix-triage/internal/casedb"
	"github.com/danielpatrickdp/stix-triage/internal/cybox"
	"github.com/danielpatrickdp/stix-triage/internal/match"
	"github.com/danielpatrickdp/stix-triage/internal/result"
)

// #region record-match
// fieldAttr binds an object field to the artifact attribute it is compared with.
type fieldAttr struct {
	name  string
	field *cybox.Field
	attr  casedb.AttributeType
}

func presentFields(fields []fieldAttr) []fieldAttr {
	var out []fieldAttr
	for _, f := range fields {
		if !f.field.IsEmpty() {
			out = append(out, f)
		}
	}
	return out
}

func fieldNames(fields []fieldAttr) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return strings.Join(names, ", ")
}

// matchRecord reports whether every field matches its attribute on a. A
// missing attribute does not match.
func matchRecord(a casedb.Artifact, fields []fieldAttr) (bool, error) {
	for _, f := range fields {
		v, ok := a.Attr(f.attr)
		if !ok {
			return false, nil
		}
		ok, err := match.MatchField(f.field, v)
		if err != nil {
			return false, fmt.Errorf("%s: %w", f.name, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// recordSearch evaluates objects compared field by field against small
// per-data-source records such as OS info or accounts.
type recordSearch struct {
	env     *Env
	kind    cybox.Kind
	id      string
	artType casedb.ArtifactType
	fields  []fieldAttr
	props   cybox.Properties
}

func (r recordSearch) evaluate(ctx context.Context) result.ObservableResult {
	var w result.Warnings
	warnUnsupported(&w, r.props)

	fields := presentFields(r.fields)
	if len(fields) == 0 {
		return noEvaluatableFields(r.kind, r.id, &w)
	}

	arts, err := r.env.Store.ArtifactsOfType(ctx, r.artType)
	if err != nil {
		return failed(r.kind, r.id, err, &w)
	}

	var hits []casedb.Artifact
	for _, a := range arts {
		ok, err := matchRecord(a, fields)
		if err != nil {
			w.AddErr(err)
			return result.NewIndeterminate(r.id, describe(r.kind, "Could not evaluate "+fieldNames(fields), &w))
		}
		if ok {
			hits = append(hits, a)
		}
	}

	on := fieldNames(fields)
	if len(hits) == 0 {
		return result.NewFalse(r.id, describe(r.kind, fmt.Sprintf("No matching %s records for %s", r.artType, on), &w))
	}
	return result.NewTrue(r.id,
		describe(r.kind, fmt.Sprintf("Found %d matching %s records for %s", len(hits), r.artType, on), &w),
		artifactRefs(hits, r.id, r.kind))
}
// #endregion record-match

// #region system
// System matches OS info records.
type System struct {
	search recordSearch
}

func NewSystem(env *Env, obj *cybox.System, id string) *System {
	return &System{search: recordSearch{
		env:     env,
		kind:    cybox.KindSystem,
		id:      id,
		artType: casedb.ArtOSInfo,
		props:   obj,
		fields: []fieldAttr{
			{"Hostname", obj.Hostname, casedb.AttrName},
			{"Processor_Architecture", obj.ProcessorArchitecture, casedb.AttrProcessorArch},
			{"Product_Name", obj.ProductName, casedb.AttrProgName},
			{"Version", obj.Version, casedb.AttrVersion},
			{"Registered_Organization", obj.RegisteredOrganization, casedb.AttrOrganization},
			{"Registered_Owner", obj.RegisteredOwner, casedb.AttrOwner},
			{"Windows_Temp_Directory", obj.WindowsTempDirectory, casedb.AttrTempDir},
			{"Windows_System_Directory", obj.WindowsSystemDirectory, casedb.AttrPath},
			{"Product_ID", obj.ProductID, casedb.AttrProductID},
		},
	}}
}

func (e *System) Evaluate(ctx context.Context) result.ObservableResult {
	return e.search.evaluate(ctx)
}
// #endregion system

// #region account
// Account matches OS account records.
type Account struct {
	search recordSearch
}

func NewAccount(env *Env, obj *cybox.Account, id string) *Account {
	return &Account{search: recordSearch{
		env:     env,
		kind:    cybox.KindAccount,
		id:      id,
		artType: casedb.ArtOSAccount,
		props:   obj,
		fields: []fieldAttr{
			{"Username", obj.Username, casedb.AttrUserName},
			{"Home_Directory", obj.HomeDirectory, casedb.AttrPath},
			{"Full_Name", obj.FullName, casedb.AttrName},
		},
	}}
}

func (e *Account) Evaluate(ctx context.Context) result.ObservableResult {
	return e.search.evaluate(ctx)
}
// #endregion account

// #region network-share
// NetworkShare matches mapped remote drives.
type NetworkShare struct {
	search recordSearch
}

func NewNetworkShare(env *Env, obj *cybox.NetworkShare, id string) *NetworkShare {
	return &NetworkShare{search: recordSearch{
		env:     env,
		kind:    cybox.KindNetworkShare,
		id:      id,
		artType: casedb.ArtRemoteDrive,
		props:   obj,
		fields: []fieldAttr{
			{"Netname", obj.Netname, casedb.AttrRemotePath},
			{"Local_Path", obj.LocalPath, casedb.AttrLocalPath},
		},
	}}
}

func (e *NetworkShare) Evaluate(ctx context.Context) result.ObservableResult {
	return e.search.evaluate(ctx)
}
// #endregion network-share
