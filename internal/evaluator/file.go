package evaluator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/stix-triage/internal/casedb"
	"github.com/danielpatrickdp/stix-triage/internal/cybox"
	"github.com/danielpatrickdp/stix-triage/internal/match"
	"github.com/danielpatrickdp/stix-triage/internal/result"
)

// #region file-evaluator
// File matches file objects with one compound query over the file table, then
// applies the checks that need per-file lookups.
type File struct {
	env *Env
	obj *cybox.File
	id  string
}

func NewFile(env *Env, obj *cybox.File, id string) *File {
	return &File{env: env, obj: obj, id: id}
}

func (e *File) Evaluate(ctx context.Context) result.ObservableResult {
	var w result.Warnings
	clause := e.buildClause(&w)
	warnUnsupported(&w, e.obj)

	if clause.IsEmpty() {
		return noEvaluatableFields(cybox.KindFile, e.id, &w)
	}

	files, err := e.env.Store.FindFiles(ctx, clause)
	if err != nil {
		return failed(cybox.KindFile, e.id, err, &w)
	}
	e.env.logger().Debug("file query", "observable", e.id, "clause", clause.String(), "matches", len(files))

	if len(files) == 0 {
		return result.NewFalse(e.id, describe(cybox.KindFile, "Found no matches for "+clause.String(), &w))
	}

	secondary := e.secondaryFields()
	if len(secondary) == 0 {
		return result.NewTrue(e.id,
			describe(cybox.KindFile, fmt.Sprintf("Found %d matches for %s", len(files), clause.String()), &w),
			e.refs(files))
	}

	hits, err := e.secondaryPass(ctx, files, &w)
	if err != nil {
		return failed(cybox.KindFile, e.id, err, &w)
	}
	tests := strings.Join(secondary, ", ")
	if len(hits) == 0 {
		return result.NewFalse(e.id, describe(cybox.KindFile,
			fmt.Sprintf("Found %d matches for %s but none for secondary tests on %s", len(files), clause.String(), tests), &w))
	}
	return result.NewTrue(e.id,
		describe(cybox.KindFile, fmt.Sprintf("Found %d matches for %s and secondary tests on %s", len(hits), clause.String(), tests), &w),
		e.refs(hits))
}
// #endregion file-evaluator

// #region build-clause
// buildClause ANDs one predicate per present field. A field whose predicate
// cannot be built is skipped with a warning.
func (e *File) buildClause(w *result.Warnings) match.Clause {
	o := e.obj
	var clause match.Clause
	add := func(c match.Clause, err error) {
		if err != nil {
			w.AddErr(err)
			return
		}
		clause = clause.And(c)
	}

	if !o.SizeInBytes.IsEmpty() {
		add(match.NumericClause(o.SizeInBytes.Values, o.SizeInBytes.Condition, o.SizeInBytes.Apply, "size"))
	}
	if !o.FileName.IsEmpty() {
		add(match.StringClause(o.FileName.Values, o.FileName.Condition, o.FileName.Apply, "name"))
	}
	if !o.FileExtension.IsEmpty() {
		if condition(o.FileExtension) == cybox.Equals {
			add(match.StringClause(o.FileExtension.Values, cybox.EndsWith, o.FileExtension.Apply, "name"))
		} else {
			w.Add("Could not process condition %s on file extension", o.FileExtension.Condition)
		}
	}
	if !o.FilePath.IsEmpty() {
		add(match.StringClause(match.NormalizeDirPaths(o.FilePath.Values), o.FilePath.Condition, o.FilePath.Apply, "parent_path"))
	}
	if !o.CreatedTime.IsEmpty() {
		add(match.TimestampClause(o.CreatedTime.Values, o.CreatedTime.Condition, o.CreatedTime.Apply, "crtime"))
	}
	if !o.ModifiedTime.IsEmpty() {
		add(match.TimestampClause(o.ModifiedTime.Values, o.ModifiedTime.Condition, o.ModifiedTime.Apply, "mtime"))
	}
	if !o.AccessedTime.IsEmpty() {
		add(match.TimestampClause(o.AccessedTime.Values, o.AccessedTime.Condition, o.AccessedTime.Apply, "atime"))
	}
	for _, h := range o.Hashes {
		if h.Value.IsEmpty() {
			w.Add("Could not process non-simple hash value")
			continue
		}
		switch strings.ToUpper(strings.ReplaceAll(h.Type, "-", "")) {
		case "MD5":
			add(match.StringClause(h.Value.Values, h.Value.Condition, h.Value.Apply, "md5"))
		case "SHA256":
			add(match.StringClause(h.Value.Values, h.Value.Condition, h.Value.Apply, "sha256"))
		default:
			w.Add("Could not process hash type %s", h.Type)
		}
	}
	if !o.PETimeDateStamp.IsEmpty() {
		add(match.TimestampClause(o.PETimeDateStamp.Values, o.PETimeDateStamp.Condition, o.PETimeDateStamp.Apply, "crtime"))
	}
	return clause
}
// #endregion build-clause

// #region secondary
func (e *File) secondaryFields() []string {
	var fields []string
	if e.obj.IsMasqueraded != nil {
		fields = append(fields, "is_masqueraded")
	}
	if !e.obj.FileFormat.IsEmpty() {
		fields = append(fields, "File_Format")
	}
	return fields
}

// secondaryPass keeps files whose masquerade flag agrees with the object.
// File_Format mismatches only warn so that detection gaps in the case do not
// hide otherwise matching files.
func (e *File) secondaryPass(ctx context.Context, files []casedb.File, w *result.Warnings) ([]casedb.File, error) {
	var hits []casedb.File
	mismatched := map[string]bool{}
	for _, f := range files {
		if flag := e.obj.IsMasqueraded; flag != nil {
			masqueraded, err := e.env.Store.HasArtifact(ctx, f.ID, casedb.ArtExtMismatch)
			if err != nil {
				return nil, err
			}
			if masqueraded != *flag {
				continue
			}
		}
		if ff := e.obj.FileFormat; !ff.IsEmpty() {
			ok, err := match.MatchField(ff, f.MIMEType)
			if err != nil {
				w.AddErr(err)
			} else if !ok {
				mismatched[f.MIMEType] = true
			}
		}
		hits = append(hits, f)
	}
	if len(mismatched) > 0 {
		formats := make([]string, 0, len(mismatched))
		for m := range mismatched {
			if m == "" {
				m = "unknown"
			}
			formats = append(formats, m)
		}
		sort.Strings(formats)
		w.Add("Did not match File_Format field %s against %s", joinValues(e.obj.FileFormat), strings.Join(formats, ", "))
	}
	return hits, nil
}

func (e *File) refs(files []casedb.File) []result.ArtifactRef {
	refs := make([]result.ArtifactRef, len(files))
	for i, f := range files {
		refs[i] = result.ArtifactRef{ObjectID: f.ID, ObservableID: e.id, ObjectType: cybox.KindFile.String()}
	}
	return refs
}
// #endregion secondary
