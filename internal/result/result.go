package result

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/stix-triage/internal/cybox"
)

// #region constructors
// NewTrue builds a True result carrying the matched artifacts.
func NewTrue(observableID, desc string, artifacts []ArtifactRef) ObservableResult {
	return ObservableResult{ObservableID: observableID, State: True, Description: desc, Artifacts: artifacts}
}

// NewFalse builds a False result.
func NewFalse(observableID, desc string) ObservableResult {
	return ObservableResult{ObservableID: observableID, State: False, Description: desc}
}

// NewIndeterminate builds an Indeterminate result.
func NewIndeterminate(observableID, desc string) ObservableResult {
	return ObservableResult{ObservableID: observableID, State: Indeterminate, Description: desc}
}
// #endregion constructors

// #region predicates
func (r ObservableResult) IsTrue() bool { return r.State == True }
func (r ObservableResult) IsFalse() bool { return r.State == False }
func (r ObservableResult) IsIndeterminate() bool { return r.State == Indeterminate }
// #endregion predicates

// #region combine
// Combine folds other into r under op.
//
// AND: False dominates, then True, then Indeterminate.
// OR: True dominates, then Indeterminate, then False.
//
// Artifacts are the set union of both sides unless the combined state is False.
// Descriptions are joined line by line.
func (r ObservableResult) Combine(other ObservableResult, op cybox.Operator) ObservableResult {
	out := ObservableResult{
		ObservableID: r.ObservableID,
		Description:  joinLines(r.Description, other.Description),
	}
	switch op {
	case cybox.OpAnd:
		switch {
		case r.State == False || other.State == False:
			out.State = False
		case r.State == True || other.State == True:
			out.State = True
		default:
			out.State = Indeterminate
		}
	case cybox.OpOr:
		switch {
		case r.State == True || other.State == True:
			out.State = True
		case r.State == False && other.State == False:
			out.State = False
		default:
			out.State = Indeterminate
		}
	default:
		out.State = Indeterminate
	}

	if out.State != False {
		out.Artifacts = UnionArtifacts(r.Artifacts, other.Artifacts)
	}
	return out
}

// UnionArtifacts returns the refs of a followed by those of b, keeping the first
// occurrence of each ref.
func UnionArtifacts(a, b []ArtifactRef) []ArtifactRef {
	out := make([]ArtifactRef, 0, len(a)+len(b))
	seen := make(map[ArtifactRef]struct{}, len(a)+len(b))
	for _, refs := range [][]ArtifactRef{a, b} {
		for _, ref := range refs {
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}
	return out
}

// CombineAll folds results left to right under op. An empty slice yields
// Indeterminate.
func CombineAll(observableID string, results []ObservableResult, op cybox.Operator) ObservableResult {
	if len(results) == 0 {
		return NewIndeterminate(observableID, "Composition with no children")
	}
	acc := results[0]
	for _, r := range results[1:] {
		acc = acc.Combine(r, op)
	}
	acc.ObservableID = observableID
	return acc
}
// #endregion combine

// #region description
// Indent prefixes every line of s with n spaces.
func Indent(s string, n int) string {
	if s == "" {
		return s
	}
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}

func joinLines(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n" + b
	}
}
// #endregion description

// #region warnings
// Warnings accumulates free-text notices during one evaluation. They are
// appended to the description and never change the verdict.
type Warnings struct {
	items []string
}

// Add records a notice.
func (w *Warnings) Add(format string, args ...any) {
	w.items = append(w.items, fmt.Sprintf(format, args...))
}

// AddErr records err's text.
func (w *Warnings) AddErr(err error) {
	if err != nil {
		w.items = append(w.items, err.Error())
	}
}

// Len returns the number of recorded notices.
func (w *Warnings) Len() int { return len(w.items) }

// Items returns a copy of the recorded notices.
func (w *Warnings) Items() []string {
	return append([]string(nil), w.items...)
}

// String renders the notices as a description suffix, empty when there are none.
func (w *Warnings) String() string {
	if len(w.items) == 0 {
		return ""
	}
	return " (warnings: " + strings.Join(w.items, "; ") + ")"
}
// #endregion warnings
