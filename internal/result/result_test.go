package result

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danielpatrickdp/stix-triage/internal/cybox"
)

func states(ss ...State) []ObservableResult {
	out := make([]ObservableResult, len(ss))
	for i, s := range ss {
		out[i] = ObservableResult{State: s}
	}
	return out
}

func TestCombineTruthTables(t *testing.T) {
	tests := []struct {
		name string
		in   []State
		op   cybox.Operator
		want State
	}{
		{"and with false", []State{True, True, False}, cybox.OpAnd, False},
		{"and true with indeterminate", []State{True, Indeterminate}, cybox.OpAnd, True},
		{"and indeterminate first", []State{Indeterminate, True}, cybox.OpAnd, True},
		{"and all indeterminate", []State{Indeterminate, Indeterminate}, cybox.OpAnd, Indeterminate},
		{"and false after indeterminate", []State{Indeterminate, False}, cybox.OpAnd, False},
		{"or false false indeterminate", []State{False, False, Indeterminate}, cybox.OpOr, Indeterminate},
		{"or false true", []State{False, True}, cybox.OpOr, True},
		{"or all false", []State{False, False}, cybox.OpOr, False},
		{"or true with indeterminate", []State{Indeterminate, True}, cybox.OpOr, True},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CombineAll("c", states(tt.in...), tt.op)
			assert.Equal(t, tt.want, got.State)
			assert.Equal(t, "c", got.ObservableID)
		})
	}
}

func TestCombineUnknownOperator(t *testing.T) {
	got := NewTrue("a", "", nil).Combine(NewTrue("b", "", nil), cybox.Operator("XOR"))
	assert.Equal(t, Indeterminate, got.State)
}

func TestCombineArtifacts(t *testing.T) {
	a := NewTrue("a", "A", []ArtifactRef{{ObjectID: 1, ObservableID: "a", ObjectType: "FileObject"}})
	b := NewTrue("b", "B", []ArtifactRef{{ObjectID: 2, ObservableID: "b", ObjectType: "URIObject"}})

	or := a.Combine(b, cybox.OpOr)
	assert.Len(t, or.Artifacts, 2)
	assert.Equal(t, "A\nB", or.Description)

	and := a.Combine(NewFalse("f", "F"), cybox.OpAnd)
	assert.Equal(t, False, and.State)
	assert.Empty(t, and.Artifacts)

	// receivers are untouched
	assert.Len(t, a.Artifacts, 1)
	assert.Equal(t, "A", a.Description)
}

func TestCombineDeduplicatesArtifacts(t *testing.T) {
	ref := ArtifactRef{ObjectID: 7, ObservableID: "x", ObjectType: "FileObject"}
	other := ArtifactRef{ObjectID: 8, ObservableID: "x", ObjectType: "FileObject"}
	a := NewTrue("x", "", []ArtifactRef{ref})
	b := NewTrue("x", "", []ArtifactRef{other, ref})

	for _, op := range []cybox.Operator{cybox.OpAnd, cybox.OpOr} {
		got := CombineAll("", []ObservableResult{a, b, a}, op)
		assert.Equal(t, []ArtifactRef{ref, other}, got.Artifacts, string(op))
	}
}

func TestCombineAllEmpty(t *testing.T) {
	assert.Equal(t, Indeterminate, CombineAll("x", nil, cybox.OpAnd).State)
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n  b", Indent("a\nb", 2))
	assert.Equal(t, "", Indent("", 2))
}

func TestWarnings(t *testing.T) {
	var w Warnings
	assert.Equal(t, "", w.String())
	w.Add("Unsupported fields: %s", "is_packed")
	w.AddErr(nil)
	w.Add("second")
	assert.Equal(t, 2, w.Len())
	assert.Equal(t, " (warnings: Unsupported fields: is_packed; second)", w.String())
	assert.Equal(t, []string{"Unsupported fields: is_packed", "second"}, w.Items())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "TRUE", True.String())
	assert.Equal(t, "FALSE", False.String())
	assert.Equal(t, "INDETERMINATE", Indeterminate.String())
}
