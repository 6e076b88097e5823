package match

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/stix-triage/internal/cybox"
)

func TestStringClauseShapes(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		cond   cybox.ConditionType
		apply  cybox.ApplyPolicy
		want   Clause
	}{
		{
			name:   "equals single",
			values: []string{"Evil.exe"},
			cond:   cybox.Equals,
			want:   Clause{SQL: "lower(name) = ?", Args: []any{"evil.exe"}},
		},
		{
			name:   "contains any",
			values: []string{"a", "b"},
			cond:   cybox.Contains,
			apply:  cybox.ApplyAny,
			want: Clause{
				SQL:  `(lower(name) LIKE ? ESCAPE '\' OR lower(name) LIKE ? ESCAPE '\')`,
				Args: []any{"%a%", "%b%"},
			},
		},
		{
			name:   "equals none",
			values: []string{"a", "b"},
			cond:   cybox.Equals,
			apply:  cybox.ApplyNone,
			want: Clause{
				SQL:  "(NOT (lower(name) = ?) AND NOT (lower(name) = ?))",
				Args: []any{"a", "b"},
			},
		},
		{
			name:   "starts with escapes wildcards",
			values: []string{"100%_x"},
			cond:   cybox.StartsWith,
			want:   Clause{SQL: `lower(name) LIKE ? ESCAPE '\'`, Args: []any{`100\%\_x%`}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringClause(tt.values, tt.cond, tt.apply, "name")
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("clause mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStringClauseRejectsNumericCondition(t *testing.T) {
	_, err := StringClause([]string{"a"}, cybox.GreaterThan, cybox.ApplyAny, "name")
	assert.True(t, IsUnsupported(err))

	_, err = StringClause([]string{"a"}, cybox.Equals, cybox.ApplyAny, "name; DROP TABLE files")
	assert.Error(t, err)

	_, err = StringClause([]string{""}, cybox.Equals, cybox.ApplyAny, "name")
	assert.ErrorIs(t, err, ErrEmptyValue)
}

func TestNumericClause(t *testing.T) {
	got, err := NumericClause([]string{"1000"}, cybox.GreaterThan, cybox.ApplyAny, "size")
	require.NoError(t, err)
	assert.Equal(t, Clause{SQL: "size > ?", Args: []any{int64(1000)}}, got)

	got, err = NumericClause([]string{"10", "20"}, cybox.InclusiveBetween, cybox.ApplyAny, "size")
	require.NoError(t, err)
	assert.Equal(t, Clause{SQL: "(size >= ? AND size <= ?)", Args: []any{int64(10), int64(20)}}, got)

	got, err = NumericClause([]string{"10", "20"}, cybox.ExclusiveBetween, cybox.ApplyAny, "size")
	require.NoError(t, err)
	assert.Equal(t, "(size > ? AND size < ?)", got.SQL)

	_, err = NumericClause([]string{"1000"}, cybox.InclusiveBetween, cybox.ApplyAny, "size")
	assert.ErrorContains(t, err, "unexpected number of arguments")

	_, err = NumericClause([]string{"big"}, cybox.Equals, cybox.ApplyAny, "size")
	assert.ErrorContains(t, err, "not numeric")

	_, err = NumericClause([]string{"10"}, cybox.Contains, cybox.ApplyAny, "size")
	assert.True(t, IsUnsupported(err))
}

func TestTimestampClause(t *testing.T) {
	got, err := TimestampClause([]string{"2020-01-01T00:00:00Z"}, cybox.GreaterThanOrEqual, cybox.ApplyAny, "crtime")
	require.NoError(t, err)
	assert.Equal(t, Clause{SQL: "crtime >= ?", Args: []any{int64(1577836800)}}, got)

	_, err = TimestampClause([]string{"yesterday"}, cybox.Equals, cybox.ApplyAny, "crtime")
	assert.ErrorContains(t, err, "parse timestamp")
}

func TestClauseAnd(t *testing.T) {
	a := Clause{SQL: "size > ?", Args: []any{int64(1)}}
	b := Clause{SQL: "lower(name) = ?", Args: []any{"x"}}
	joined := a.And(b)
	assert.Equal(t, "size > ? AND lower(name) = ?", joined.SQL)
	assert.Equal(t, []any{int64(1), "x"}, joined.Args)
	assert.Equal(t, a, Clause{}.And(a))
	assert.Equal(t, a, a.And(Clause{}))
	assert.Equal(t, "size > 1 AND lower(name) = 'x'", joined.String())
}
