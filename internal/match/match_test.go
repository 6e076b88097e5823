package match

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/stix-triage/internal/cybox"
)

func TestMatchConditions(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		cond    cybox.ConditionType
		apply   cybox.ApplyPolicy
		subject string
		want    bool
	}{
		{"equals ignores case", []string{"Evil.EXE"}, cybox.Equals, cybox.ApplyAny, "evil.exe", true},
		{"default condition is equals", []string{"a"}, "", "", "a", true},
		{"does not equal", []string{"a"}, cybox.DoesNotEqual, cybox.ApplyAny, "b", true},
		{"contains", []string{"vil"}, cybox.Contains, cybox.ApplyAny, "evil.exe", true},
		{"does not contain", []string{"good"}, cybox.DoesNotContain, cybox.ApplyAny, "evil.exe", true},
		{"starts with", []string{"ev"}, cybox.StartsWith, cybox.ApplyAny, "evil.exe", true},
		{"ends with", []string{".exe"}, cybox.EndsWith, cybox.ApplyAny, "evil.exe", true},
		{"any needs one part", []string{"q", "y"}, cybox.Contains, cybox.ApplyAny, "xyz", true},
		{"any with no part", []string{"q", "r"}, cybox.Contains, cybox.ApplyAny, "xyz", false},
		{"all needs every part", []string{"x", "y"}, cybox.Contains, cybox.ApplyAll, "xyz", true},
		{"all fails on one part", []string{"x", "q"}, cybox.Contains, cybox.ApplyAll, "xyz", false},
		{"none rejects any part", []string{"x", "y"}, cybox.Contains, cybox.ApplyNone, "xyz", false},
		{"none with no part", []string{"q", "r"}, cybox.Contains, cybox.ApplyNone, "xyz", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(tt.values, tt.cond, tt.apply, tt.subject)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEqualsAndDoesNotEqualAreComplements(t *testing.T) {
	for _, subject := range []string{"a", "b", "A", ""} {
		eq, err := Match([]string{"a"}, cybox.Equals, cybox.ApplyAny, subject)
		require.NoError(t, err)
		ne, err := Match([]string{"a"}, cybox.DoesNotEqual, cybox.ApplyAny, subject)
		require.NoError(t, err)
		assert.NotEqual(t, eq, ne, "subject %q", subject)
	}
}

func TestMatchUnsupportedCondition(t *testing.T) {
	_, err := Match([]string{"5"}, cybox.GreaterThan, cybox.ApplyAny, "7")
	require.Error(t, err)
	var condErr *UnsupportedConditionError
	require.True(t, errors.As(err, &condErr))
	assert.Equal(t, cybox.GreaterThan, condErr.Condition)
	assert.True(t, IsUnsupported(err))

	_, err = Match([]string{"a"}, cybox.Equals, "SOME", "a")
	assert.True(t, IsUnsupported(err))
}

func TestMatchFieldEmpty(t *testing.T) {
	_, err := MatchField(nil, "x")
	assert.ErrorIs(t, err, ErrEmptyValue)

	got, err := MatchField(cybox.NewField("x##comma##y", cybox.Contains, cybox.ApplyNone), "xyz")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestNormalizeDirPath(t *testing.T) {
	tests := map[string]string{
		`C:\Windows\System32\evil.exe`: "/Windows/System32/",
		`C:\Windows\`:                  "/Windows/",
		"/tmp/x":                       "/tmp/",
		"file.txt":                     "/",
		`Users\bob\`:                   "/Users/bob/",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeDirPath(in), in)
	}
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "evil.com/x", StripScheme("HTTP://Evil.com/x"))
	assert.Equal(t, "evil.com", StripScheme("https://evil.com"))
	assert.Equal(t, "evil.com", StripScheme("evil.com"))
	assert.Equal(t, []string{"a.org", "b.org"}, StripSchemes([]string{"http://a.org", "b.org"}))
}
