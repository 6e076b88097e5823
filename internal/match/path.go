package match

import (
	"regexp"
	"strings"
)

// #region normalize
var (
	driveLetter = regexp.MustCompile(`^[A-Za-z]:`)
	scheme      = regexp.MustCompile(`https?://`)
)

// NormalizeDirPath turns a Windows or POSIX path into the parent-path form the
// case stores: no drive letter, forward slashes, a leading slash, and only the
// directory portion with a trailing slash.
func NormalizeDirPath(p string) string {
	p = driveLetter.ReplaceAllString(p, "")
	p = strings.ReplaceAll(p, `\`, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p = p[:strings.LastIndex(p, "/")+1]
	}
	return p
}

// NormalizeDirPaths applies NormalizeDirPath to every part.
func NormalizeDirPaths(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = NormalizeDirPath(v)
	}
	return out
}

// StripScheme lower-cases s and removes any http:// or https:// prefix.
func StripScheme(s string) string {
	return scheme.ReplaceAllString(strings.ToLower(s), "")
}

// StripSchemes applies StripScheme to every part.
func StripSchemes(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = StripScheme(v)
	}
	return out
}
// #endregion normalize
