package hive

import (
	"regexp"
	"strings"
)

// #region select
// Select narrows hives to those that may hold hiveName.
//
//   - empty name: every hive
//   - HKEY_LOCAL_MACHINE: hives stored under system32
//   - any other HKEY_* root: the hives outside system32 (user hives)
//   - otherwise: hives whose scratch copy is named after hiveName, or every
//     hive when none is
func Select(hives []Hive, hiveName string) []Hive {
	name := strings.TrimSpace(hiveName)
	if name == "" {
		return hives
	}
	upper := strings.ToUpper(name)

	var out []Hive
	switch {
	case upper == "HKEY_LOCAL_MACHINE":
		for _, h := range hives {
			if isSystemHive(h) {
				out = append(out, h)
			}
		}
		return out
	case strings.HasPrefix(upper, "HKEY"):
		for _, h := range hives {
			if !isSystemHive(h) {
				out = append(out, h)
			}
		}
		return out
	}

	pattern := regexp.MustCompile(`(?i)STIX[/\\]` + regexp.QuoteMeta(name))
	for _, h := range hives {
		if pattern.MatchString(h.Path) {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return hives
	}
	return out
}

func isSystemHive(h Hive) bool {
	return strings.Contains(strings.ToLower(h.File.ParentPath), "system32")
}
// #endregion select

// #region walk
// SplitKeyPath splits a backslash-separated key path, dropping empty parts.
func SplitKeyPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, `\`) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// FindKey descends from root one component at a time. A missing step reports
// false; it is not an error.
func FindKey(root Key, components []string) (Key, bool) {
	cur := root
	for _, c := range components {
		next, ok := cur.Subkey(c)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Lookup finds keyPath under root. When hiveName is an HKEY_* root the first
// component usually names the hive file itself, so a miss is retried without it.
func Lookup(root Key, keyPath, hiveName string) (Key, bool) {
	parts := SplitKeyPath(keyPath)
	if k, ok := FindKey(root, parts); ok {
		return k, true
	}
	if strings.HasPrefix(strings.ToUpper(hiveName), "HKEY") && len(parts) > 1 {
		return FindKey(root, parts[1:])
	}
	return nil, false
}
// #endregion walk
