// Package normalize cleans free-text input before it reaches the stores.
package normalize

import (
	"strings"
)

// maxQueryLen caps search input; longer queries are truncated on a rune boundary.
const maxQueryLen = 100

// Name trims surrounding whitespace and collapses internal runs of
// whitespace to a single space. Case is preserved: artist lookup is
// case-sensitive.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Names applies Name to every entry, drops blanks and keeps the first
// occurrence of each name.
func Names(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		n := Name(raw)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Query prepares a search string: trimmed, whitespace collapsed, and
// capped at maxQueryLen runes.
func Query(s string) string {
	q := Name(s)
	r := []rune(q)
	if len(r) > maxQueryLen {
		q = strings.TrimSpace(string(r[:maxQueryLen]))
	}
	return q
}

// ListName lowercases and trims a target list name ("collection", "wishlist").
func ListName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
