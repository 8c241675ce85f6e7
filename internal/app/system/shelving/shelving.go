// Package shelving holds the in-memory list processing shared by the book
// and collection views: ordering volumes inside a series, grouping entries
// by series, and building the alphabetical sort key.
//
// Ordering rule for tomes: entries without a tome come first, then tomes in
// ascending numeric order. Sorting is stable, so entries with equal tomes
// keep the order the store returned them in.
package shelving

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
)

// Key identifies where an item sits on the shelf.
type Key struct {
	Serie   string // series name, or title for one-shots
	Version *int
	Tome    *int
}

// CompareTome orders tomes with nil before any number.
func CompareTome(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return cmp.Compare(*a, *b)
	}
}

// SortByTome stable-sorts items by tome using CompareTome.
func SortByTome[T any](items []T, key func(T) Key) {
	slices.SortStableFunc(items, func(a, b T) int {
		return CompareTome(key(a).Tome, key(b).Tome)
	})
}

// Group is one series (one version of it) with its volumes in shelf order.
type Group[T any] struct {
	Serie   string `json:"serie"`
	Version *int   `json:"version,omitempty"`
	Items   []T    `json:"books"`
}

// GroupBySeries buckets items by (series, version). Groups are ordered by
// folded series name then version (nil first); items inside a group are
// ordered by tome.
func GroupBySeries[T any](items []T, key func(T) Key) []Group[T] {
	type gk struct {
		serie   string
		version int
		hasVer  bool
	}
	index := make(map[gk]int)
	var groups []Group[T]

	for _, it := range items {
		k := key(it)
		id := gk{serie: k.Serie}
		if k.Version != nil {
			id.version, id.hasVer = *k.Version, true
		}
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, Group[T]{Serie: k.Serie, Version: k.Version})
		}
		groups[i].Items = append(groups[i].Items, it)
	}

	for i := range groups {
		SortByTome(groups[i].Items, key)
	}
	slices.SortStableFunc(groups, func(a, b Group[T]) int {
		if c := strings.Compare(text.Fold(a.Serie), text.Fold(b.Serie)); c != 0 {
			return c
		}
		return CompareTome(a.Version, b.Version)
	})
	return groups
}

// SortKey builds the alphabetical key "serie (vN) - tome M". The version
// and tome parts are omitted when unset.
func SortKey(k Key) string {
	var b strings.Builder
	b.WriteString(k.Serie)
	if k.Version != nil {
		b.WriteString(" (v")
		b.WriteString(strconv.Itoa(*k.Version))
		b.WriteString(")")
	}
	if k.Tome != nil {
		b.WriteString(" - tome ")
		b.WriteString(strconv.Itoa(*k.Tome))
	}
	return b.String()
}

// SortAlphabetical orders items by SortKey, folded for case and accents.
// Items with the same series and version fall back to tome order so that
// "tome 10" does not sort before "tome 2".
func SortAlphabetical[T any](items []T, key func(T) Key) {
	slices.SortStableFunc(items, func(a, b T) int {
		ka, kb := key(a), key(b)
		base := func(k Key) string {
			k.Tome = nil
			return text.Fold(SortKey(k))
		}
		if c := strings.Compare(base(ka), base(kb)); c != 0 {
			return c
		}
		return CompareTome(ka.Tome, kb.Tome)
	})
}

// FirstOfMonth returns midnight on the first day of t's month, in t's location.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Distinct returns the non-empty values in first-seen order.
func Distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
