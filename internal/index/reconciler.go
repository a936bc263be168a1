// Package index maintains the ordered/keyed JSON collection documents
// (post index, categories, card presets, social buttons, galleries) with
// upsert/remove/reorder semantics. All operations are pure: they return a
// new slice and never mutate their input, so a failed publish leaves the
// in-memory draft untouched.
package index

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Keyed is implemented by every collection entry type; Key returns the
// designated uniqueness key (slug, id, or url).
type Keyed interface {
	Key() string
}

// UpsertByKey replaces the entry whose key matches item's, else appends.
// The result never contains two entries with the same key.
func UpsertByKey[T Keyed](list []T, item T) []T {
	out := make([]T, len(list))
	copy(out, list)

	for i, existing := range out {
		if existing.Key() == item.Key() {
			out[i] = item
			return out
		}
	}
	return append(out, item)
}

// RemoveByKeys filters out entries whose key appears in keys. Duplicate and
// unknown keys are ignored.
func RemoveByKeys[T Keyed](list []T, keys []string) []T {
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}

	out := make([]T, 0, len(list))
	for _, e := range list {
		if _, ok := drop[e.Key()]; ok {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SortBy returns list sorted stably by less.
func SortBy[T Keyed](list []T, less func(a, b T) bool) []T {
	out := make([]T, len(list))
	copy(out, list)
	slices.SortStableFunc(out, func(a, b T) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	})
	return out
}

// Reorder rearranges list to follow nextOrder (a full desired key order)
// and re-stamps an explicit integer order 1..n through setOrder. Keys in
// nextOrder that are absent from list are ignored; entries missing from
// nextOrder keep their relative order after the ordered ones.
func Reorder[T Keyed](list []T, nextOrder []string, setOrder func(*T, int)) []T {
	byKey := make(map[string]T, len(list))
	for _, e := range list {
		byKey[e.Key()] = e
	}

	out := make([]T, 0, len(list))
	seen := make(map[string]struct{}, len(nextOrder))

	for _, k := range nextOrder {
		e, ok := byKey[k]
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	for _, e := range list {
		if _, ok := seen[e.Key()]; !ok {
			out = append(out, e)
		}
	}

	for i := range out {
		setOrder(&out[i], i+1)
	}
	return out
}

// FilterVisible derives the public variant of a dual-index document: the
// admin document keeps every entry, the public one drops hidden entries.
// Both must be written inside the same commit transaction so they can never
// disagree about a commit.
func FilterVisible[T Keyed](list []T, hidden func(T) bool) []T {
	out := make([]T, 0, len(list))
	for _, e := range list {
		if hidden(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// DeletedKeys computes batch deletions as the set difference between the
// edit-session snapshot and the current in-memory list: keys present in
// snapshot but absent from current.
func DeletedKeys[T Keyed](snapshot, current []T) []string {
	have := make(map[string]struct{}, len(current))
	for _, e := range current {
		have[e.Key()] = struct{}{}
	}

	var deleted []string
	for _, e := range snapshot {
		if _, ok := have[e.Key()]; !ok {
			deleted = append(deleted, e.Key())
		}
	}
	return deleted
}

// MarshalDocument renders a collection document the way the site stores it:
// pretty-printed JSON, two-space indent, trailing newline.
func MarshalDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
