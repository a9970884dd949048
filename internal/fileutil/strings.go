package fileutil

import "sort"

// AppendUnique appends item unless it is already present or items holds
// limit entries. A limit of zero or less means no cap.
func AppendUnique(items []string, item string, limit int) []string {
	if limit > 0 && len(items) >= limit {
		return items
	}
	for _, existing := range items {
		if existing == item {
			return items
		}
	}
	return append(items, item)
}

// SortedKeys returns the keys of values in ascending order.
func SortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
