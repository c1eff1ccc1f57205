package jsonutil

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Normalize re-marshals a JSON string so that two semantically equal documents
// compare byte-equal (Go marshals map keys in sorted order).
func Normalize(jsonStr string) (string, error) {
	if jsonStr == "" {
		return "", nil
	}

	var data any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", err
	}

	normalized, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(normalized), nil
}

// Equal compares two JSON strings for semantic equality, ignoring field order.
func Equal(a, b string) (bool, error) {
	if a == "" && b == "" {
		return true, nil
	}
	if a == "" || b == "" {
		return false, nil
	}

	na, err := Normalize(a)
	if err != nil {
		return false, err
	}
	nb, err := Normalize(b)
	if err != nil {
		return false, err
	}
	return na == nb, nil
}

// ValuesEqual compares two decoded JSON values for equality. Maps and slices
// are compared recursively; mismatched concrete types fall back to comparing
// their canonical JSON encodings, so json.Number and float64 forms of the
// same number compare equal.
func ValuesEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	switch av := a.(type) {
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
	case map[string]any:
		if bv, ok := b.(map[string]any); ok {
			return mapsEqual(av, bv)
		}
	case []any:
		if bv, ok := b.([]any); ok {
			return slicesEqual(av, bv)
		}
	}

	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	return string(aj) == string(bj)
}

func mapsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !ValuesEqual(av, bv) {
			return false
		}
	}
	return true
}

func slicesEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ValuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// ChangedFields returns the keys whose values differ between current and
// previous, mapped to their current value. Keys removed from current map to
// nil.
func ChangedFields(current, previous map[string]any) map[string]any {
	changed := make(map[string]any)

	for key, cur := range current {
		if prev, ok := previous[key]; !ok || !ValuesEqual(cur, prev) {
			changed[key] = cur
		}
	}
	for key := range previous {
		if _, ok := current[key]; !ok {
			changed[key] = nil
		}
	}
	return changed
}

// SortedKeys returns a map's keys in sorted order for stable output.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flatten walks a nested value and records dot-notation paths for every leaf
// under its leaf key, first occurrence wins. Array elements use numeric path
// segments.
func Flatten(prefix string, data any, keyMap map[string]string) {
	switch v := data.(type) {
	case map[string]any:
		for _, key := range SortedKeys(v) {
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			Flatten(path, v[key], keyMap)
		}
	case []any:
		for i, elem := range v {
			Flatten(fmt.Sprintf("%s.%d", prefix, i), elem, keyMap)
		}
	default:
		leaf := prefix
		if idx := lastDot(prefix); idx >= 0 {
			leaf = prefix[idx+1:]
		}
		if _, exists := keyMap[leaf]; !exists {
			keyMap[leaf] = prefix
		}
	}
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
