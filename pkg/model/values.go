package model

import (
	"sort"
	"strings"
)

// NestValues expands dotted field names into nested objects, the shape a
// request body expects for flattened object properties:
//
//	{"profile.handle": "ada"} -> {"profile": {"handle": "ada"}}
//
// When a path collides with a plain value (both "a" and "a.b" are set) the
// dotted key is kept verbatim at the deepest level that is still an object.
func NestValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	// Shorter keys first so plain values are placed before their dotted
	// descendants.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		segments := strings.Split(key, ".")
		target := out
		placed := false
		for i, segment := range segments[:len(segments)-1] {
			next, exists := target[segment]
			if !exists {
				child := make(map[string]any)
				target[segment] = child
				target = child
				continue
			}
			child, ok := next.(map[string]any)
			if !ok {
				target[strings.Join(segments[i:], ".")] = values[key]
				placed = true
				break
			}
			target = child
		}
		if !placed {
			target[segments[len(segments)-1]] = values[key]
		}
	}
	return out
}
