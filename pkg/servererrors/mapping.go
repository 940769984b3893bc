package servererrors

import (
	"sort"
	"strconv"
	"strings"
)

// Mapping splits a server validation payload into field-level and form-level
// messages. Field keys are the names the form engine knows.
type Mapping struct {
	Fields map[string][]string
	Form   []string
}

// Messages returns the field messages joined into the single string the form
// engine stores per field.
func (m Mapping) Messages() map[string]string {
	if len(m.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(m.Fields))
	for name, messages := range m.Fields {
		if joined := strings.Join(messages, "; "); joined != "" {
			out[name] = joined
		}
	}
	return out
}

// Mapper resolves raw server paths (JSON pointers, dotted paths, bracketed
// indexes, request wrappers) against a fixed set of field names.
type Mapper struct {
	fields map[string]struct{}
}

// NewMapper builds a mapper for the given field names. Dotted names are
// matched segment by segment so nested paths resolve to their deepest known
// prefix.
func NewMapper(fieldNames []string) *Mapper {
	fields := make(map[string]struct{}, len(fieldNames))
	for _, name := range fieldNames {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			fields[trimmed] = struct{}{}
		}
	}
	return &Mapper{fields: fields}
}

// Map normalises a payload keyed by raw paths. Unknown paths become
// form-level messages so nothing is lost.
func (m *Mapper) Map(payload map[string][]string) Mapping {
	var mapping Mapping
	if len(payload) == 0 {
		return mapping
	}

	paths := make([]string, 0, len(payload))
	for path := range payload {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, raw := range paths {
		messages := normalizeMessages(payload[raw])
		if len(messages) == 0 {
			continue
		}
		field, ok := m.Resolve(raw)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[field] = normalizeMessages(append(mapping.Fields[field], messages...))
	}

	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// Resolve maps one raw path to a known field name.
func (m *Mapper) Resolve(raw string) (string, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	segments := splitPath(raw)
	if len(segments) == 0 {
		return "", false
	}

	best := ""
	for _, candidate := range pathVariants(segments) {
		match := m.longestPrefix(candidate)
		if strings.Count(match, ".") > strings.Count(best, ".") || (best == "" && match != "") {
			best = match
		}
	}
	return best, best != ""
}

func (m *Mapper) longestPrefix(segments []string) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := m.fields[candidate]; ok {
			return candidate
		}
	}
	return ""
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func normalizeMessages(messages []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func splitPath(raw string) []string {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimLeft(clean, "#$/.")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		// JSON pointer escapes.
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
	"properties": {},
}

func pathVariants(segments []string) [][]string {
	unwrapped := segments
	for len(unwrapped) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(unwrapped[0])]; !ok {
			break
		}
		unwrapped = unwrapped[1:]
	}

	variants := [][]string{segments, unwrapped, withoutIndexes(segments), withoutIndexes(unwrapped)}
	out := variants[:0]
	seen := make(map[string]struct{}, len(variants))
	for _, variant := range variants {
		if len(variant) == 0 {
			continue
		}
		key := strings.Join(variant, "\x00")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, variant)
	}
	return out
}

func withoutIndexes(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
