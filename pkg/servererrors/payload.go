package servererrors

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/goliatone/go-formstate/pkg/form"
)

// ErrInvalidPayload is returned when the payload is not valid JSON.
var ErrInvalidPayload = errors.New("servererrors: payload is not valid JSON")

// envelopeKeys are checked in order for the error container.
var envelopeKeys = []string{"errors", "fieldErrors", "validation", "details"}

// pathKeys and messageKeys name the members read from list-shaped errors
// (JSON:API, problem+json extensions, go-errors).
var (
	pathKeys    = []string{"path", "field", "pointer", "json_pointer", "source.pointer", "source.parameter", "location"}
	messageKeys = []string{"message", "detail", "msg", "title", "error"}
)

// ParsePayload reads a loosely shaped JSON error response into messages keyed
// by raw path. Supported shapes:
//
//	{"errors": {"email": ["taken"], "name": "required"}}
//	{"errors": [{"path": "/body/email", "message": "taken"}]}
//	{"email": ["taken"]}
//
// Entries without a path land under the form-level key "".
func ParsePayload(raw []byte) (map[string][]string, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidPayload
	}
	root := gjson.ParseBytes(raw)

	container := root
	for _, key := range envelopeKeys {
		if candidate := root.Get(key); candidate.Exists() {
			container = candidate
			break
		}
	}

	out := make(map[string][]string)
	switch {
	case container.IsArray():
		container.ForEach(func(_, item gjson.Result) bool {
			path, message := listEntry(item)
			if message != "" {
				out[path] = append(out[path], message)
			}
			return true
		})
	case container.IsObject():
		container.ForEach(func(key, value gjson.Result) bool {
			out[key.String()] = append(out[key.String()], messagesOf(value)...)
			return true
		})
	case container.Type == gjson.String:
		out[""] = append(out[""], container.String())
	}

	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func listEntry(item gjson.Result) (string, string) {
	if item.Type == gjson.String {
		return "", strings.TrimSpace(item.String())
	}
	path := ""
	for _, key := range pathKeys {
		if value := item.Get(key); value.Exists() && value.String() != "" {
			path = value.String()
			break
		}
	}
	for _, key := range messageKeys {
		if value := item.Get(key); value.Exists() && value.String() != "" {
			return path, strings.TrimSpace(value.String())
		}
	}
	return path, ""
}

func messagesOf(value gjson.Result) []string {
	var out []string
	switch {
	case value.IsArray():
		for _, item := range value.Array() {
			if _, message := listEntry(item); message != "" {
				out = append(out, message)
			}
		}
	case value.IsObject():
		if _, message := listEntry(value); message != "" {
			out = append(out, message)
		}
	default:
		if message := strings.TrimSpace(value.String()); message != "" {
			out = append(out, message)
		}
	}
	return out
}

// Apply maps payload against the form's fields and writes field messages
// through SetFieldErrors. Form-level messages are returned for the caller to
// present.
func Apply(f *form.Form, payload map[string][]string) []string {
	mapping := NewMapper(f.Fields()).Map(payload)
	f.SetFieldErrors(mapping.Messages())
	return mapping.Form
}

// ApplyJSON parses raw with ParsePayload and applies it to f.
func ApplyJSON(f *form.Form, raw []byte) ([]string, error) {
	payload, err := ParsePayload(raw)
	if err != nil {
		return nil, err
	}
	return Apply(f, payload), nil
}
