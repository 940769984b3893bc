package definition

import (
	"maps"
	"strings"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/rules"
)

const (
	titleKeyHint       = "titleKey"
	labelKeyHint       = "labelKey"
	descriptionKeyHint = "descriptionKey"
)

// Localize returns a copy of form whose title, labels and descriptions are
// translated through the "*Key" metadata entries:
//
//	metadata:
//	  labelKey: signup.email.label
//
// Missing translations keep the declared text, or the key when no text was
// declared. The input model is not modified.
func Localize(form model.FormModel, locale string, t rules.Translator) model.FormModel {
	out := form
	out.Metadata = maps.Clone(form.Metadata)
	out.Fields = append([]model.Field(nil), form.Fields...)
	if t == nil {
		return out
	}

	out.Title = translate(t, locale, out.Metadata[titleKeyHint], out.Title)
	out.Description = translate(t, locale, out.Metadata[descriptionKeyHint], out.Description)
	for i := range out.Fields {
		field := &out.Fields[i]
		field.Label = translate(t, locale, field.Metadata[labelKeyHint], field.Label)
		field.Description = translate(t, locale, field.Metadata[descriptionKeyHint], field.Description)
	}
	return out
}

func translate(t rules.Translator, locale, key, fallback string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	if result, err := t.Translate(locale, key); err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}
