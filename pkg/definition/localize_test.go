package definition_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/rules"
)

func TestLocalize(t *testing.T) {
	form := model.FormModel{
		ID:       "signup",
		Title:    "Create account",
		Metadata: map[string]string{"titleKey": "signup.title"},
		Fields: []model.Field{
			{Name: "email", Label: "Email", Metadata: map[string]string{"labelKey": "signup.email.label"}},
			{Name: "handle", Label: "Handle", Metadata: map[string]string{"labelKey": "signup.handle.label"}},
			{Name: "bio", Metadata: map[string]string{"descriptionKey": "signup.bio.help"}},
		},
	}
	catalog := rules.Catalog{
		"es": {
			"signup.title":       "Crear cuenta",
			"signup.email.label": "Correo",
		},
	}

	got := definition.Localize(form, "es", catalog)

	want := []string{"Crear cuenta", "Correo", "Handle", "signup.bio.help"}
	if diff := cmp.Diff(want, []string{got.Title, got.Fields[0].Label, got.Fields[1].Label, got.Fields[2].Description}); diff != "" {
		t.Fatalf("localized text mismatch (-want +got):\n%s", diff)
	}
	if form.Title != "Create account" || form.Fields[0].Label != "Email" {
		t.Fatal("input model must not be modified")
	}
}
