package rules_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-formstate/pkg/rules"
)

const catalogYAML = `
es:
  validation.required: Este campo es obligatorio
  validation.minLength: Debe tener al menos {{ min }} caracteres
pt_BR:
  validation.required: Campo obrigatório
`

func TestCatalogTranslate(t *testing.T) {
	catalog, err := rules.ParseCatalog([]byte(catalogYAML))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}

	msgs := rules.NewMessages(rules.WithTranslator(catalog))
	cases := []struct {
		locale string
		key    string
		want   string
	}{
		{locale: "es", key: rules.KeyRequired, want: "Este campo es obligatorio"},
		{locale: "es-MX", key: rules.KeyMinLength, want: "Debe tener al menos 3 caracteres"},
		{locale: "pt-br", key: rules.KeyRequired, want: "Campo obrigatório"},
		{locale: "es", key: rules.KeyEmail, want: "Please enter a valid email address"},
		{locale: "", key: rules.KeyRequired, want: "This field is required"},
	}
	for _, tc := range cases {
		if got := msgs.Render(tc.locale, tc.key, map[string]any{"min": 3}); got != tc.want {
			t.Errorf("Render(%q, %q) = %q, want %q", tc.locale, tc.key, got, tc.want)
		}
	}

	if _, err := catalog.Translate("fr", rules.KeyRequired); !errors.Is(err, rules.ErrNoTranslation) {
		t.Fatalf("expected ErrNoTranslation, got %v", err)
	}
}

func TestParseCatalogRejectsInvalidDocument(t *testing.T) {
	if _, err := rules.ParseCatalog([]byte("es: [not, a, map]")); err == nil {
		t.Fatal("expected parse error")
	}
}
