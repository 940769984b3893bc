package rules

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoTranslation is returned by Catalog when neither the locale nor its
// base language has the key.
var ErrNoTranslation = errors.New("rules: no translation")

// Catalog is a Translator backed by per-locale message tables:
//
//	es:
//	  validation.required: Este campo es obligatorio
//	  validation.minLength: Debe tener al menos {{ min }} caracteres
type Catalog map[string]map[string]string

// ParseCatalog decodes a YAML (or JSON) catalog document.
func ParseCatalog(data []byte) (Catalog, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("rules: parse catalog: %w", err)
	}
	catalog := make(Catalog, len(raw))
	for locale, entries := range raw {
		catalog[normalizeLocale(locale)] = entries
	}
	return catalog, nil
}

// LoadCatalog reads and parses a catalog file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// Translate implements Translator. "es-MX" falls back to "es".
func (c Catalog) Translate(locale, key string, _ ...any) (string, error) {
	locale = normalizeLocale(locale)
	for locale != "" {
		if msg, ok := c[locale][key]; ok {
			return msg, nil
		}
		idx := strings.LastIndex(locale, "-")
		if idx < 0 {
			break
		}
		locale = locale[:idx]
	}
	return "", fmt.Errorf("%w: %s", ErrNoTranslation, key)
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
}
