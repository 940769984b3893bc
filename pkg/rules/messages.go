package rules

import (
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Catalog keys for the built-in messages.
const (
	KeyRequired     = "validation.required"
	KeyEmail        = "validation.email"
	KeyMinLength    = "validation.minLength"
	KeyMaxLength    = "validation.maxLength"
	KeyPattern      = "validation.pattern"
	KeyNumber       = "validation.number"
	KeyMin          = "validation.min"
	KeyMax          = "validation.max"
	KeyMinExclusive = "validation.minExclusive"
	KeyMaxExclusive = "validation.maxExclusive"
	KeyMarkup       = "validation.noMarkup"
	KeyInvalid      = "validation.invalid"
)

var defaultTemplates = map[string]string{
	KeyRequired:     "This field is required",
	KeyEmail:        "Please enter a valid email address",
	KeyMinLength:    "Must be at least {{ min }} characters",
	KeyMaxLength:    "Must be at most {{ max }} characters",
	KeyPattern:      "Invalid format",
	KeyNumber:       "Must be a number",
	KeyMin:          "Must be at least {{ min }}",
	KeyMax:          "Must be at most {{ max }}",
	KeyMinExclusive: "Must be greater than {{ min }}",
	KeyMaxExclusive: "Must be less than {{ max }}",
	KeyMarkup:       "Must not contain markup",
	KeyInvalid:      "Invalid value",
}

// Translator resolves a message key for a locale. Translations are rendered
// as templates with the rule params, so they may reference {{ min }} etc.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate implements Translator.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// Messages is the catalog used to resolve failure messages. It is safe for
// concurrent use.
type Messages struct {
	mu         sync.RWMutex
	templates  map[string]string
	compiled   map[string]*pongo2.Template
	translator Translator
}

// MessagesOption configures a Messages catalog.
type MessagesOption func(*Messages)

// WithTranslator consults t before the catalog.
func WithTranslator(t Translator) MessagesOption {
	return func(m *Messages) {
		m.translator = t
	}
}

// WithTemplates overrides or extends catalog entries.
func WithTemplates(templates map[string]string) MessagesOption {
	return func(m *Messages) {
		for key, tpl := range templates {
			if strings.TrimSpace(key) == "" {
				continue
			}
			m.templates[key] = tpl
		}
	}
}

// NewMessages builds a catalog seeded with the default English messages.
func NewMessages(opts ...MessagesOption) *Messages {
	m := &Messages{
		templates: make(map[string]string, len(defaultTemplates)),
		compiled:  make(map[string]*pongo2.Template),
	}
	for key, tpl := range defaultTemplates {
		m.templates[key] = tpl
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

var (
	defaultMessagesOnce sync.Once
	defaultMessages     *Messages
)

// DefaultMessages returns the shared default catalog.
func DefaultMessages() *Messages {
	defaultMessagesOnce.Do(func() {
		defaultMessages = NewMessages()
	})
	return defaultMessages
}

// Set replaces a catalog entry.
func (m *Messages) Set(key, tpl string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[key] = tpl
}

// Template returns the raw catalog entry for key.
func (m *Messages) Template(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tpl, ok := m.templates[key]
	return tpl, ok
}

// Render resolves key for locale: the translator first, then the catalog,
// then the generic invalid message. Template errors fall back to the raw
// text so a message is always produced.
func (m *Messages) Render(locale, key string, params map[string]any) string {
	if m.translator != nil {
		if msg, err := m.translator.Translate(locale, key, params); err == nil && strings.TrimSpace(msg) != "" {
			return m.execute(msg, params)
		}
	}

	tpl, ok := m.Template(key)
	if !ok {
		tpl, ok = m.Template(KeyInvalid)
		if !ok {
			return key
		}
	}
	return m.execute(tpl, params)
}

func (m *Messages) execute(source string, params map[string]any) string {
	if !strings.Contains(source, "{{") && !strings.Contains(source, "{%") {
		return source
	}

	tpl, err := m.compile(source)
	if err != nil {
		return source
	}
	data := pongo2.Context{}
	for key, value := range params {
		data[key] = value
	}
	out, err := tpl.Execute(data)
	if err != nil {
		return source
	}
	return out
}

func (m *Messages) compile(source string) (*pongo2.Template, error) {
	m.mu.RLock()
	tpl, ok := m.compiled[source]
	m.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.compiled[source] = tpl
	m.mu.Unlock()
	return tpl, nil
}
