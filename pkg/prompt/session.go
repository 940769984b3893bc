package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/rules"
)

const (
	formatPassword = "password"
	formatTextArea = "textarea"
	widgetKey      = "widget"
)

// Session asks for the fields of one form until it submits.
type Session struct {
	form        *form.Form
	fields      map[string]model.Field
	driver      Driver
	theme       Theme
	maxAttempts int
	logger      *slog.Logger
}

// NewSession binds a session to f.
func NewSession(f *form.Form, opts ...Option) *Session {
	s := &Session{
		form:        f,
		theme:       DefaultTheme(),
		maxAttempts: defaultMaxAttempts,
		logger:      discardLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver()
	}
	return s
}

// Run asks every field in declaration order, then submits. Fields that fail
// on submit, or that onSubmit flags before returning ErrRejected, are asked
// again. It returns the submitted values.
func (s *Session) Run(ctx context.Context, onSubmit form.SubmitFunc) (map[string]any, error) {
	for _, name := range s.form.Fields() {
		if err := s.askUntilValid(ctx, name); err != nil {
			return nil, err
		}
	}

	for round := 1; ; round++ {
		ok, err := s.form.Submit(ctx, onSubmit)
		rejected := errors.Is(err, ErrRejected)
		if err != nil && !rejected {
			return nil, err
		}
		if ok && !rejected {
			s.info(ctx, s.theme.Success.Render("Submitted."))
			return s.form.Values(), nil
		}

		errs := s.form.Errors()
		if rejected && len(errs) == 0 {
			return nil, err
		}
		if round >= s.maxAttempts {
			return nil, fmt.Errorf("%w: submit", ErrTooManyAttempts)
		}
		s.logger.Debug("submit rejected", slog.Int("errors", len(errs)))
		for _, name := range s.form.Fields() {
			msg, failed := errs[name]
			if !failed {
				continue
			}
			s.info(ctx, s.theme.Error.Render(fmt.Sprintf("%s: %s", s.label(name), msg)))
			if err := s.askUntilValid(ctx, name); err != nil {
				return nil, err
			}
		}
	}
}

func (s *Session) askUntilValid(ctx context.Context, name string) error {
	binding := s.form.Field(name)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		value, err := s.ask(ctx, name, binding.Value())
		if err != nil {
			return err
		}
		binding.OnChange(value)
		if binding.OnBlur(ctx) {
			// Fields without rules keep a server error through validation;
			// a new answer replaces it.
			if !s.form.HasRules(name) {
				s.form.ClearFieldError(name)
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.logger.Debug("field rejected", slog.String("field", name), slog.Int("attempt", attempt))
		s.info(ctx, s.theme.Error.Render(fmt.Sprintf("%s: %s", s.label(name), binding.Error())))
	}
	return fmt.Errorf("%w: %s", ErrTooManyAttempts, name)
}

func (s *Session) ask(ctx context.Context, name string, current any) (any, error) {
	field := s.field(name)
	message := s.label(name)
	if field.Required {
		message += " *"
	}

	switch {
	case len(field.Enum) > 0 && field.Type == model.FieldTypeArray:
		options := enumOptions(field.Enum)
		selected, err := s.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  options,
			Defaults: selectedIndices(field.Enum, current),
			Help:     field.Description,
		})
		if err != nil {
			return nil, err
		}
		var out []any
		for _, idx := range selected {
			if idx >= 0 && idx < len(field.Enum) {
				out = append(out, field.Enum[idx])
			}
		}
		return out, nil

	case len(field.Enum) > 0:
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      enumOptions(field.Enum),
			DefaultIndex: enumIndex(field.Enum, current),
			Help:         field.Description,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(field.Enum) {
			return nil, nil
		}
		return field.Enum[idx], nil

	case field.Type == model.FieldTypeBoolean:
		def, _ := current.(bool)
		return s.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def, Help: field.Description})

	case strings.EqualFold(field.Format, formatPassword):
		raw, err := s.driver.Password(ctx, InputConfig{Message: message, Default: rules.Stringify(current), Help: field.Description})
		if err != nil {
			return nil, err
		}
		return raw, nil

	case strings.EqualFold(field.Format, formatTextArea) || field.Metadata[widgetKey] == formatTextArea:
		raw, err := s.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: rules.Stringify(current), Help: field.Description})
		if err != nil {
			return nil, err
		}
		return raw, nil
	}

	raw, err := s.driver.Input(ctx, InputConfig{Message: message, Default: defaultText(current), Help: field.Description})
	if err != nil {
		return nil, err
	}
	return coerce(field.Type, raw), nil
}

func (s *Session) field(name string) model.Field {
	if field, ok := s.fields[name]; ok {
		return field
	}
	return model.Field{Name: name, Type: model.FieldTypeString}
}

func (s *Session) label(name string) string {
	if field, ok := s.fields[name]; ok && field.Label != "" {
		return field.Label
	}
	return name
}

func (s *Session) info(ctx context.Context, msg string) {
	if err := s.driver.Info(ctx, msg); err != nil {
		s.logger.Debug("info message dropped", slog.String("error", err.Error()))
	}
}

// coerce converts typed input. Text that does not parse is kept as is so the
// field's rules report it.
func coerce(kind model.FieldType, raw string) any {
	trimmed := strings.TrimSpace(raw)
	switch kind {
	case model.FieldTypeInteger:
		if trimmed == "" {
			return nil
		}
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n
		}
		return raw
	case model.FieldTypeNumber:
		if trimmed == "" {
			return nil
		}
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return n
		}
		return raw
	case model.FieldTypeArray:
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if item := strings.TrimSpace(part); item != "" {
				out = append(out, item)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return raw
	}
}

func defaultText(current any) string {
	if items, ok := current.([]string); ok {
		return strings.Join(items, ", ")
	}
	return rules.Stringify(current)
}

func enumOptions(values []any) []string {
	out := make([]string, len(values))
	for i, value := range values {
		out[i] = rules.Stringify(value)
	}
	return out
}

func enumIndex(values []any, current any) int {
	text := rules.Stringify(current)
	for i, value := range values {
		if rules.Stringify(value) == text {
			return i
		}
	}
	return 0
}

func selectedIndices(values []any, current any) []int {
	list, ok := current.([]any)
	if !ok {
		return nil
	}
	var out []int
	for _, item := range list {
		text := rules.Stringify(item)
		for i, value := range values {
			if rules.Stringify(value) == text {
				out = append(out, i)
				break
			}
		}
	}
	return out
}
