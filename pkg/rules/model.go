package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/model"
)

var (
	// ErrUnknownKind is returned for validation kinds with no built-in rule.
	ErrUnknownKind = errors.New("rules: unknown validation kind")
	// ErrInvalidParam is returned when a validation parameter cannot be parsed.
	ErrInvalidParam = errors.New("rules: invalid validation parameter")
)

const (
	paramValue      = "value"
	paramPattern    = "pattern"
	paramExclusive  = "exclusive"
	paramMessage    = "message"
	paramMessageKey = "messageKey"

	metadataRequiredMessage = "required.message"
	metadataRequiredKey     = "required.messageKey"
)

// FromForm converts every field of a declarative form into engine rules. The
// returned order lists the fields that carry rules, in declaration order.
func FromForm(form model.FormModel) (map[string][]Rule, []string, error) {
	out := make(map[string][]Rule, len(form.Fields))
	var order []string
	for _, field := range form.Fields {
		if field.Name == "" {
			continue
		}
		fieldRules, err := FromField(field)
		if err != nil {
			return nil, nil, err
		}
		if len(fieldRules) == 0 {
			continue
		}
		out[field.Name] = fieldRules
		order = append(order, field.Name)
	}
	return out, order, nil
}

// FromField converts a field's declarative constraints into rules. The
// presence check comes first, followed by the type-implied checks (email
// format, numeric types) and the explicit validations in declaration order.
func FromField(field model.Field) ([]Rule, error) {
	var out []Rule

	if field.Required {
		var opts []Option
		if msg := field.Metadata[metadataRequiredMessage]; msg != "" {
			opts = append(opts, WithMessage(msg))
		}
		if key := field.Metadata[metadataRequiredKey]; key != "" {
			opts = append(opts, WithKey(key))
		}
		out = append(out, Required(opts...))
	}

	if strings.EqualFold(field.Format, "email") && !hasKind(field.Validations, model.ValidationRuleEmail) {
		out = append(out, Email())
	}
	if (field.Type == model.FieldTypeInteger || field.Type == model.FieldTypeNumber) && !hasKind(field.Validations, model.ValidationRuleNumber) {
		out = append(out, Number())
	}

	for _, validation := range field.Validations {
		rule, err := fromValidation(validation)
		if err != nil {
			return nil, fmt.Errorf("rules: field %q: %w", field.Name, err)
		}
		out = append(out, rule)
	}

	return out, nil
}

func fromValidation(v model.ValidationRule) (Rule, error) {
	opts := messageOptions(v.Params)

	switch v.Kind {
	case model.ValidationRuleMinLength, model.ValidationRuleMaxLength:
		raw := strings.TrimSpace(v.Params[paramValue])
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Rule{}, fmt.Errorf("%s value %q: %w", v.Kind, raw, ErrInvalidParam)
		}
		if v.Kind == model.ValidationRuleMinLength {
			return MinLength(n, opts...), nil
		}
		return MaxLength(n, opts...), nil

	case model.ValidationRuleMin, model.ValidationRuleMax:
		raw := strings.TrimSpace(v.Params[paramValue])
		bound, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Rule{}, fmt.Errorf("%s value %q: %w", v.Kind, raw, ErrInvalidParam)
		}
		if strings.EqualFold(v.Params[paramExclusive], "true") {
			opts = append(opts, Exclusive())
		}
		if v.Kind == model.ValidationRuleMin {
			return Min(bound, opts...), nil
		}
		return Max(bound, opts...), nil

	case model.ValidationRulePattern:
		expr := v.Params[paramPattern]
		re, err := regexp.Compile(expr)
		if err != nil {
			return Rule{}, fmt.Errorf("pattern %q: %w: %v", expr, ErrInvalidParam, err)
		}
		return Pattern(re, opts...), nil

	case model.ValidationRuleEmail:
		return Email(opts...), nil
	case model.ValidationRuleNumber:
		return Number(opts...), nil
	case model.ValidationRuleNoMarkup:
		return NoMarkup(opts...), nil
	}

	return Rule{}, fmt.Errorf("%q: %w", v.Kind, ErrUnknownKind)
}

func messageOptions(params map[string]string) []Option {
	var opts []Option
	if msg := params[paramMessage]; msg != "" {
		opts = append(opts, WithMessage(msg))
	}
	if key := params[paramMessageKey]; key != "" {
		opts = append(opts, WithKey(key))
	}
	return opts
}

func hasKind(validations []model.ValidationRule, kind string) bool {
	for _, v := range validations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}
