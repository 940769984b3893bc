package rules

import (
	"context"
	"html"
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

// Required rejects absent values. It is the only built-in that does.
func Required(opts ...Option) Rule {
	return build(Rule{Name: "required", Required: true, Key: KeyRequired}, opts)
}

// Email accepts values shaped like local@domain.tld.
func Email(opts ...Option) Rule {
	rule := build(Rule{Name: "email", Key: KeyEmail}, opts)
	rule.Validator = presentOnly(func(value any) bool {
		return emailPattern.MatchString(Stringify(value))
	})
	return rule
}

// MinLength requires at least n characters (or elements for collections).
func MinLength(n int, opts ...Option) Rule {
	rule := build(Rule{Name: "minLength", Key: KeyMinLength, Params: map[string]any{"min": n}}, opts)
	rule.Validator = presentOnly(func(value any) bool {
		return Length(value) >= n
	})
	return rule
}

// MaxLength allows at most n characters (or elements for collections).
func MaxLength(n int, opts ...Option) Rule {
	rule := build(Rule{Name: "maxLength", Key: KeyMaxLength, Params: map[string]any{"max": n}}, opts)
	rule.Validator = presentOnly(func(value any) bool {
		return Length(value) <= n
	})
	return rule
}

// Pattern requires the printed value to match re.
func Pattern(re *regexp.Regexp, opts ...Option) Rule {
	params := map[string]any{}
	if re != nil {
		params["pattern"] = re.String()
	}
	rule := build(Rule{Name: "pattern", Key: KeyPattern, Params: params}, opts)
	rule.Validator = presentOnly(func(value any) bool {
		return re == nil || re.MatchString(Stringify(value))
	})
	return rule
}

// Number requires a numeric value or a numeric string.
func Number(opts ...Option) Rule {
	rule := build(Rule{Name: "number", Key: KeyNumber}, opts)
	rule.Validator = presentOnly(func(value any) bool {
		_, ok := ToFloat(value)
		return ok
	})
	return rule
}

// Min requires a numeric value >= bound (> bound with Exclusive). Values that
// are not numbers fail.
func Min(bound float64, opts ...Option) Rule {
	rule := build(Rule{Name: "min", Key: KeyMin, Params: map[string]any{"min": formatFloat(bound)}}, opts)
	if rule.exclusive && rule.Key == KeyMin {
		rule.Key = KeyMinExclusive
	}
	exclusive := rule.exclusive
	rule.Validator = presentOnly(func(value any) bool {
		n, ok := ToFloat(value)
		if !ok {
			return false
		}
		if exclusive {
			return n > bound
		}
		return n >= bound
	})
	return rule
}

// Max requires a numeric value <= bound (< bound with Exclusive).
func Max(bound float64, opts ...Option) Rule {
	rule := build(Rule{Name: "max", Key: KeyMax, Params: map[string]any{"max": formatFloat(bound)}}, opts)
	if rule.exclusive && rule.Key == KeyMax {
		rule.Key = KeyMaxExclusive
	}
	exclusive := rule.exclusive
	rule.Validator = presentOnly(func(value any) bool {
		n, ok := ToFloat(value)
		if !ok {
			return false
		}
		if exclusive {
			return n < bound
		}
		return n <= bound
	})
	return rule
}

// NoMarkup rejects values that bluemonday's strict policy would alter, i.e.
// anything carrying HTML elements or attributes.
func NoMarkup(opts ...Option) Rule {
	rule := build(Rule{Name: "noMarkup", Key: KeyMarkup}, opts)
	rule.Validator = presentOnly(func(value any) bool {
		text := Stringify(value)
		return html.UnescapeString(strictPolicy().Sanitize(text)) == text
	})
	return rule
}

// Custom wraps an application validator. The validator is called for absent
// values too; combine with Required when presence matters.
func Custom(fn Validator, opts ...Option) Rule {
	rule := build(Rule{Name: "custom", Key: KeyInvalid}, opts)
	rule.Validator = fn
	return rule
}

func presentOnly(check func(any) bool) Validator {
	return func(_ context.Context, value any) error {
		if Absent(value) || check(value) {
			return nil
		}
		return Fail("")
	}
}

func strictPolicy() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		markupPolicy = bluemonday.StrictPolicy()
	})
	return markupPolicy
}
