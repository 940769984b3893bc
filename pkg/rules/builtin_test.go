package rules_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/goliatone/go-formstate/pkg/rules"
)

func check(rule rules.Rule, value any) (bool, string) {
	out := rule.Check(context.Background(), value)
	if out.Passed {
		return true, ""
	}
	return false, rule.FailureMessage(out, rules.DefaultMessages(), "")
}

func TestBuiltins(t *testing.T) {
	cases := []struct {
		name    string
		rule    rules.Rule
		value   any
		pass    bool
		message string
	}{
		{name: "minLength short", rule: rules.MinLength(3), value: "ab", message: "Must be at least 3 characters"},
		{name: "minLength ok", rule: rules.MinLength(3), value: "abcd", pass: true},
		{name: "minLength counts runes", rule: rules.MinLength(3), value: "día", pass: true},
		{name: "minLength slice", rule: rules.MinLength(2), value: []any{"a"}, message: "Must be at least 2 characters"},
		{name: "maxLength long", rule: rules.MaxLength(2), value: "abc", message: "Must be at most 2 characters"},
		{name: "maxLength ok", rule: rules.MaxLength(2), value: "ab", pass: true},
		{name: "email ok", rule: rules.Email(), value: "a@b.com", pass: true},
		{name: "email missing tld", rule: rules.Email(), value: "a@b", message: "Please enter a valid email address"},
		{name: "email spaces", rule: rules.Email(), value: "a b@c.com", message: "Please enter a valid email address"},
		{name: "pattern ok", rule: rules.Pattern(regexp.MustCompile(`^[a-z]+$`)), value: "abc", pass: true},
		{name: "pattern fail", rule: rules.Pattern(regexp.MustCompile(`^[a-z]+$`)), value: "ABC", message: "Invalid format"},
		{name: "number int", rule: rules.Number(), value: 42, pass: true},
		{name: "number string", rule: rules.Number(), value: " 4.5 ", pass: true},
		{name: "number text", rule: rules.Number(), value: "four", message: "Must be a number"},
		{name: "number bool", rule: rules.Number(), value: true, message: "Must be a number"},
		{name: "min below", rule: rules.Min(18), value: 17, message: "Must be at least 18"},
		{name: "min equal", rule: rules.Min(18), value: "18", pass: true},
		{name: "min exclusive", rule: rules.Min(0, rules.Exclusive()), value: 0, message: "Must be greater than 0"},
		{name: "min not numeric", rule: rules.Min(1), value: "abc", message: "Must be at least 1"},
		{name: "max fractional", rule: rules.Max(2.5), value: 3, message: "Must be at most 2.5"},
		{name: "max ok", rule: rules.Max(2.5), value: 2.5, pass: true},
		{name: "max exclusive", rule: rules.Max(10, rules.Exclusive()), value: 10, message: "Must be less than 10"},
		{name: "noMarkup plain", rule: rules.NoMarkup(), value: "fish & chips < 5", pass: true},
		{name: "noMarkup html", rule: rules.NoMarkup(), value: "<b>bold</b>", message: "Must not contain markup"},
		{name: "custom message", rule: rules.MinLength(3, rules.WithMessage("Too short")), value: "a", message: "Too short"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pass, msg := check(tc.rule, tc.value)
			if pass != tc.pass {
				t.Fatalf("pass = %v, want %v (message %q)", pass, tc.pass, msg)
			}
			if msg != tc.message {
				t.Fatalf("message = %q, want %q", msg, tc.message)
			}
		})
	}
}

func TestBuiltins_AbsentValuesPassExceptRequired(t *testing.T) {
	optional := []rules.Rule{
		rules.Email(),
		rules.MinLength(3),
		rules.MaxLength(1),
		rules.Pattern(regexp.MustCompile(`^x$`)),
		rules.Number(),
		rules.Min(1),
		rules.Max(0),
		rules.NoMarkup(),
	}
	for _, rule := range optional {
		for _, value := range []any{nil, ""} {
			if pass, msg := check(rule, value); !pass {
				t.Fatalf("%s rejected absent value %#v: %q", rule.Name, value, msg)
			}
		}
	}

	for _, value := range []any{nil, "", (*string)(nil)} {
		if pass, _ := check(rules.Required(), value); pass {
			t.Fatalf("required accepted absent value %#v", value)
		}
	}
}

func TestCustom_ReceivesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "tenant-a")
	rule := rules.Custom(func(ctx context.Context, value any) error {
		if ctx.Value(key{}) != "tenant-a" {
			return rules.Fail("no tenant")
		}
		if value != "ok" {
			return rules.Failf("got %v", value)
		}
		return nil
	})

	if out := rule.Check(ctx, "ok"); !out.Passed {
		t.Fatalf("expected pass, got %+v", out)
	}
	out := rule.Check(ctx, "nope")
	if out.Passed || out.Message != "got nope" {
		t.Fatalf("unexpected outcome %+v", out)
	}
}
