package rules

import (
	"context"
	"errors"
	"fmt"
)

// Validator checks a single field value. A nil error passes. A *Failure
// carries the user-facing message (an empty message defers to the rule's
// configured one). Any other error is treated as a validator exception and
// reported with the rule's message; it never reaches the engine's caller.
type Validator func(ctx context.Context, value any) error

// Failure is the expected, user-facing outcome of a failed check.
type Failure struct {
	Message string
}

func (f *Failure) Error() string {
	if f == nil || f.Message == "" {
		return "rules: validation failed"
	}
	return f.Message
}

// Fail returns a Failure with the given message. Pass an empty string to use
// the rule's configured message.
func Fail(message string) error {
	return &Failure{Message: message}
}

// Failf formats a Failure message.
func Failf(format string, args ...any) error {
	return &Failure{Message: fmt.Sprintf(format, args...)}
}

// Rule is one predicate attached to a field. Rules are immutable once built;
// a field evaluates its rules in declaration order and stops at the first
// failure.
type Rule struct {
	// Name identifies the rule kind in logs ("required", "email", ...).
	Name string
	// Required rejects absent values (nil, missing, or "").
	Required bool
	// Validator runs after the presence check when set.
	Validator Validator
	// Message overrides every catalog or translated message.
	Message string
	// Key selects the catalog message used when Message is empty.
	Key string
	// Params feed the message template.
	Params map[string]any

	exclusive bool
}

// Option customises a rule produced by one of the factories.
type Option func(*Rule)

// WithMessage sets the failure message.
func WithMessage(message string) Option {
	return func(r *Rule) {
		r.Message = message
	}
}

// WithKey selects a catalog key for the failure message.
func WithKey(key string) Option {
	return func(r *Rule) {
		if key != "" {
			r.Key = key
		}
	}
}

// Exclusive turns Min/Max into strict bounds.
func Exclusive() Option {
	return func(r *Rule) {
		r.exclusive = true
	}
}

// Outcome is the result of checking a single rule.
type Outcome struct {
	Passed bool
	// Message is the explicit message returned by the validator, if any.
	Message string
	// Missing reports that the presence check failed.
	Missing bool
	// Err holds the validator exception (error, panic or context error) that
	// was converted into a failure.
	Err error
}

// Check evaluates the rule against value. Validator panics and unexpected
// errors are converted into failures.
func (r Rule) Check(ctx context.Context, value any) (out Outcome) {
	if r.Required && Absent(value) {
		return Outcome{Missing: true}
	}
	if r.Validator == nil {
		return Outcome{Passed: true}
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = Outcome{Err: fmt.Errorf("rules: %s validator panicked: %v", r.label(), rec)}
		}
	}()

	err := r.Validator(ctx, value)
	if err == nil {
		return Outcome{Passed: true}
	}

	var failure *Failure
	if errors.As(err, &failure) {
		return Outcome{Message: failure.Message}
	}
	return Outcome{Err: fmt.Errorf("rules: %s validator: %w", r.label(), err)}
}

// FailureMessage resolves the message reported for a failed outcome. Explicit
// validator messages win, then the rule's Message, then the catalog.
func (r Rule) FailureMessage(out Outcome, messages *Messages, locale string) string {
	if out.Message != "" && out.Err == nil && !out.Missing {
		return out.Message
	}
	if r.Message != "" {
		return r.Message
	}
	if messages == nil {
		messages = DefaultMessages()
	}
	return messages.Render(locale, r.messageKey(out), r.Params)
}

func (r Rule) messageKey(out Outcome) string {
	switch {
	case out.Missing && (r.Key == "" || r.Validator != nil):
		return KeyRequired
	case r.Key != "":
		return r.Key
	default:
		return KeyInvalid
	}
}

func (r Rule) label() string {
	if r.Name == "" {
		return "custom"
	}
	return r.Name
}

func build(rule Rule, opts []Option) Rule {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&rule)
	}
	return rule
}
