package form

import (
	"context"
	"log/slog"

	"github.com/mohae/deepcopy"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formstate/pkg/rules"
)

// ValidateField evaluates the rules of name in declaration order and stops at
// the first failure. Fields without rules pass without touching state. On
// success the field's error is cleared, on failure it is set, unless a newer
// validation of the field or a Reset started meanwhile; the superseded run
// still reports its own outcome.
func (f *Form) ValidateField(ctx context.Context, name string) bool {
	passed, _ := f.validateField(ctx, name, 0)
	return passed
}

// Validate runs ValidateField for every field with rules concurrently and
// waits for all of them. Dispatch follows declaration order; completion order
// is unspecified. It returns true iff every field passed.
func (f *Form) Validate(ctx context.Context) bool {
	if len(f.ruled) == 0 {
		return true
	}

	results := make([]bool, len(f.ruled))
	var group errgroup.Group
	for i, name := range f.ruled {
		group.Go(func() error {
			results[i] = f.ValidateField(ctx, name)
			return nil
		})
	}
	_ = group.Wait()

	for _, passed := range results {
		if !passed {
			return false
		}
	}
	return true
}

// validateField runs one validation. A zero token starts a new generation;
// a task passes the generation it was created in and gives up without
// evaluating if that generation is already gone. A task whose context was
// cancelled (Task.Cancel, Close) never writes its result.
func (f *Form) validateField(ctx context.Context, name string, token uint64) (passed, applied bool) {
	fieldRules := f.rules[name]
	if len(fieldRules) == 0 {
		return true, false
	}

	background := token != 0
	f.mu.Lock()
	if !background {
		f.generation[name]++
		token = f.generation[name]
	} else if f.generation[name] != token {
		f.mu.Unlock()
		return false, false
	}
	value := deepcopy.Copy(f.values[name])
	f.mu.Unlock()

	passed, message := f.evaluate(ctx, name, fieldRules, value)

	f.mu.Lock()
	if f.generation[name] != token || (background && ctx.Err() != nil) {
		f.mu.Unlock()
		f.logger.Debug("discarding superseded validation result",
			slog.String("field", name),
			slog.Bool("passed", passed),
		)
		return passed, false
	}
	previous, had := f.errors[name]
	if passed {
		delete(f.errors, name)
	} else {
		f.errors[name] = message
	}
	f.mu.Unlock()

	f.notify(Event{Kind: EventValidated, Field: name, Passed: passed})
	if had != !passed || previous != message {
		f.notify(Event{Kind: EventErrorChanged, Field: name})
	}
	return passed, true
}

func (f *Form) evaluate(ctx context.Context, name string, fieldRules []rules.Rule, value any) (bool, string) {
	for _, rule := range fieldRules {
		out := rule.Check(ctx, value)
		if out.Passed {
			continue
		}
		if out.Err != nil {
			f.logger.Debug("validator failed unexpectedly",
				slog.String("field", name),
				slog.String("rule", rule.Name),
				slog.Any("error", out.Err),
			)
		}
		return false, rule.FailureMessage(out, f.messages, f.locale)
	}
	return true, ""
}
