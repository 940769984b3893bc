package form

import (
	"context"
	"log/slog"
)

// SubmitFunc receives a copy of the values once the form validated.
type SubmitFunc func(ctx context.Context, values map[string]any) error

// Submit sets the submitting flag, validates every field and, when all pass,
// calls onSubmit with the current values. The flag is cleared on every path,
// including a panicking handler. The bool reports whether validation passed;
// errors from onSubmit are returned as-is after the flag is cleared.
//
// Submitting is advisory: a second Submit while one is in flight is not
// rejected. Callers that need single-flight semantics check Submitting first.
func (f *Form) Submit(ctx context.Context, onSubmit SubmitFunc) (bool, error) {
	f.setSubmitting(true)
	defer f.setSubmitting(false)

	if !f.Validate(ctx) {
		f.logger.Debug("submit blocked by validation errors", slog.Int("errors", len(f.Errors())))
		return false, nil
	}
	if onSubmit == nil {
		return true, nil
	}
	if err := onSubmit(ctx, f.Values()); err != nil {
		return true, err
	}
	return true, nil
}

func (f *Form) setSubmitting(on bool) {
	f.mu.Lock()
	f.submitting = on
	f.mu.Unlock()

	kind := EventSubmitEnded
	if on {
		kind = EventSubmitStarted
	}
	f.notify(Event{Kind: kind})
}
