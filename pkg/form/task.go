package form

import "context"

// Task is the handle of a background revalidation started by SetFieldValue.
// Callers may ignore it (fire-and-forget), wait on it, or cancel it.
type Task struct {
	field  string
	token  uint64
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	passed  bool
	applied bool
}

func newTask(parent context.Context, field string, token uint64) *Task {
	ctx, cancel := context.WithCancel(parent)
	return &Task{
		field:  field,
		token:  token,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Field returns the field being revalidated.
func (t *Task) Field() string {
	return t.field
}

// Done is closed once the validation has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancel cancels the context passed to the field's validators. A cancelled
// task never writes its result; the field keeps its previous error state.
func (t *Task) Cancel() {
	t.cancel()
}

// Wait blocks until the task finishes or ctx is done and reports whether the
// field passed. A task superseded before it started evaluating reports false.
func (t *Task) Wait(ctx context.Context) (bool, error) {
	select {
	case <-t.done:
		return t.passed, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Applied reports whether the finished task wrote its result into the form.
// It is false while the task is running and when it was superseded.
func (t *Task) Applied() bool {
	select {
	case <-t.done:
		return t.applied
	default:
		return false
	}
}

func (t *Task) finish(passed, applied bool) {
	t.passed = passed
	t.applied = applied
	t.cancel()
	close(t.done)
}
