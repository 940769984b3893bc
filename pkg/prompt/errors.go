package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrTooManyAttempts is returned when a field stays invalid after the
	// configured number of attempts.
	ErrTooManyAttempts = errors.New("prompt: too many invalid attempts")
	// ErrRejected is returned (or wrapped) by submit handlers whose backend
	// refused the values after recording field errors on the form. The
	// session asks the affected fields again instead of stopping.
	ErrRejected = errors.New("prompt: submission rejected")
)
