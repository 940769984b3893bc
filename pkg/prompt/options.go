package prompt

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-formstate/pkg/model"
)

const defaultMaxAttempts = 3

// Option configures a Session.
type Option func(*Session)

// WithDriver overrides the prompt driver. Defaults to NewSurveyDriver().
func WithDriver(driver Driver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithTheme styles error and info messages. Defaults to DefaultTheme().
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithFields supplies labels, types and choices for the form's fields.
// Fields the form knows but that are missing here are asked as plain text.
func WithFields(fields []model.Field) Option {
	return func(s *Session) {
		s.fields = make(map[string]model.Field, len(fields))
		for _, field := range fields {
			s.fields[field.Name] = field
		}
	}
}

// WithMaxAttempts bounds how often one field is asked again while invalid.
// Values below one fall back to the default of three.
func WithMaxAttempts(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithLogger routes session diagnostics. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
