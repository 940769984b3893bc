package form

import (
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-formstate/pkg/rules"
)

// Option configures a Form. Every option has a documented fallback so a Form
// built without options is fully usable.
type Option func(*config)

type config struct {
	id       string
	logger   *slog.Logger
	messages *rules.Messages
	locale   string
	order    []string
}

func defaultConfig() config {
	return config{
		id:       uuid.NewString(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		messages: rules.DefaultMessages(),
	}
}

// WithLogger routes engine diagnostics (validator exceptions, discarded
// results) to logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMessages selects the message catalog. Defaults to
// rules.DefaultMessages().
func WithMessages(messages *rules.Messages) Option {
	return func(c *config) {
		if messages != nil {
			c.messages = messages
		}
	}
}

// WithLocale sets the locale passed to the catalog translator.
func WithLocale(locale string) Option {
	return func(c *config) {
		c.locale = strings.TrimSpace(locale)
	}
}

// WithFieldOrder fixes the declaration order used for Fields and for
// dispatching Validate. Fields not listed follow in name order.
func WithFieldOrder(names ...string) Option {
	return func(c *config) {
		c.order = append([]string(nil), names...)
	}
}

// WithID names the form instance in log records. Defaults to a random UUID.
func WithID(id string) Option {
	return func(c *config) {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			c.id = trimmed
		}
	}
}
