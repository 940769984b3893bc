package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/prompt"
	"github.com/goliatone/go-formstate/pkg/rules"
)

type options struct {
	definition string
	formID     string
	openapi    string
	operation  string
	output     string
	logLevel   string
	logFormat  string
	locale     string
	messages   string
	submitURL  string
	timeout    time.Duration
	attempts   int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Prompts go to stderr so the JSON on stdout stays pipeable.
	driver := prompt.NewSurveyDriver(prompt.WithStdio(os.Stdin, os.Stderr, os.Stderr))
	if err := run(ctx, os.Args[1:], driver, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "formstate-cli: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, driver prompt.Driver, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	logger := newLogger(opts.logLevel, opts.logFormat, stderr)

	f, m, err := loadForm(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer f.Close()
	logger.Debug("form loaded", slog.String("form", m.ID), slog.Int("fields", len(m.Fields)))

	var onSubmit form.SubmitFunc
	if opts.submitURL != "" {
		onSubmit = newSubmitter(f, opts.submitURL, opts.timeout, logger).Submit
	}

	session := prompt.NewSession(f,
		prompt.WithDriver(driver),
		prompt.WithFields(m.Fields),
		prompt.WithMaxAttempts(opts.attempts),
		prompt.WithLogger(logger),
	)
	values, err := session.Run(ctx, onSubmit)
	if err != nil {
		return err
	}
	return writeValues(model.NestValues(values), opts.output, stdout)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("formstate-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.definition, "definition", "", "form definition file (YAML or JSON)")
	fs.StringVar(&opts.formID, "form", "", "form id when the definition file holds several forms")
	fs.StringVar(&opts.openapi, "openapi", "", "OpenAPI document path or URL")
	fs.StringVar(&opts.operation, "operation", "", "operation id whose request body defines the form")
	fs.StringVar(&opts.output, "output", "", "output file for submitted values (stdout if empty)")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	fs.StringVar(&opts.locale, "locale", "", "locale used to translate messages")
	fs.StringVar(&opts.messages, "messages", "", "message catalog file keyed by locale")
	fs.StringVar(&opts.submitURL, "submit-url", "", "POST submitted values as JSON to this URL")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Second, "timeout for the submit request")
	fs.IntVar(&opts.attempts, "attempts", 3, "attempts per field before giving up")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch {
	case opts.definition != "" && opts.openapi != "":
		return options{}, errors.New("use either -definition or -openapi, not both")
	case opts.definition == "" && opts.openapi == "":
		return options{}, errors.New("one of -definition or -openapi is required")
	case opts.openapi != "" && strings.TrimSpace(opts.operation) == "":
		return options{}, errors.New("-operation is required with -openapi")
	}
	return opts, nil
}

func loadForm(ctx context.Context, opts options, logger *slog.Logger) (*form.Form, model.FormModel, error) {
	formOpts := []form.Option{
		form.WithLogger(logger),
		form.WithLocale(opts.locale),
	}
	var catalog rules.Catalog
	if opts.messages != "" {
		var err error
		catalog, err = rules.LoadCatalog(opts.messages)
		if err != nil {
			return nil, model.FormModel{}, err
		}
		formOpts = append(formOpts, form.WithMessages(rules.NewMessages(rules.WithTranslator(catalog))))
	}

	var (
		f   *form.Form
		m   model.FormModel
		err error
	)
	if opts.definition != "" {
		f, m, err = formstate.LoadDefinition(opts.definition, opts.formID, formOpts...)
	} else {
		f, m, err = formstate.LoadOpenAPI(ctx, opts.openapi, opts.operation, formOpts...)
	}
	if err != nil {
		return nil, model.FormModel{}, err
	}
	if catalog != nil {
		m = definition.Localize(m, opts.locale, catalog)
	}
	return f, m, nil
}

func writeValues(values map[string]any, path string, stdout io.Writer) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
