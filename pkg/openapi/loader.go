package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

var (
	// ErrOperationNotFound is returned when no operation has the requested id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned for operations without a request body.
	ErrNoRequestBody = errors.New("openapi: operation has no request body")
)

// LoadOptions configures document loading.
type LoadOptions struct {
	// AllowExternalRefs lets the loader follow $refs to other files or URLs.
	AllowExternalRefs bool
	// Validate runs the kin-openapi document validation after loading.
	Validate bool
}

// LoadOption mutates LoadOptions.
type LoadOption func(*LoadOptions)

// WithExternalRefs enables resolution of external references.
func WithExternalRefs() LoadOption {
	return func(o *LoadOptions) {
		o.AllowExternalRefs = true
	}
}

// WithValidation validates the document after loading.
func WithValidation() LoadOption {
	return func(o *LoadOptions) {
		o.Validate = true
	}
}

// LoadFile loads a document from a path or an http(s) URL.
func LoadFile(ctx context.Context, location string, opts ...LoadOption) (*openapi3.T, error) {
	cfg := loadOptions(opts)
	loader := newLoader(ctx, cfg)

	var (
		doc *openapi3.T
		err error
	)
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		var u *url.URL
		u, err = url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("openapi: parse url %q: %w", location, err)
		}
		loader.IsExternalRefsAllowed = true
		doc, err = loader.LoadFromURI(u)
	} else {
		doc, err = loader.LoadFromFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", location, err)
	}
	return finish(ctx, doc, cfg)
}

// LoadData loads a document from raw JSON or YAML.
func LoadData(ctx context.Context, data []byte, opts ...LoadOption) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	cfg := loadOptions(opts)
	doc, err := newLoader(ctx, cfg).LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return finish(ctx, doc, cfg)
}

func loadOptions(opts []LoadOption) LoadOptions {
	var cfg LoadOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func newLoader(ctx context.Context, cfg LoadOptions) *openapi3.Loader {
	return &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: cfg.AllowExternalRefs,
	}
}

func finish(ctx context.Context, doc *openapi3.T, cfg LoadOptions) (*openapi3.T, error) {
	if !cfg.Validate {
		return doc, nil
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	return doc, nil
}
