// Package formstate wires declarative form definitions to the form engine.
// The entry points here load a definition (YAML/JSON file or an OpenAPI
// operation), derive the field rules and return a ready form.
package formstate

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/openapi"
	"github.com/goliatone/go-formstate/pkg/rules"
)

// FromModel builds a form from a declarative model. Field defaults become
// the initial values and the model's field order is the declaration order.
// Options passed by the caller win over the derived ones.
func FromModel(m model.FormModel, opts ...form.Option) (*form.Form, error) {
	fieldRules, _, err := rules.FromForm(m)
	if err != nil {
		return nil, fmt.Errorf("formstate: %s: %w", m.ID, err)
	}
	derived := []form.Option{
		form.WithFieldOrder(m.FieldNames()...),
		form.WithID(m.ID),
	}
	return form.New(m.InitialValues(), fieldRules, append(derived, opts...)...), nil
}

// LoadDefinition reads a definition file and builds the form with the given
// id. An empty id selects the file's only form.
func LoadDefinition(path, id string, opts ...form.Option) (*form.Form, model.FormModel, error) {
	m, err := definition.LoadFile(path, id)
	if err != nil {
		return nil, model.FormModel{}, err
	}
	f, err := FromModel(m, opts...)
	if err != nil {
		return nil, model.FormModel{}, err
	}
	return f, m, nil
}

// LoadOpenAPI loads an OpenAPI document from a path or URL and builds the
// form for the operation's request body.
func LoadOpenAPI(ctx context.Context, location, operationID string, opts ...form.Option) (*form.Form, model.FormModel, error) {
	doc, err := openapi.LoadFile(ctx, location)
	if err != nil {
		return nil, model.FormModel{}, err
	}
	m, err := openapi.FormFromOperation(doc, operationID)
	if err != nil {
		return nil, model.FormModel{}, err
	}
	f, err := FromModel(m, opts...)
	if err != nil {
		return nil, model.FormModel{}, err
	}
	return f, m, nil
}
