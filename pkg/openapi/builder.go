package openapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/model"
)

var preferredMediaTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

var methodOrder = []string{
	http.MethodGet,
	http.MethodPut,
	http.MethodPost,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodHead,
	http.MethodPatch,
	http.MethodTrace,
}

// OperationIDs lists every operation id in the document, sorted.
func OperationIDs(doc *openapi3.T) []string {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	var ids []string
	for _, item := range doc.Paths.Map() {
		for _, method := range methodOrder {
			if op := item.GetOperation(method); op != nil && op.OperationID != "" {
				ids = append(ids, op.OperationID)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// FormFromOperation converts the request body schema of the operation with
// the given id into a form model. Nested object properties are flattened to
// dotted names; read-only properties are skipped.
func FormFromOperation(doc *openapi3.T, operationID string) (model.FormModel, error) {
	op := findOperation(doc, operationID)
	if op == nil {
		return model.FormModel{}, fmt.Errorf("%w: %s", ErrOperationNotFound, operationID)
	}
	schema := requestSchema(op.RequestBody)
	if schema == nil {
		return model.FormModel{}, fmt.Errorf("%w: %s", ErrNoRequestBody, operationID)
	}

	form := model.FormModel{
		ID:          operationID,
		Title:       op.Summary,
		Description: op.Description,
	}
	if form.Title == "" {
		form.Title = schema.Title
	}
	form.Fields = collectFields(schema, "", true)
	if len(form.Fields) == 0 {
		return model.FormModel{}, fmt.Errorf("%w: %s has no properties", ErrNoRequestBody, operationID)
	}
	return form, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc == nil || doc.Paths == nil || operationID == "" {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		for _, method := range methodOrder {
			if op := item.GetOperation(method); op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(ref *openapi3.RequestBodyRef) *openapi3.Schema {
	if ref == nil || ref.Value == nil {
		return nil
	}
	content := ref.Value.Content
	for _, mediaType := range preferredMediaTypes {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// collectFields walks an object schema. Required flags only propagate while
// every enclosing object is itself required.
func collectFields(schema *openapi3.Schema, prefix string, parentRequired bool) []model.Field {
	if schema == nil || len(schema.Properties) == 0 {
		return nil
	}
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []model.Field
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil || ref.Value.ReadOnly {
			continue
		}
		prop := ref.Value
		fullName := name
		if prefix != "" {
			fullName = prefix + "." + name
		}
		isRequired := parentRequired && required[name]

		if schemaType(prop) == string(model.FieldTypeObject) && len(prop.Properties) > 0 {
			fields = append(fields, collectFields(prop, fullName, isRequired)...)
			continue
		}
		fields = append(fields, buildField(fullName, prop, isRequired))
	}
	return fields
}

func buildField(name string, prop *openapi3.Schema, required bool) model.Field {
	field := model.Field{
		Name:        name,
		Type:        mapType(schemaType(prop)),
		Format:      prop.Format,
		Required:    required,
		Label:       prop.Title,
		Description: prop.Description,
		Default:     prop.Default,
	}
	enum := prop.Enum
	// Array choices live on the item schema.
	if field.Type == model.FieldTypeArray && len(enum) == 0 && prop.Items != nil && prop.Items.Value != nil {
		enum = prop.Items.Value.Enum
	}
	if len(enum) > 0 {
		field.Enum = append([]any(nil), enum...)
	}
	field.Validations = validations(prop)
	return field
}

func validations(prop *openapi3.Schema) []model.ValidationRule {
	var out []model.ValidationRule

	if prop.Min != nil {
		params := map[string]string{"value": formatFloat(*prop.Min)}
		if prop.ExclusiveMin {
			params["exclusive"] = "true"
		}
		out = append(out, model.ValidationRule{Kind: model.ValidationRuleMin, Params: params})
	}
	if prop.Max != nil {
		params := map[string]string{"value": formatFloat(*prop.Max)}
		if prop.ExclusiveMax {
			params["exclusive"] = "true"
		}
		out = append(out, model.ValidationRule{Kind: model.ValidationRuleMax, Params: params})
	}

	// minItems/maxItems share the length rules; Length counts slice elements.
	minLength, maxLength := prop.MinLength, prop.MaxLength
	if schemaType(prop) == string(model.FieldTypeArray) {
		minLength, maxLength = prop.MinItems, prop.MaxItems
	}
	if minLength > 0 {
		out = append(out, model.ValidationRule{
			Kind:   model.ValidationRuleMinLength,
			Params: map[string]string{"value": strconv.FormatUint(minLength, 10)},
		})
	}
	if maxLength != nil {
		out = append(out, model.ValidationRule{
			Kind:   model.ValidationRuleMaxLength,
			Params: map[string]string{"value": strconv.FormatUint(*maxLength, 10)},
		})
	}
	if prop.Pattern != "" {
		out = append(out, model.ValidationRule{
			Kind:   model.ValidationRulePattern,
			Params: map[string]string{"pattern": prop.Pattern},
		})
	}
	if noMarkup, ok := prop.Extensions["x-no-markup"].(bool); ok && noMarkup {
		out = append(out, model.ValidationRule{Kind: model.ValidationRuleNoMarkup})
	}
	return out
}

func schemaType(schema *openapi3.Schema) string {
	if schema == nil || schema.Type == nil {
		if schema != nil && len(schema.Properties) > 0 {
			return string(model.FieldTypeObject)
		}
		return ""
	}
	for _, value := range schema.Type.Slice() {
		if value != "null" {
			return value
		}
	}
	return ""
}

func mapType(value string) model.FieldType {
	switch strings.ToLower(value) {
	case "integer":
		return model.FieldTypeInteger
	case "number":
		return model.FieldTypeNumber
	case "boolean":
		return model.FieldTypeBoolean
	case "array":
		return model.FieldTypeArray
	case "object":
		return model.FieldTypeObject
	default:
		return model.FieldTypeString
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
