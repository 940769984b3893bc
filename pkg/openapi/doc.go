// Package openapi builds form definitions from OpenAPI 3 request bodies. The
// operation's request schema is flattened into model fields (nested object
// properties become dotted names) and its constraints become declarative
// validations, so a form engine built from the result enforces the same
// rules the API documents.
package openapi
