// Package model defines the declarative form description shared by the
// definition loader, the OpenAPI adapter and the rule builder. Validation
// rules expose canonical identifiers (min/max, minLength/maxLength, pattern,
// email, number, noMarkup) with string parameters so definition files stay
// stable when serialised. The form engine never reads this package directly:
// rules.FromForm turns a FormModel into engine rules and InitialValues
// provides the construction-time snapshot.
package model
