// Package prompt drives a form from the terminal. A Session asks for each
// field in declaration order, feeds answers through the field binding's
// change and blur handlers, repeats a question while the field carries an
// error and finally submits the form.
//
// Prompting goes through the Driver interface; NewSurveyDriver is the
// interactive implementation and tests script their own.
package prompt
