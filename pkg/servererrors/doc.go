// Package servererrors turns server-side validation responses into form
// errors. Paths such as "/body/owner/email", "$.data.tags[0]" or
// "request.payload.name" are normalised and matched against the form's field
// names; anything that cannot be matched is reported as a form-level message.
package servererrors
