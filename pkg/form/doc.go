// Package form implements the form state engine: it owns field values, the
// per-field error/touched/dirty flags and the submitting flag, evaluates the
// rules from package rules on demand or on submit, and notifies subscribers
// after every mutation.
//
// Validators run on their own goroutines and may block; the engine never
// holds its lock while calling them. Every validation of a field takes a
// generation token and only writes its result back if no newer validation of
// that field (or a Reset) started in the meantime, so late results from
// superseded runs are discarded instead of overwriting fresher state.
//
// Typical use from presentation code goes through Binding:
//
//	f := form.New(map[string]any{"email": ""}, map[string][]rules.Rule{
//		"email": {rules.Required(), rules.Email()},
//	})
//	email := f.Field("email")
//	email.OnChange("a@b.com")
//	email.OnBlur(ctx)
//	ok, err := f.Submit(ctx, save)
package form
