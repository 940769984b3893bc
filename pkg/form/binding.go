package form

import "context"

// Status is the derived presentation state of one field.
type Status string

const (
	// StatusError means the field carries an error message.
	StatusError Status = "error"
	// StatusSuccess means the field was touched and has no error.
	StatusSuccess Status = "success"
	// StatusValidating is the indeterminate state of untouched fields.
	StatusValidating Status = "validating"
)

// Binding is a view over one field for input components: a value accessor,
// read-only flags, the derived status and the blur/change handlers.
type Binding struct {
	form *Form
	name string
}

// Name returns the bound field name.
func (b *Binding) Name() string {
	return b.name
}

// Value returns the field's current value.
func (b *Binding) Value() any {
	return b.form.Value(b.name)
}

// SetValue writes through SetFieldValue.
func (b *Binding) SetValue(value any) *Task {
	return b.form.SetFieldValue(b.name, value)
}

// Error returns the field's error message or "".
func (b *Binding) Error() string {
	msg, _ := b.form.Error(b.name)
	return msg
}

// Touched reports the touched flag.
func (b *Binding) Touched() bool {
	return b.form.Touched(b.name)
}

// Dirty reports the dirty flag.
func (b *Binding) Dirty() bool {
	return b.form.Dirty(b.name)
}

// Status derives the field status from the current flags on every call.
func (b *Binding) Status() Status {
	b.form.mu.Lock()
	defer b.form.mu.Unlock()
	if _, ok := b.form.errors[b.name]; ok {
		return StatusError
	}
	if b.form.touched[b.name] {
		return StatusSuccess
	}
	return StatusValidating
}

// OnBlur marks the field touched and validates it.
func (b *Binding) OnBlur(ctx context.Context) bool {
	b.form.TouchField(b.name)
	return b.form.ValidateField(ctx, b.name)
}

// OnChange delegates to SetFieldValue.
func (b *Binding) OnChange(value any) *Task {
	return b.form.SetFieldValue(b.name, value)
}
