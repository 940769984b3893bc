package form

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-formstate/pkg/rules"
)

// Form is a single form instance. All methods are safe for concurrent use.
type Form struct {
	id       string
	logger   *slog.Logger
	messages *rules.Messages
	locale   string

	rules  map[string][]rules.Rule
	fields []string
	ruled  []string

	baseCtx    context.Context
	cancelBase context.CancelFunc

	mu         sync.Mutex
	initial    map[string]any
	values     map[string]any
	errors     map[string]string
	touched    map[string]bool
	dirty      map[string]bool
	submitting bool
	generation map[string]uint64
	tasks      map[string]*Task

	observersMu  sync.Mutex
	observers    map[uint64]func(Event)
	nextObserver uint64
}

// New constructs a form from its initial values and per-field rules. The
// initial map is deep-copied; it is the snapshot Reset restores.
func New(initial map[string]any, fieldRules map[string][]rules.Rule, opts ...Option) *Form {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	ruleSet := make(map[string][]rules.Rule, len(fieldRules))
	for name, list := range fieldRules {
		if len(list) == 0 {
			continue
		}
		ruleSet[name] = append([]rules.Rule(nil), list...)
	}

	snapshot := cloneValues(initial)
	fields := fieldOrder(cfg.order, snapshot, ruleSet)
	ruled := make([]string, 0, len(ruleSet))
	for _, name := range fields {
		if _, ok := ruleSet[name]; ok {
			ruled = append(ruled, name)
		}
	}

	baseCtx, cancel := context.WithCancel(context.Background())

	f := &Form{
		id:         cfg.id,
		logger:     cfg.logger.With(slog.String("form", cfg.id)),
		messages:   cfg.messages,
		locale:     cfg.locale,
		rules:      ruleSet,
		fields:     fields,
		ruled:      ruled,
		baseCtx:    baseCtx,
		cancelBase: cancel,
		initial:    snapshot,
		values:     cloneValues(snapshot),
		errors:     make(map[string]string),
		touched:    make(map[string]bool),
		dirty:      make(map[string]bool),
		generation: make(map[string]uint64),
		tasks:      make(map[string]*Task),
		observers:  make(map[uint64]func(Event)),
	}
	return f
}

// ID returns the form instance identifier.
func (f *Form) ID() string {
	return f.id
}

// Fields lists every known field name in declaration order.
func (f *Form) Fields() []string {
	return append([]string(nil), f.fields...)
}

// HasRules reports whether name has at least one rule.
func (f *Form) HasRules(name string) bool {
	return len(f.rules[name]) > 0
}

// Value returns the current value of name.
func (f *Form) Value(name string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return deepcopy.Copy(f.values[name])
}

// Values returns a copy of all current values.
func (f *Form) Values() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneValues(f.values)
}

// Error returns the current error message for name, if any.
func (f *Form) Error(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.errors[name]
	return msg, ok
}

// Errors returns a copy of the current error messages.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneStrings(f.errors)
}

// Touched reports whether name has been touched.
func (f *Form) Touched(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched[name]
}

// Dirty reports whether name has been written since construction or reset.
func (f *Form) Dirty(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty[name]
}

// Valid is true iff no field carries an error.
func (f *Form) Valid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errors) == 0
}

// Submitting reports whether a Submit call is in flight.
func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// State returns a consistent snapshot of the whole form.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Values:     cloneValues(f.values),
		Errors:     cloneStrings(f.errors),
		Touched:    cloneFlags(f.touched),
		Dirty:      cloneFlags(f.dirty),
		Submitting: f.submitting,
	}
}

// SetFieldValue writes value and marks the field dirty. When the field was
// already touched it starts a background revalidation and returns its task;
// otherwise it returns nil. The write supersedes validations of the field
// that are still in flight; a newer write also cancels the previous task.
func (f *Form) SetFieldValue(name string, value any) *Task {
	f.mu.Lock()
	f.values[name] = value
	f.dirty[name] = true
	f.generation[name]++
	previous := f.tasks[name]
	delete(f.tasks, name)

	if previous != nil {
		previous.Cancel()
	}

	var task *Task
	if f.touched[name] && f.baseCtx.Err() == nil {
		task = newTask(f.baseCtx, name, f.generation[name])
		f.tasks[name] = task
	}
	f.mu.Unlock()

	f.notify(Event{Kind: EventValueChanged, Field: name})

	if task != nil {
		go f.run(task)
	}
	return task
}

// TouchField marks name as touched. It does not validate.
func (f *Form) TouchField(name string) {
	f.mu.Lock()
	already := f.touched[name]
	f.touched[name] = true
	f.mu.Unlock()

	if !already {
		f.notify(Event{Kind: EventTouched, Field: name})
	}
}

// SetFieldError overrides the error for name without evaluating rules, for
// example with server-side validation results. It supersedes validations of
// the field that are still in flight.
func (f *Form) SetFieldError(name, message string) {
	f.mu.Lock()
	f.generation[name]++
	f.errors[name] = message
	f.mu.Unlock()

	f.notify(Event{Kind: EventErrorChanged, Field: name})
}

// SetFieldErrors applies a batch of overrides. Empty messages clear.
func (f *Form) SetFieldErrors(errs map[string]string) {
	if len(errs) == 0 {
		return
	}
	names := make([]string, 0, len(errs))

	f.mu.Lock()
	for name, message := range errs {
		f.generation[name]++
		if message == "" {
			delete(f.errors, name)
		} else {
			f.errors[name] = message
		}
		names = append(names, name)
	}
	f.mu.Unlock()

	sort.Strings(names)
	for _, name := range names {
		f.notify(Event{Kind: EventErrorChanged, Field: name})
	}
}

// ClearFieldError removes the error for name.
func (f *Form) ClearFieldError(name string) {
	f.mu.Lock()
	f.generation[name]++
	_, had := f.errors[name]
	delete(f.errors, name)
	f.mu.Unlock()

	if had {
		f.notify(Event{Kind: EventErrorChanged, Field: name})
	}
}

// Reset restores the construction-time values and clears every error,
// touched and dirty flag as well as the submitting flag. In-flight
// validations are cancelled and their results discarded. Reset does not
// validate.
func (f *Form) Reset() {
	f.mu.Lock()
	f.values = cloneValues(f.initial)
	f.errors = make(map[string]string)
	f.touched = make(map[string]bool)
	f.dirty = make(map[string]bool)
	f.submitting = false
	for name := range f.rules {
		f.generation[name]++
	}
	tasks := f.tasks
	f.tasks = make(map[string]*Task)
	f.mu.Unlock()

	for _, task := range tasks {
		task.Cancel()
	}
	f.notify(Event{Kind: EventReset})
}

// Close cancels every background revalidation. The form stays readable and
// writable, but SetFieldValue no longer starts revalidations.
func (f *Form) Close() {
	f.cancelBase()

	f.mu.Lock()
	tasks := f.tasks
	f.tasks = make(map[string]*Task)
	f.mu.Unlock()

	for _, task := range tasks {
		task.Cancel()
	}
}

// Field returns the binding adapter for name.
func (f *Form) Field(name string) *Binding {
	return &Binding{form: f, name: name}
}

func (f *Form) run(task *Task) {
	passed, applied := f.validateField(task.ctx, task.field, task.token)

	f.mu.Lock()
	if f.tasks[task.field] == task {
		delete(f.tasks, task.field)
	}
	f.mu.Unlock()

	task.finish(passed, applied)
}

func fieldOrder(declared []string, values map[string]any, ruleSet map[string][]rules.Rule) []string {
	seen := make(map[string]struct{}, len(values)+len(ruleSet))
	out := make([]string, 0, len(values)+len(ruleSet))
	for _, name := range declared {
		if _, dup := seen[name]; dup || name == "" {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	var rest []string
	for name := range values {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			rest = append(rest, name)
		}
	}
	for name := range ruleSet {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
