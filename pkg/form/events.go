package form

import "slices"

// EventKind names the mutation an observer is told about.
type EventKind string

const (
	EventValueChanged  EventKind = "value_changed"
	EventTouched       EventKind = "touched"
	EventValidated     EventKind = "validated"
	EventErrorChanged  EventKind = "error_changed"
	EventReset         EventKind = "reset"
	EventSubmitStarted EventKind = "submit_started"
	EventSubmitEnded   EventKind = "submit_ended"
)

// Event describes one mutation. Field is empty for form-wide events; Passed
// is only meaningful for EventValidated.
type Event struct {
	Kind   EventKind
	Field  string
	Passed bool
}

// Subscribe registers fn to be called after every mutation. Observers run
// synchronously on the goroutine that performed the mutation, outside the
// form lock, so they may read the form; they must be safe for concurrent
// calls because background validations notify from their own goroutines.
// The returned function unsubscribes.
func (f *Form) Subscribe(fn func(Event)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	f.observersMu.Lock()
	id := f.nextObserver
	f.nextObserver++
	f.observers[id] = fn
	f.observersMu.Unlock()

	return func() {
		f.observersMu.Lock()
		delete(f.observers, id)
		f.observersMu.Unlock()
	}
}

func (f *Form) notify(event Event) {
	f.observersMu.Lock()
	if len(f.observers) == 0 {
		f.observersMu.Unlock()
		return
	}
	ids := make([]uint64, 0, len(f.observers))
	for id := range f.observers {
		ids = append(ids, id)
	}
	observers := make([]func(Event), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		observers = append(observers, f.observers[id])
	}
	f.observersMu.Unlock()

	for _, fn := range observers {
		fn(event)
	}
}
