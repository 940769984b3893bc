package form

import (
	"github.com/mohae/deepcopy"
)

// State is a point-in-time snapshot of a form.
type State struct {
	Values     map[string]any
	Errors     map[string]string
	Touched    map[string]bool
	Dirty      map[string]bool
	Submitting bool
}

// Valid is derived from Errors: true iff no field has an error.
func (s State) Valid() bool {
	return len(s.Errors) == 0
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = deepcopy.Copy(value)
	}
	return out
}

func cloneStrings(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func cloneFlags(src map[string]bool) map[string]bool {
	out := make(map[string]bool, len(src))
	for key, value := range src {
		if value {
			out[key] = true
		}
	}
	return out
}
