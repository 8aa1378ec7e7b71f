package fault

import "errors"

// Fault is a stable, machine-readable domain error. Two faults match under
// errors.Is when their codes are equal, so sentinel faults can be enriched
// with details without breaking callers.
type Fault struct {
	Code    string
	Message string
	Details map[string]any
}

func New(code, message string) *Fault {
	return &Fault{Code: code, Message: message}
}

func (f *Fault) Error() string {
	return f.Message
}

func (f *Fault) Is(target error) bool {
	var t *Fault
	if !errors.As(target, &t) {
		return false
	}
	return f.Code == t.Code
}

// WithDetail returns a copy of the fault carrying an extra detail entry.
// The sentinel itself is never mutated.
func (f *Fault) WithDetail(key string, value any) *Fault {
	cp := &Fault{Code: f.Code, Message: f.Message, Details: make(map[string]any, len(f.Details)+1)}
	for k, v := range f.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return cp
}

// Code extracts the fault code from an error chain, or "" when the chain
// carries no fault.
func Code(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code
	}
	return ""
}
