package rcconfig

import "fmt"

// ValidationError wraps a single configuration field violation with enough
// context to locate it.
type ValidationError struct {
	Section string
	Field   string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: field %q: %v", e.Section, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(section, field string, err error) error {
	return &ValidationError{Section: section, Field: field, Err: err}
}
