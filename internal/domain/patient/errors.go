package patient

import "errors"

// ErrNotFound indicates that no patient row matched the given id.
var ErrNotFound = errors.New("patient not found")

// ErrIDRequired indicates a delete request without a patient id.
var ErrIDRequired = errors.New("patient id is required")

// ValidationError is a client-fixable input error. Message carries the
// first failing field's message verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
