package media

import (
	"errors"
	"fmt"
)

// ValidationError reports a request that can never succeed as given: missing
// inputs, malformed segments, missing split parameters, unknown kinds.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// BackendError wraps a probe or transform failure reported by the media backend.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *BackendError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsBackend(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
