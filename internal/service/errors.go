package service

import "fmt"

// ErrNotPermitted is returned when a write fails its access predicate. For
// reads the row is simply absent, callers see ErrNotFound instead so that
// denial is indistinguishable from nonexistence.
var ErrNotPermitted = fmt.Errorf("operation not permitted")

// ErrValidation is returned for request payloads that fail input checks
// before any store call.
var ErrValidation = fmt.Errorf("validation failed")

// ErrProfileExists is returned on a duplicate profile self-insert.
var ErrProfileExists = fmt.Errorf("profile already exists")

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
