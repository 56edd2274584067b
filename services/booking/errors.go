package booking

import "fmt"

// The workflow surfaces four error classes. Handlers map each to a distinct
// HTTP status; none are retried here.

// ValidationError is a client-caused input problem.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced resource that does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func NewNotFoundError(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError reports a caller without the right identity or role.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

func NewAuthorizationError(format string, args ...interface{}) error {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

// StateConflictError reports an action attempted outside its valid
// state or deadline window.
type StateConflictError struct {
	Message string
}

func (e *StateConflictError) Error() string { return e.Message }

func NewStateConflictError(format string, args ...interface{}) error {
	return &StateConflictError{Message: fmt.Sprintf(format, args...)}
}

// DependencyError reports a gateway or store call that failed or returned an
// unexpected status.
type DependencyError struct {
	Message string
	Err     error
}

func (e *DependencyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DependencyError) Unwrap() error { return e.Err }

func NewDependencyError(err error, format string, args ...interface{}) error {
	return &DependencyError{Message: fmt.Sprintf(format, args...), Err: err}
}
