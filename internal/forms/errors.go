package forms

import "errors"

type ErrorCode string

const (
	ErrorStorage  ErrorCode = "storage"
	ErrorNotFound ErrorCode = "not_found"
	ErrorInvalid  ErrorCode = "invalid"
	ErrorConfig   ErrorCode = "config"
)

// ServiceError carries a coarse error category alongside the message. The
// HTTP layer deliberately does not expose the category to callers; it exists
// for logging and for tests that assert on failure modes.
type ServiceError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

func NewStorageError(msg string, err error) error {
	return &ServiceError{Code: ErrorStorage, Message: msg, Err: err}
}

func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewInvalidError(msg string) error  { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewConfigError(msg string) error   { return &ServiceError{Code: ErrorConfig, Message: msg} }

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsNotFound reports whether err is a not-found service error, unwrapping
// as needed.
func IsNotFound(err error) bool {
	se, ok := AsServiceError(err)
	return ok && se.Code == ErrorNotFound
}
