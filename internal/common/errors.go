package common

import "fmt"

// Kind classifies a domain error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
)

// APIError is the error shape every handler recovers into the uniform
// response envelope. Anything that is not an *APIError is treated as an
// internal fault: logged server-side, generic message to the caller.
type APIError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func Validationf(format string, args ...interface{}) *APIError {
	return &APIError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func BadRequestf(format string, args ...interface{}) *APIError {
	return &APIError{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func Unauthorizedf(format string, args ...interface{}) *APIError {
	return &APIError{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...interface{}) *APIError {
	return &APIError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *APIError {
	return &APIError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Internal(err error) *APIError {
	return &APIError{Kind: KindInternal, Message: "internal server error", Err: err}
}
