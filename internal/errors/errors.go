// Package errors defines the console's error taxonomy. Every error carries
// a Message fit to show an operator in a toast; the wrapped cause is for logs.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes an AppError
type ErrorCode string

const (
	// Operator input
	CodeValidation ErrorCode = "VALIDATION_ERROR"

	// Console storage
	CodeDatabase ErrorCode = "DATABASE_ERROR"
	CodeNotFound ErrorCode = "NOT_FOUND"

	// Catalog payloads
	CodeParse         ErrorCode = "PARSE_ERROR"
	CodeMalformedData ErrorCode = "MALFORMED_DATA"

	// Catalog API calls
	CodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	CodeRequestFailed   ErrorCode = "REQUEST_FAILED"
	CodeUnauthorized    ErrorCode = "UNAUTHORIZED"

	CodeUnknown ErrorCode = "UNKNOWN_ERROR"
)

const fallbackMessage = "An unexpected error occurred"

// AppError is a categorized error with an operator-facing message
type AppError struct {
	Code    ErrorCode
	Message string
	// Status is the HTTP status answered by the catalog API, when there was one
	Status  int
	Err     error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext attaches a diagnostic value and returns e
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{}, 1)
	}
	e.Context[key] = value
	return e
}

// WithStatus records the catalog API status and returns e
func (e *AppError) WithStatus(status int) *AppError {
	e.Status = status
	return e
}

// New creates an AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap creates an AppError caused by err
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func ValidationError(message string) *AppError {
	return New(CodeValidation, message)
}

func DatabaseError(message string, err error) *AppError {
	return Wrap(err, CodeDatabase, message)
}

// NotFoundError reports a missing console record
func NotFoundError(resource, identifier string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found: %s", resource, identifier))
}

// ParseError reports a catalog answer that is not valid JSON
func ParseError(message string, err error) *AppError {
	return Wrap(err, CodeParse, message)
}

// MalformedDataError reports a payload whose shape is not the expected one
func MalformedDataError(message string) *AppError {
	return New(CodeMalformedData, message)
}

// ExternalServiceError reports a service that could not be reached
func ExternalServiceError(service, message string, err error) *AppError {
	return Wrap(err, CodeExternalService, message).WithContext("service", service)
}

// RequestFailedError reports a non-2xx answer of the catalog API
func RequestFailedError(status int, message string) *AppError {
	return New(CodeRequestFailed, message).WithStatus(status)
}

// UnauthorizedError reports an expired or missing catalog token
func UnauthorizedError(message string) *AppError {
	return New(CodeUnauthorized, message).WithStatus(401)
}

func appError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// GetErrorCode returns the code of the outermost AppError in err's chain
func GetErrorCode(err error) ErrorCode {
	if appErr, ok := appError(err); ok {
		return appErr.Code
	}
	return CodeUnknown
}

// Status returns the catalog API status recorded on err, or 0
func Status(err error) int {
	if appErr, ok := appError(err); ok {
		return appErr.Status
	}
	return 0
}

func IsValidationError(err error) bool {
	return GetErrorCode(err) == CodeValidation
}

// IsSessionExpired reports whether the catalog API rejected the bearer token
func IsSessionExpired(err error) bool {
	return GetErrorCode(err) == CodeUnauthorized
}

func IsNotFound(err error) bool {
	return GetErrorCode(err) == CodeNotFound
}

// UserMessage returns the text to show the operator for err. The outermost
// AppError message wins; anything else gets a generic text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := appError(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	return fallbackMessage
}
