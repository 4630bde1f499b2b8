package errors

import "fmt"

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeNotFound     ErrCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrCode = "UNAUTHORIZED"
	ErrCodeRateLimited  ErrCode = "RATE_LIMITED"
	ErrCodeTransient    ErrCode = "TRANSIENT"
	ErrCodeMalformed    ErrCode = "MALFORMED"
	ErrCodePartialWrite ErrCode = "PARTIAL_WRITE"
	ErrCodeBadRequest   ErrCode = "BAD_REQUEST"
	ErrCodeCalculation  ErrCode = "CALCULATION_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: message,
	}
}

// NewRateLimitedError creates a new rate limited error
func NewRateLimitedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: message,
	}
}

// NewTransientError creates a new transient (network/5xx) error
func NewTransientError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeTransient,
		Message: message,
		Err:     err,
	}
}

// NewMalformedError creates an error for an unparseable remote response
func NewMalformedError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeMalformed,
		Message: message,
		Err:     err,
	}
}

// NewPartialWriteError creates an error for a partially accepted calendar write
func NewPartialWriteError(message string) *AppError {
	return &AppError{
		Code:    ErrCodePartialWrite,
		Message: message,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// NewCalculationError creates an error for a malformed calendar entry
func NewCalculationError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeCalculation,
		Message: message,
	}
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeNotFound
	}
	return false
}

// IsRateLimited checks if the error is a rate limited error
func IsRateLimited(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeRateLimited
	}
	return false
}

// IsRetryable reports whether a single bounded retry may succeed.
// Only transient and rate-limited failures qualify.
func IsRetryable(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeTransient || appErr.Code == ErrCodeRateLimited
	}
	return false
}
