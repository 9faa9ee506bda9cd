package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownExperiment = errors.New("unknown experiment")
	ErrUnknownCorpus     = errors.New("unknown corpus")
	ErrTrainingFailed    = errors.New("training failed")
	ErrPredictionFailed  = errors.New("prediction failed")
	ErrMalformedLog      = errors.New("malformed prediction log")
	ErrDatabase          = errors.New("database error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode returns the AppError code in err's chain, or "" if there is none.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
