package errors

import "fmt"

// ErrorCode represents the process exit codes of the routinely CLI
type ErrorCode int

const (
	// CodeGeneric represents a generic failure (code 1)
	CodeGeneric ErrorCode = 1
	// CodeValidation represents invalid user input or configuration (code 2)
	CodeValidation ErrorCode = 2
	// CodeStorage represents durable storage failures (code 3)
	CodeStorage ErrorCode = 3
	// CodePush represents push permission or token failures (code 4)
	CodePush ErrorCode = 4
	// CodeNotInProject represents commands executed outside project context (code 5)
	CodeNotInProject ErrorCode = 5
)

// AppError represents an application error with a specific error code
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewGenericError creates a new generic error (code 1)
func NewGenericError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeGeneric,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError creates a new validation error (code 2)
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewStorageError creates a new storage error (code 3)
func NewStorageError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeStorage,
		Message: message,
		Cause:   cause,
	}
}

// NewPushError creates a new push notification error (code 4)
func NewPushError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodePush,
		Message: message,
		Cause:   cause,
	}
}

// NewContextError creates a new context error (code 5)
func NewContextError(message string) *AppError {
	return &AppError{
		Code:    CodeNotInProject,
		Message: message,
	}
}
