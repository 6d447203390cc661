package errors

import (
	"errors"
	"fmt"
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewStorageError creates a new storage error for blob reads and writes
func NewStorageError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeStorage,
		Message: fmt.Sprintf("storage operation failed: %s", operation),
		Code:    "STORAGE_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidInput,
		Message: fmt.Sprintf("invalid input for %s: %s", field, reason),
		Code:    "INVALID_INPUT",
		Context: map[string]interface{}{
			"field":  field,
			"value":  value,
			"reason": reason,
		},
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, timeout interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeTimeout,
		Message: fmt.Sprintf("operation timed out: %s", operation),
		Code:    "TIMEOUT",
		Context: map[string]interface{}{
			"operation": operation,
			"timeout":   timeout,
		},
	}
}

// NewPermissionError creates a new permission error
func NewPermissionError(operation string, resource string) *AppError {
	return &AppError{
		Type:    ErrorTypePermission,
		Message: fmt.Sprintf("permission denied for %s on %s", operation, resource),
		Code:    "PERMISSION_DENIED",
		Context: map[string]interface{}{
			"operation": operation,
			"resource":  resource,
		},
	}
}

// NewExpiredDueDateError reports a reminder requested for a due date that
// has already passed.
func NewExpiredDueDateError(taskID string, dueDate string) *AppError {
	return &AppError{
		Type:    ErrorTypeExpiredDueDate,
		Message: fmt.Sprintf("cannot schedule reminder, due date %s has expired", dueDate),
		Code:    "EXPIRED_DUE_DATE",
		Context: map[string]interface{}{
			"task_id":  taskID,
			"due_date": dueDate,
		},
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// GetUserMessage returns a user-friendly error message
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput, ErrorTypePermission:
			return appErr.Message
		case ErrorTypeExpiredDueDate:
			return "Remove the reminder or set a due date in the future."
		case ErrorTypeStorage:
			return "Your tasks could not be saved. Changes are kept for this session."
		case ErrorTypeTimeout:
			return "The operation timed out. Please try again."
		default:
			return "An unexpected error occurred. Please try again."
		}
	}
	return err.Error()
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError determines if an error should be logged based on its type
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput, ErrorTypeExpiredDueDate:
			return false // user errors
		default:
			return true
		}
	}
	return true
}
