package cli

import (
	"fmt"

	"task-planner/internal/errors"
	"task-planner/internal/validation"
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if validationErr, ok := err.(*validation.ValidationError); ok {
		return fmt.Errorf("failed to %s: %s", operation, validationErr.GetUserFriendlyMessage())
	}

	if _, ok := errors.AsAppError(err); ok {
		return fmt.Errorf("failed to %s: %s", operation, errors.GetUserMessage(err))
	}

	// Fallback for unknown errors
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// HandleSimple provides user-friendly error messages without operation context
func (eh *ErrorHandler) HandleSimple(err error) error {
	if validationErr, ok := err.(*validation.ValidationError); ok {
		return fmt.Errorf("%s", validationErr.GetUserFriendlyMessage())
	}

	if _, ok := errors.AsAppError(err); ok {
		return fmt.Errorf("%s", errors.GetUserMessage(err))
	}

	return err
}

// IsValidationError checks if an error is a validation error
func (eh *ErrorHandler) IsValidationError(err error) bool {
	if validation.IsValidationError(err) {
		return true
	}
	return errors.IsErrorType(err, errors.ErrorTypeValidation)
}

// IsNotFoundError checks if an error is a not found error
func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeNotFound)
}

// IsStorageError checks if an error is a storage error
func (eh *ErrorHandler) IsStorageError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeStorage)
}

// IsExpiredDueDateError checks if a reminder was refused for a past date
func (eh *ErrorHandler) IsExpiredDueDateError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeExpiredDueDate)
}

// GetErrorCode returns the error code for structured errors
func (eh *ErrorHandler) GetErrorCode(err error) string {
	return errors.GetErrorCode(err)
}
