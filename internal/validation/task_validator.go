package validation

import (
	"time"

	"task-planner/internal/config"
	"task-planner/internal/domain"
)

// TaskValidator validates task input coming from an edit form
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{validator: NewValidator()}
}

// NewTaskValidatorWithConfig creates a task validator using configured limits
func NewTaskValidatorWithConfig(cfg *config.Config) *TaskValidator {
	return &TaskValidator{validator: NewValidatorWithConfig(cfg)}
}

// ValidateTitle validates a task title
func (tv *TaskValidator) ValidateTitle(title string) error {
	validationError := NewValidationError()

	trimmed := tv.validator.TrimAndValidateString(title)
	if !tv.validator.IsNonEmptyString(trimmed) {
		validationError.AddRequiredError("title")
		return validationError
	}

	minLen, maxLen := tv.validator.getTitleMinLength(), tv.validator.getTitleMaxLength()
	if !tv.validator.IsValidStringLength(trimmed, minLen, maxLen) {
		validationError.AddInvalidLengthError("title", trimmed, minLen, maxLen)
	}

	if tv.validator.HasControlCharacters(trimmed) {
		validationError.AddInvalidCharacterError("title", trimmed)
	}

	return validationError.ErrOrNil()
}

// ValidateDescription validates a task description. Line breaks and tabs
// are allowed.
func (tv *TaskValidator) ValidateDescription(description string) error {
	validationError := NewValidationError()

	maxLen := tv.validator.getDescriptionMaxLength()
	if maxLen > 0 && !tv.validator.IsValidStringLength(description, 0, maxLen) {
		validationError.AddInvalidLengthError("description", description, 0, maxLen)
	}

	if tv.validator.HasControlCharacters(description, '\n', '\r', '\t') {
		validationError.AddInvalidCharacterError("description", description)
	}

	return validationError.ErrOrNil()
}

// ValidatePriority validates a priority ordinal
func (tv *TaskValidator) ValidatePriority(p domain.Priority) error {
	if !tv.validator.IsValidPriority(p) {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("priority", int(p), "must be low, medium or high")
		return validationError
	}
	return nil
}

// ValidateDueDate validates the components of a due date. The sentinel is
// accepted as "no due date".
func (tv *TaskValidator) ValidateDueDate(d domain.DueDate) error {
	if d.IsZero() {
		return nil
	}
	if !tv.validator.IsValidCalendarDate(d) {
		validationError := NewValidationError()
		validationError.AddInvalidFormatError("due_date", d.String(), "a real date and time")
		return validationError
	}
	return nil
}

// ValidateReminder checks a reminder is only requested for a due date that
// has not passed at now
func (tv *TaskValidator) ValidateReminder(d domain.DueDate, hasNotification bool, now time.Time) error {
	if !hasNotification {
		return nil
	}
	validationError := NewValidationError()
	if d.IsZero() {
		validationError.AddRequiredError("due_date")
		return validationError
	}
	if !d.IsValid(now) {
		validationError.AddExpiredError("due_date", d.String())
		return validationError
	}
	return nil
}

// ValidateTaskItem validates every edit-form field of item at now
func (tv *TaskValidator) ValidateTaskItem(item domain.TaskItem, now time.Time) error {
	validationError := NewValidationError()

	validationError.Merge(tv.ValidateTitle(item.Title))
	validationError.Merge(tv.ValidateDescription(item.Description))
	validationError.Merge(tv.ValidatePriority(item.Priority))

	if dateErr := tv.ValidateDueDate(item.DueDate); dateErr != nil {
		validationError.Merge(dateErr)
	} else {
		validationError.Merge(tv.ValidateReminder(item.DueDate, item.HasNotification, now))
	}

	return validationError.ErrOrNil()
}
