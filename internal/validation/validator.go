package validation

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"task-planner/internal/config"
	"task-planner/internal/domain"
)

// Validator provides common validation utilities
type Validator struct {
	config *config.Config
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if a string length in characters is within the specified range
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	return length >= min && (max <= 0 || length <= max)
}

// HasControlCharacters reports whether s contains control characters other
// than those allowed
func (v *Validator) HasControlCharacters(s string, allowed ...rune) bool {
	for _, r := range s {
		if !unicode.IsControl(r) {
			continue
		}
		ok := false
		for _, a := range allowed {
			if r == a {
				ok = true
				break
			}
		}
		if !ok {
			return true
		}
	}
	return false
}

// IsValidPriority checks the priority is one of the known ordinals
func (v *Validator) IsValidPriority(p domain.Priority) bool {
	return p.IsValid()
}

// IsValidCalendarDate checks the components of d name a real minute on
// the calendar
func (v *Validator) IsValidCalendarDate(d domain.DueDate) bool {
	if d.Year < 1 || d.Year > 9999 {
		return false
	}
	if d.Month < 1 || d.Month > 12 {
		return false
	}
	if d.Hour < 0 || d.Hour > 23 || d.Minute < 0 || d.Minute > 59 {
		return false
	}
	if d.Day < 1 {
		return false
	}
	// time.Date normalizes overflow, so a day past the month end comes back
	// in the following month
	t := d.In(time.UTC)
	return t.Day() == d.Day && int(t.Month()) == d.Month
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}

func (v *Validator) getTitleMinLength() int {
	if v.config != nil {
		return v.config.Validation.TitleMinLength
	}
	return 1
}

func (v *Validator) getTitleMaxLength() int {
	if v.config != nil {
		return v.config.Validation.TitleMaxLength
	}
	return 255
}

func (v *Validator) getDescriptionMaxLength() int {
	if v.config != nil {
		return v.config.Validation.DescriptionMaxLength
	}
	return 0 // unlimited
}
