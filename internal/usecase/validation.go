package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/xavierca1/frontdesk/internal/entity"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var nonDigits = regexp.MustCompile(`\D`)

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errs []ValidationError

	errs = append(errs, validateName(input.Name)...)
	errs = append(errs, validatePhone(input.Phone)...)
	errs = append(errs, validateEmail(input.Email)...)
	if len(input.Description) > 2000 {
		errs = append(errs, ValidationError{"description", "must not exceed 2000 characters"})
	}
	return errs
}

func ValidateUpdateLeadInput(input UpdateLeadInput) []ValidationError {
	var errs []ValidationError

	if input.Name != nil {
		errs = append(errs, validateName(*input.Name)...)
	}
	if input.Phone != nil {
		errs = append(errs, validatePhone(*input.Phone)...)
	}
	if input.Email != nil {
		errs = append(errs, validateEmail(*input.Email)...)
	}
	return errs
}

func ValidateCreateBookingInput(input CreateBookingInput) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, ValidationError{"name", "is required"})
	}
	errs = append(errs, validateSlot(input.Date, input.TimeFrom, input.TimeTo)...)
	return errs
}

func validateSlot(date, from, to string) []ValidationError {
	var errs []ValidationError

	if !isValidDate(date) {
		errs = append(errs, ValidationError{"date", "must be a valid date (YYYY-MM-DD)"})
	}
	fromMin, fromErr := entity.ParseClock(from)
	if fromErr != nil {
		errs = append(errs, ValidationError{"timeFrom", "must be HH:MM"})
	}
	toMin, toErr := entity.ParseClock(to)
	if toErr != nil {
		errs = append(errs, ValidationError{"timeTo", "must be HH:MM"})
	}
	if fromErr == nil && toErr == nil && fromMin >= toMin {
		errs = append(errs, ValidationError{"timeTo", "must be after timeFrom"})
	}
	return errs
}

func validateName(name string) []ValidationError {
	name = strings.TrimSpace(name)
	if name == "" {
		return []ValidationError{{"name", "is required"}}
	}
	if len(name) > 200 {
		return []ValidationError{{"name", "must not exceed 200 characters"}}
	}
	return nil
}

func validatePhone(phone string) []ValidationError {
	if strings.TrimSpace(phone) == "" {
		return []ValidationError{{"phone", "is required"}}
	}
	if !isValidPhoneNumber(phone) {
		return []ValidationError{{"phone", "must be a valid phone number"}}
	}
	return nil
}

func validateEmail(email string) []ValidationError {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return []ValidationError{{"email", "is invalid"}}
	}
	return nil
}

// isValidPhoneNumber accepts 9-digit national numbers and international
// numbers up to 15 digits, ignoring spaces, dashes and a leading plus.
func isValidPhoneNumber(phone string) bool {
	cleaned := nonDigits.ReplaceAllString(phone, "")
	return len(cleaned) >= 9 && len(cleaned) <= 15
}

func isValidDate(s string) bool {
	_, err := parseDate(s)
	return err == nil
}

// isValidID accepts only the canonical 36-character form the uuid columns
// store, so malformed path ids never reach the database.
func isValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func validationFailed(errs []ValidationError) error {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
	}
}
