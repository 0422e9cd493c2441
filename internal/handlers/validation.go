package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseValidationErrors converts validator errors to user-friendly format.
// Errors that are not validation failures yield nil.
func ParseValidationErrors(err error) []ValidationError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	result := make([]ValidationError, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		result = append(result, ValidationError{
			Field:   strings.ToLower(fieldError.Field()),
			Message: getErrorMessage(fieldError),
		})
	}
	return result
}

func getErrorMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must not exceed " + fe.Param() + " characters"
	default:
		return field + " is invalid"
	}
}
