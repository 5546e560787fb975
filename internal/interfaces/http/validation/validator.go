// Package validation checks request bodies at the HTTP boundary.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "wayfinder-backend/internal/errors"
	"wayfinder-backend/internal/interfaces/http/dto"
)

// Validator wraps go-playground/validator with json field names.
type Validator struct {
	validate *validator.Validate
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the shared validator.
func GetValidator() *Validator {
	once.Do(func() {
		instance = NewValidator()
	})
	return instance
}

// NewValidator creates a configured validator.
func NewValidator() *Validator {
	v := &Validator{validate: validator.New()}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Whitespace-only strings do not satisfy "required".
	_ = v.validate.RegisterValidation("required", requiredValidator)

	return v
}

// Validate checks i and returns a VALIDATION_FAILED error listing every
// rejected field.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Validation(apperrors.CodeInvalidInput.String(), "Invalid request").
			WithCause(err).
			Build()
	}

	fields := make([]dto.ValidationError, 0, len(fieldErrs))
	parts := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		fe := dto.ValidationError{
			Field:   e.Field(),
			Message: errorMessage(e.Tag(), e.Param()),
			Code:    strings.ToUpper(e.Tag()),
		}
		fields = append(fields, fe)
		parts = append(parts, fe.Field+": "+fe.Message)
	}

	return apperrors.Validation(apperrors.CodeValidationFailed.String(), "Request validation failed").
		WithDetails(strings.Join(parts, "; ")).
		WithResource(fields[0].Field).
		Build()
}

// ValidateRequest validates req with the shared validator.
func ValidateRequest(req interface{}) error {
	return GetValidator().Validate(req)
}

func errorMessage(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "max":
		return fmt.Sprintf("Must be at most %s characters", param)
	case "uuid":
		return "Must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(param, " ", ", "))
	default:
		return fmt.Sprintf("Failed %s validation", tag)
	}
}

func requiredValidator(fl validator.FieldLevel) bool {
	field := fl.Field()

	switch field.Kind() {
	case reflect.String:
		return strings.TrimSpace(field.String()) != ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return field.Len() > 0
	default:
		return !field.IsZero()
	}
}
